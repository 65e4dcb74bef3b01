package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line. Boot subsystems use it to tag their
// output with the module name (e.g. "[acpi] ").
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set when the last write did not end with a line feed.
	midLine bool
}

// Write forwards p to the sink, emitting the prefix before the first byte of
// every line. The prefix is not included in the returned byte count.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written, lineStart int

	for i := 0; i < len(p); i++ {
		if p[i] != '\n' {
			continue
		}

		n, err := w.writeLine(p[lineStart : i+1])
		written += n
		if err != nil {
			return written, err
		}
		w.midLine = false
		lineStart = i + 1
	}

	if lineStart < len(p) {
		n, err := w.writeLine(p[lineStart:])
		written += n
		w.midLine = true
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

func (w *PrefixWriter) writeLine(line []byte) (int, error) {
	if !w.midLine {
		doWrite(w.Sink, w.Prefix)
	}

	if w.Sink == nil {
		doWrite(nil, line)
		return len(line), nil
	}
	return w.Sink.Write(line)
}

// ModuleWriter returns a PrefixWriter that tags each line written to the
// active output sink with "[module] ".
func ModuleWriter(module string) *PrefixWriter {
	prefix := make([]byte, 0, len(module)+3)
	prefix = append(prefix, '[')
	prefix = append(prefix, module...)
	prefix = append(prefix, ']', ' ')

	return &PrefixWriter{Sink: sinkProxy{}, Prefix: prefix}
}

// sinkProxy forwards writes to whatever sink is active at the time of the
// write so that module writers created early follow later SetOutputSink calls.
type sinkProxy struct{}

func (sinkProxy) Write(p []byte) (int, error) {
	doWrite(outputSink, p)
	return len(p), nil
}
