// Package hal brings up device drivers and keeps track of the ones that were
// successfully initialized.
package hal

import (
	"bytes"

	"vegaos/device"
	"vegaos/kernel"
	"vegaos/kernel/kfmt"
)

var (
	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver

	strBuf bytes.Buffer
)

// InitDriver initializes drv, tagging every line it logs with the driver name
// and version. Drivers that initialize successfully are appended to the list
// returned by ActiveDrivers; errors are logged and returned to the caller.
func InitDriver(drv device.Driver) *kernel.Error {
	w := kfmt.ModuleWriter("hal")

	strBuf.Reset()
	major, minor, patch := drv.DriverVersion()
	kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
	w.Prefix = strBuf.Bytes()

	if err := drv.DriverInit(w); err != nil {
		kfmt.Fprintf(w, "init failed: %s\n", err.Message)
		return err
	}

	kfmt.Fprintf(w, "initialized\n")
	activeDrivers = append(activeDrivers, drv)
	return nil
}

// ActiveDrivers returns the drivers initialized so far, in initialization
// order.
func ActiveDrivers() []device.Driver {
	return activeDrivers
}
