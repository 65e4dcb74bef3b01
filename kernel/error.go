package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error so that they can be returned and compared before the Go
// allocator is available; errors.New cannot be used this early in the boot.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
