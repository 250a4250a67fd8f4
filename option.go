package hci

// HostOption is implemented by anything that can be configured with Options.
type HostOption interface {
	SetLogger(Logger) error
	SetEventBufferSize(int) error
	SetErrorHandler(handler func(error)) error
}

// An Option is a configuration function, which configures the host.
type Option func(HostOption) error

// OptLogger replaces the package default logger.
func OptLogger(l Logger) Option {
	return func(opt HostOption) error {
		return opt.SetLogger(l)
	}
}

// OptEventBufferSize sets how many undelivered events are queued before new
// ones are dropped.
func OptEventBufferSize(n int) Option {
	return func(opt HostOption) error {
		return opt.SetEventBufferSize(n)
	}
}

// OptErrorHandler sets error handler
func OptErrorHandler(handler func(error)) Option {
	return func(opt HostOption) error {
		return opt.SetErrorHandler(handler)
	}
}
