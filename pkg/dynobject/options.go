package dynobject

// Option configures a Store or Object.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver installs an observer notified after every store operation
// and every acquire and release.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
