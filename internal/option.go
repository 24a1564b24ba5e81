package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	collection string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithCollection sets the collection to watch.
func WithCollection(name string) Option {
	return func(a *application) {
		a.collection = name
	}
}
