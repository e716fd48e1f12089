package bootlog

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger with the configuration and runs Initialize.
// Only configuration errors are returned; an initialization failure leaves
// the logger buffering, see Logger.InitError.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()
	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	logger.Initialize(b.cfg.Directory, b.cfg.Name)
	return logger, nil
}

// Directory sets the log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Name sets the log file name.
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Verbosity sets the verbosity; 0 suppresses Debug entries in non-debug builds.
func (b *Builder) Verbosity(v int64) *Builder {
	b.cfg.Verbosity = v
	return b
}

// RetryDelayMs sets the probe delay used by InitializeWait.
func (b *Builder) RetryDelayMs(ms int64) *Builder {
	b.cfg.RetryDelayMs = ms
	return b
}

// InternalErrorsToStderr enables internal diagnostics on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Overrides applies "key=value" strings on top of the current values.
func (b *Builder) Overrides(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, o := range overrides {
		key, value, err := parseKeyValue(o)
		if err != nil {
			b.err = err
			return b
		}
		if err := applyConfigField(b.cfg, key, value); err != nil {
			b.err = err
			return b
		}
	}
	return b
}

// Example usage:
// logger, err := bootlog.NewBuilder().
//
//	Directory("/var/log/app").
//	Name("app.txt").
//	Verbosity(1).
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown()
//	 logger.Info("Logger initialized successfully")
//
// }
