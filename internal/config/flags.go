package config

// Overrides carries command line settings that win over the config file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	Debug   bool
	LogFile string
	Workers int
	Strict  bool
}

// apply applies the overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Workers > 0 {
		cfg.Validate.Workers = o.Workers
	}
	if o.Strict {
		cfg.Import.StrictHierarchy = true
	}
}
