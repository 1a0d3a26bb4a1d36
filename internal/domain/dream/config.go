package dream

import "time"

// Config captures journal and interpretation tuning.
type Config struct {
	TrialAllowance   int
	RemoteTimeout    time.Duration
	DefaultListLimit int
	MaxListLimit     int
	ExportPrefix     string
}

func (c Config) withDefaults() Config {
	if c.TrialAllowance < 0 {
		c.TrialAllowance = 0
	}
	if c.MaxListLimit <= 0 {
		c.MaxListLimit = 50
	}
	if c.DefaultListLimit <= 0 || c.DefaultListLimit > c.MaxListLimit {
		c.DefaultListLimit = 10
	}
	if c.ExportPrefix == "" {
		c.ExportPrefix = "exports"
	}
	return c
}
