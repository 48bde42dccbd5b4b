package pdptw

import "time"

// Config holds every recognized solver option; all fields are optional and
// DefaultConfig fills the documented defaults.
type Config struct {
	TimeLimit time.Duration

	MaxILSIterations int
	LNSIterations     int

	DestroyMin int
	DestroyMax int

	LAHCHistory int

	LocalSearchEvery int

	NoImprovementStop int

	Seed int64

	// Progress, if non-nil, is called with structured events during solve.
	// Never persisted: runstore marshals Config without it.
	Progress ProgressFunc `json:"-"`
}

// DefaultConfig returns the documented defaults for every option.
func DefaultConfig() Config {
	return Config{
		TimeLimit:         60 * time.Second,
		MaxILSIterations:  20,
		LNSIterations:     500,
		DestroyMin:        8,
		DestroyMax:        30,
		LAHCHistory:       1000,
		LocalSearchEvery:  20,
		NoImprovementStop: 5,
		Seed:              0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeLimit <= 0 {
		c.TimeLimit = d.TimeLimit
	}
	if c.MaxILSIterations <= 0 {
		c.MaxILSIterations = d.MaxILSIterations
	}
	if c.LNSIterations <= 0 {
		c.LNSIterations = d.LNSIterations
	}
	if c.DestroyMin <= 0 {
		c.DestroyMin = d.DestroyMin
	}
	if c.DestroyMax <= 0 {
		c.DestroyMax = d.DestroyMax
	}
	if c.LAHCHistory <= 0 {
		c.LAHCHistory = d.LAHCHistory
	}
	if c.LocalSearchEvery <= 0 {
		c.LocalSearchEvery = d.LocalSearchEvery
	}
	if c.NoImprovementStop <= 0 {
		c.NoImprovementStop = d.NoImprovementStop
	}
	return c
}
