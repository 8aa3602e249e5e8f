package app

import (
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/layout"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Production bool `env:"PRODUCTION" envDefault:"false"`
	// Levels are {trace, debug, info, warn, error, fatal, panic}.
	// See github.com/rs/zerolog@v1.19.0/log.go for possible values.
	LogLevel string `env:"LOGLEVEL" envDefault:"info"`
	// HTTPTimeout bounds reading a request and a single websocket write
	HTTPTimeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Port        string        `env:"PORT" envDefault:"8080"`
	// AllowedOrigins for cross origin requests of the front-end
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// Seed of the initial placement
	Seed            uint64 `env:"LAYOUT_SEED" envDefault:"1"`
	Parallelization int    `env:"LAYOUT_PARALLELIZATION" envDefault:"0"`
	InitialLayout   string `env:"LAYOUT_INITIAL" envDefault:"category-ring"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}

func SetupLogging(conf Config) {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		println("failed to parse LogLevel: '" + conf.LogLevel + "', setting to debug")
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if !conf.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// SimulationConfig derives the engine configuration, everything not set by
// conf keeps its default.
func (conf Config) SimulationConfig() (layout.SimulationConfig, error) {
	sim := layout.DefaultSimulationConfig
	sim.Seed = conf.Seed
	sim.Parallelization = conf.Parallelization
	if conf.InitialLayout != "" {
		initial, err := layout.ParseInitialLayout(conf.InitialLayout)
		if err != nil {
			return sim, err
		}
		sim.InitialLayout = initial
	}
	return sim, nil
}

// LoadForceConfig reads a YAML force configuration. Values missing from the
// file keep their defaults; an empty path returns the defaults.
func LoadForceConfig(path string) (layout.ForceConfig, error) {
	forces := layout.DefaultForceConfig()
	if path == "" {
		return forces, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return forces, errors.Wrapf(err, "failed to read force config '%s'", path)
	}
	if err := yaml.Unmarshal(content, &forces); err != nil {
		return forces, errors.Wrapf(err, "failed to parse force config '%s'", path)
	}
	return forces, nil
}

// RetryAtIntervals calls fn until it succeeds, sleeping intervals[i] after
// the i-th failure. It gives up with the last error once all intervals are
// used up.
func RetryAtIntervals(fn func() error, intervals []time.Duration) error {
	err := fn()
	for i := 0; err != nil && i < len(intervals); i++ {
		time.Sleep(intervals[i])
		err = fn()
	}
	return err
}
