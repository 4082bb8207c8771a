// Package config holds the engine's settings. Values come from, in order
// of precedence, command-line flags, XIANGQI_* environment variables, and
// the defaults below.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigSearchPlies       = "search-plies"
	ConfigSearchTime        = "search-time"
	ConfigTTableMemFraction = "ttable-mem-fraction"
	ConfigTTableMaxEntries  = "ttable-max-entries"
	ConfigZobristSeed       = "zobrist-seed"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
	ConfigNatsURL           = "nats-url"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a Config with every default set and nothing read
// from flags or the environment.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigSearchPlies, 5)
	c.SetDefault(ConfigSearchTime, 10*time.Second)
	c.SetDefault(ConfigTTableMemFraction, 0.05)
	c.SetDefault(ConfigTTableMaxEntries, 0)
	c.SetDefault(ConfigZobristSeed, uint64(42))
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
}

// Load reads flags from args and the environment. Arguments that are not
// flags are left for the caller in Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("xiangqi", pflag.ContinueOnError)
	// the first non-flag starts a shell command, whose own options follow.
	fs.SetInterspersed(false)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigSearchPlies, 5, "maximum search depth in plies")
	fs.Duration(ConfigSearchTime, 10*time.Second, "time budget per engine move; 0 means no limit")
	fs.Float64(ConfigTTableMemFraction, 0.05, "fraction of system memory the transposition table may use")
	fs.Int(ConfigTTableMaxEntries, 0, "fixed transposition table capacity; overrides the memory fraction")
	fs.Uint64(ConfigZobristSeed, 42, "seed for the zobrist hash keys")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server the bot listens on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("xiangqi")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	c.Set("args", fs.Args())

	if c.GetInt(ConfigSearchPlies) < 1 {
		return fmt.Errorf("%s must be at least 1", ConfigSearchPlies)
	}
	f := c.GetFloat64(ConfigTTableMemFraction)
	if f < 0 || f > 1 {
		return fmt.Errorf("%s must be between 0 and 1", ConfigTTableMemFraction)
	}
	return nil
}

// Args returns the non-flag arguments left over from Load.
func (c *Config) Args() []string {
	return c.GetStringSlice("args")
}

// SanitizedSettings returns the settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
