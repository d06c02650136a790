package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Account kinds understood by inspect.
const (
	KindGlobalpool = "globalpool"
	KindTreeConfig = "tree-config"
)

// InspectConfig holds configuration for the inspect command.
type InspectConfig struct {
	RPCURL       string
	Address      string
	Kind         string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"kind":          KindGlobalpool,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	return InspectConfig{
		RPCURL:       v.GetString("rpc"),
		Address:      v.GetString("address"),
		Kind:         v.GetString("kind"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

func (c InspectConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	switch c.Kind {
	case KindGlobalpool, KindTreeConfig:
		return nil
	default:
		return fmt.Errorf("unsupported kind %q", c.Kind)
	}
}
