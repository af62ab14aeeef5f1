package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"plangenie/internal/models"
)

// YAMLConfig represents the structure of the optional tuning file.
type YAMLConfig struct {
	// Extra spellings mapped to a canonical operator, e.g. "reliance jio": jio.
	OperatorAliases map[string]string `yaml:"operator_aliases"`
	// Replacement phrase lists keyed by intent (greeting, thanks, farewell, howareyou).
	CannedReplies map[string][]string `yaml:"canned_replies"`
}

// LoadYAMLConfig loads the tuning file named by CONFIG_FILE, defaulting to
// "plangenie.yaml". ${VAR} references are expanded from the environment.
// Returns nil without error if the file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "plangenie.yaml"))
}

// LoadYAMLConfigFile loads the tuning file at path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	aliases := make(map[string]string, len(cfg.OperatorAliases))
	for alias, op := range cfg.OperatorAliases {
		op = strings.ToLower(strings.TrimSpace(op))
		if !models.IsKnownOperator(op) {
			return nil, fmt.Errorf("parse %s: alias %q maps to unknown operator %q", path, alias, op)
		}
		aliases[strings.ToLower(strings.TrimSpace(alias))] = op
	}
	cfg.OperatorAliases = aliases

	return &cfg, nil
}

// Aliases returns the operator aliases, or nil for a nil config.
func (c *YAMLConfig) Aliases() map[string]string {
	if c == nil {
		return nil
	}
	return c.OperatorAliases
}

// Replies returns the canned reply overrides, or nil for a nil config.
func (c *YAMLConfig) Replies() map[string][]string {
	if c == nil {
		return nil
	}
	return c.CannedReplies
}
