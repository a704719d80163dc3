package alert

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/couchcryptid/wems/internal/domain"
)

// LoadRules reads the alert-rule YAML file at path. The file's "alerts"
// section replaces the default table; a missing file yields the defaults.
func LoadRules(path string, logger *slog.Logger) (map[domain.Category]Rule, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("alert config not found, using defaults", "path", path)
			return DefaultRules(), nil
		}
		return nil, fmt.Errorf("read alert config %s: %w", path, err)
	}

	section := v.GetStringMap("alerts")
	rules := make(map[domain.Category]Rule, len(section))
	for name, raw := range section {
		entry, ok := raw.(map[string]any)
		if !ok {
			if raw != nil {
				return nil, fmt.Errorf("alert config %s: category %q is not a mapping", path, name)
			}
			entry = map[string]any{}
		}
		rules[domain.Category(name)] = Rule(entry)
	}

	logger.Info("alert config loaded", "path", path, "categories", len(rules))
	return rules, nil
}
