package config

import (
	"fmt"
	"regexp"
)

func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Model.Threshold <= 0 {
		return fmt.Errorf("model threshold must be positive, got %g", cfg.Model.Threshold)
	}
	if cfg.Model.BatchSize <= 0 {
		return fmt.Errorf("model batch_size must be positive, got %d", cfg.Model.BatchSize)
	}

	for name, dev := range cfg.Network.Devices {
		if dev.Type == "" {
			return fmt.Errorf("device %s missing type", name)
		}
		if dev.ManagementIP == "" {
			return fmt.Errorf("device %s missing management_ip", name)
		}
	}

	for i, cat := range cfg.RCA.Type2.Categories {
		if cat.Name == "" {
			return fmt.Errorf("rca.type2.categories[%d] missing name", i)
		}
		if len(cat.Probes) == 0 {
			return fmt.Errorf("rca.type2 category %s has no probes", cat.Name)
		}
		if cat.Pattern != "" {
			if _, err := regexp.Compile(cat.Pattern); err != nil {
				return fmt.Errorf("rca.type2 category %s pattern: %w", cat.Name, err)
			}
		}
		for _, m := range cat.Metrics {
			re, err := regexp.Compile(m.Pattern)
			if err != nil {
				return fmt.Errorf("rca.type2 category %s metric %s pattern: %w", cat.Name, m.Name, err)
			}
			if re.NumSubexp() != 1 {
				return fmt.Errorf("rca.type2 category %s metric %s pattern must have exactly one capture group", cat.Name, m.Name)
			}
		}
	}

	return nil
}
