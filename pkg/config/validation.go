package config

import "fmt"

// validate validates the configuration.
func validate(cfg *Config) error {
	if err := validateTrellis("trellis", cfg.Trellis); err != nil {
		return err
	}
	for name, t := range cfg.Trellises {
		if err := validateTrellis(fmt.Sprintf("trellises.%s", name), t); err != nil {
			return err
		}
	}

	if cfg.Decoder.SamplePrecision < 0 || cfg.Decoder.SamplePrecision > 32 {
		return fmt.Errorf("decoder.sample_precision must be between 0 and 32")
	}
	if cfg.Decoder.OutputBudgetBytes < 0 {
		return fmt.Errorf("decoder.output_budget_bytes must not be negative")
	}

	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	if cfg.Events.Enabled {
		if cfg.Events.Broker == "" {
			return fmt.Errorf("events.broker is required when events is enabled")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	return nil
}

func validateTrellis(prefix string, t TrellisConfig) error {
	if t.ConstraintLength < 2 {
		return fmt.Errorf("%s.constraint_length must be >= 2", prefix)
	}
	if len(t.Generators) == 0 {
		return fmt.Errorf("%s.generators must list at least one polynomial", prefix)
	}
	maxTap := 1 << uint(t.ConstraintLength)
	for i, g := range t.Generators {
		if g <= 0 || g >= maxTap {
			return fmt.Errorf("%s.generators[%d] = %#o out of range for constraint length %d", prefix, i, g, t.ConstraintLength)
		}
	}
	if t.BlockBits <= 0 {
		return fmt.Errorf("%s.block_bits must be positive", prefix)
	}
	return nil
}
