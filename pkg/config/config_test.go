package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Web.Enabled != true {
		t.Errorf("expected Web.Enabled default true, got %v", cfg.Web.Enabled)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected Web.Port default 8080, got %d", cfg.Web.Port)
	}
	if cfg.Trellis.ConstraintLength != 3 {
		t.Errorf("expected Trellis.ConstraintLength default 3, got %d", cfg.Trellis.ConstraintLength)
	}
	if len(cfg.Trellis.Generators) != 2 {
		t.Errorf("expected Trellis.Generators default of length 2, got %v", cfg.Trellis.Generators)
	}
	if !cfg.Trellis.Terminate {
		t.Errorf("expected Trellis.Terminate default true")
	}
	if cfg.Decoder.SamplePrecision != 8 {
		t.Errorf("expected Decoder.SamplePrecision default 8, got %d", cfg.Decoder.SamplePrecision)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestValidate_Errors(t *testing.T) {
	validTrellis := TrellisConfig{ConstraintLength: 3, Generators: []int{7, 5}, BlockBits: 4}

	t.Run("invalid constraint length", func(t *testing.T) {
		cfg := &Config{Trellis: TrellisConfig{ConstraintLength: 1, Generators: []int{1}, BlockBits: 4}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for constraint_length < 2")
		}
	})

	t.Run("missing generators", func(t *testing.T) {
		cfg := &Config{Trellis: TrellisConfig{ConstraintLength: 3, BlockBits: 4}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for empty generators")
		}
	})

	t.Run("generator out of range", func(t *testing.T) {
		cfg := &Config{Trellis: TrellisConfig{ConstraintLength: 3, Generators: []int{9}, BlockBits: 4}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for out-of-range generator")
		}
	})

	t.Run("non-positive block_bits", func(t *testing.T) {
		cfg := &Config{Trellis: TrellisConfig{ConstraintLength: 3, Generators: []int{7, 5}, BlockBits: 0}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for non-positive block_bits")
		}
	})

	t.Run("invalid web port when enabled", func(t *testing.T) {
		cfg := &Config{
			Trellis: validTrellis,
			Web:     WebConfig{Enabled: true, Port: 70000},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for invalid web.port out of range")
		}
	})

	t.Run("events enabled without broker", func(t *testing.T) {
		cfg := &Config{
			Trellis: validTrellis,
			Events:  EventsConfig{Enabled: true},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for events enabled without broker")
		}
	})

	t.Run("invalid sample precision", func(t *testing.T) {
		cfg := &Config{
			Trellis: validTrellis,
			Decoder: DecoderConfig{SamplePrecision: 33},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for sample_precision out of range")
		}
	})

	t.Run("named trellis profile is validated too", func(t *testing.T) {
		cfg := &Config{
			Trellis:   validTrellis,
			Trellises: map[string]TrellisConfig{"bad": {ConstraintLength: 3, Generators: []int{9}, BlockBits: 4}},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for invalid named trellis profile")
		}
	})
}
