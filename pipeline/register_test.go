package pipeline

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRunUnknownPipeline(t *testing.T) {
	err := Run("gcp", &Config{})
	if err == nil {
		t.Fatal("expected an error")
	}
	upe, ok := err.(*UnknownPipelineError)
	if !ok {
		t.Fatalf("expected UnknownPipelineError, got %T", err)
	}
	if len(upe.Available) != len(Registry) {
		t.Fatalf("bad available pipelines: %v", upe.Available)
	}
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	// Swap in a temporary registry so RunAll is exercised without cloud
	// clients.
	saved := Registry
	defer func() { Registry = saved }()
	var ran []string
	Registry = map[string]Pipeline{
		"one": {Description: "first", Run: func(cfg *Config) error {
			ran = append(ran, "one")
			return errors.New("boom")
		}},
		"two": {Description: "second", Run: func(cfg *Config) error {
			ran = append(ran, "two")
			return nil
		}},
	}

	cfgs := map[string]*Config{"one": {}, "two": {}}
	err := RunAll(testLog, cfgs)
	if err == nil {
		t.Fatal("expected an error")
	}
	prf, ok := err.(*PartialRunFailure)
	if !ok {
		t.Fatalf("expected PartialRunFailure, got %T", err)
	}
	if len(prf.Failures) != 1 || prf.Failures["one"] == nil {
		t.Fatalf("bad failures: %v", prf.Failures)
	}
	// The failing pipeline must not stop the next one.
	if len(ran) != 2 {
		t.Fatalf("expected both pipelines to run, got %v", ran)
	}
}

func TestRunAllSkipsUnconfiguredPipelines(t *testing.T) {
	saved := Registry
	defer func() { Registry = saved }()
	ran := 0
	Registry = map[string]Pipeline{
		"one": {Description: "first", Run: func(cfg *Config) error {
			ran++
			return nil
		}},
		"two": {Description: "second", Run: func(cfg *Config) error {
			ran++
			return nil
		}},
	}

	if err := RunAll(testLog, map[string]*Config{"two": {}}); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if ran != 1 {
		t.Fatalf("expected only the configured pipeline to run, got %v", ran)
	}
}
