package cmd

import (
	"os"
	"testing"
)

var results = map[string]int{}

func getMock12FactorExecutor(action string) func() error {
	return func() error {
		results[action]++
		return nil
	}
}

var mockTwelveFactorActions = map[string]func() error{
	"load-aws":   getMock12FactorExecutor("load-aws"),
	"load-azure": getMock12FactorExecutor("load-azure"),
	"load-all":   getMock12FactorExecutor("load-all"),
	"serve-":     getMock12FactorExecutor("serve-"),
}

func TestSetupTwelveFactorMode(t *testing.T) {
	_ = os.Unsetenv(envVarTwelveFactorMode)
	setupTwelveFactorMode()
	if twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be false; got true")
	}
	_ = os.Setenv(envVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be true; got false")
	}
	if lambdaMode {
		t.Fatal("expected lambdaMode to be false; got true")
	}
	_ = os.Setenv(envVarTwelveFactorMode, "lambda")
	setupTwelveFactorMode()
	if !twelveFactorMode || !lambdaMode {
		t.Fatal("expected twelveFactorMode and lambdaMode to be true")
	}
	_ = os.Unsetenv(envVarTwelveFactorMode)
}

func TestExecute12FactorMode(t *testing.T) {
	_ = os.Setenv(envVarLogLevel, "error")

	// Test 1 - action runner function is called.
	_ = os.Setenv(envVarCommand, "load")
	_ = os.Setenv(envVarPipeline, "aws")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 1 failed: expected nil error got error: %v", err)
	}
	if results["load-aws"] == 0 {
		t.Fatal("test 1 failed: expected the load-aws runner to be called")
	}

	// Test 2 - invalid command + pipeline.
	_ = os.Setenv(envVarCommand, "invalidCommand")
	_ = os.Setenv(envVarPipeline, "invalidPipeline")
	if err := execute12FactorMode(mockTwelveFactorActions); err == nil {
		t.Fatal("test 2 failed, expected: error; got: nil")
	}

	// Test 3 - serve needs no pipeline.
	_ = os.Setenv(envVarCommand, "serve")
	_ = os.Setenv(envVarPipeline, "")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 3 failed: expected nil error got error: %v", err)
	}
	if results["serve-"] == 0 {
		t.Fatal("test 3 failed: expected the serve runner to be called")
	}
}

func TestTwelveFactorActionsCoverCobraCommands(t *testing.T) {
	// The runner funcs behind the Cobra load subcommands must all be
	// reachable in 12-factor mode.
	for _, key := range []string{"load-aws", "load-azure", "load-all", "serve-"} {
		if _, ok := twelveFactorActions[key]; !ok {
			t.Fatalf("twelveFactorActions does not handle action %v", key)
		}
	}
}
