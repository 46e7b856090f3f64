package cmd

import (
	"os"
	"testing"
)

func TestGetCliFlag(t *testing.T) {
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar("", flagName)
	expected := "envTest"
	d := "myDefault"
	// Test 1 - test default value applied to mock CLI flag.
	twelveFactorMode = false
	got := switches.getCliFlag(flagName, "", d)
	if got.val != d { // if no default was applied...
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag", got.val)
	}
	// Test 2 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true // enable twelveFactorMode so that env variables are read.
	got = switches.getCliFlag(flagName, "", d)
	if got.val != d {
		t.Fatalf("test 2 failed: expected default value (%v) to be applied to mock CLI flag fetched via environment variable (%v)", got.val, mockEnvVar)
	}
	// Test 3 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	err := os.Setenv(mockEnvVar, expected)
	if err != nil {
		t.Fatalf("test 3 failed: unable to set environment variable %v", mockEnvVar)
	}
	got = switches.getCliFlag(flagName, "", d)
	if got.val != expected {
		t.Fatalf("test 3 failed: expected value (%v) to be applied to mock CLI flag (%v) fetched from environment variable (%v); got: %v", expected, flagName, mockEnvVar, got.val)
	}
	_ = os.Unsetenv(mockEnvVar)
	// Test 4 - section-scoped env variables take the section name as a prefix.
	sectionEnvVar := flagNameToEnvVar("aws", flagName)
	if sectionEnvVar != "BP_AWS_MOCK" {
		t.Fatalf("test 4 failed: got %v", sectionEnvVar)
	}
	_ = os.Setenv(sectionEnvVar, expected)
	got = switches.getCliFlag(flagName, "aws", d)
	if got.val != expected {
		t.Fatalf("test 4 failed: expected value (%v) from environment variable (%v); got: %v", expected, sectionEnvVar, got.val)
	}
	_ = os.Unsetenv(sectionEnvVar)
	twelveFactorMode = false
}

func TestFlagNameToConfigKey(t *testing.T) {
	tests := map[string]string{
		"bucket":      "bucket",
		"export-name": "exportName",
		"table-name":  "tableName",
		"project-id":  "projectId",
	}
	for in, want := range tests {
		if got := flagNameToConfigKey(in); got != want {
			t.Fatalf("flagNameToConfigKey(%q) = %q, want %q", in, got, want)
		}
	}
}
