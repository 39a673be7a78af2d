package main

import "testing"

func TestValidateDumpConfig(t *testing.T) {
	if err := validateDumpConfig(dumpConfig{Loop: true}); err == nil {
		t.Error("looping dump without a frame count was accepted")
	}
	if err := validateDumpConfig(dumpConfig{Loop: true, Count: 10}); err != nil {
		t.Errorf("looping dump with a frame count was rejected: %v", err)
	}
	if err := validateDumpConfig(dumpConfig{}); err != nil {
		t.Errorf("default config was rejected: %v", err)
	}
}
