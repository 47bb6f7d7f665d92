package main

import "testing"

func TestResolveVersion_PrefersLinkerValue(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Fatalf("expected linker version, got %q", got)
	}
}

func TestResolveVersion_NeverEmpty(t *testing.T) {
	if got := resolveVersion(); got == "" {
		t.Fatalf("expected a version string")
	}
}
