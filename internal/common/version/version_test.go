package version

import "testing"

func TestGet(t *testing.T) {
	v := Get()
	if v == "" {
		t.Fatal("Get() returned an empty version")
	}
	if v != Version {
		t.Errorf("Get() = %q, want %q", v, Version)
	}
}
