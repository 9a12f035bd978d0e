package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateIncludesBuildFields(t *testing.T) {
	Version, Commit, Date = "v0.3.0", "abc123", "2024-05-01"
	defer func() { Version, Commit, Date = "dev", "none", "unknown" }()

	tmpl := Template()
	for _, want := range []string{"{{.Name}}", "v0.3.0", "abc123", "2024-05-01"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}

	if got := String(); !strings.HasPrefix(got, "version: v0.3.0") {
		t.Errorf("String() = %q", got)
	}
}

func TestTitle(t *testing.T) {
	defer func() { Version = "dev" }()

	tests := []struct {
		version string
		want    string
	}{
		{"dev", "glitchgen dev"},
		{"v1.0.0", "glitchgen v1"},
		{"v1.2.0", "glitchgen v1.2"},
		{"v1.2.3", "glitchgen v1.2.3"},
		{"2.0.1", "glitchgen v2.0.1"},
	}

	for _, tt := range tests {
		Version = tt.version
		if got := Title(); got != tt.want {
			t.Errorf("Title() with Version=%q = %q, want %q", tt.version, got, tt.want)
		}
	}
}
