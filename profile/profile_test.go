package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Enabled(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want bool
	}{
		{"empty", "", false},
		{"unsupported", "quantum", false},
		{"cpu", "cpu", slices.Contains(Modes(), "cpu")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Profiler{Mode: tt.mode}).Enabled(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProfiler_StartDisabled(t *testing.T) {
	p := Profiler{Mode: "quantum"}.Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("expected a no-op profiler, got %T", p)
	}

	p.Stop()
}
