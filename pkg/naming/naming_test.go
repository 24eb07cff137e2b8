package naming

import (
	"path/filepath"
	"testing"

	"ctcormack/pkg/remap"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		want   string
	}{
		{"ct.nii", "c", "cct.nii"},
		{"ct.nii.gz", "h", "hct.nii.gz"},
		{filepath.Join("scans", "subj01", "ct.nii"), "c", filepath.Join("scans", "subj01", "cct.nii")},
		{"ct.nii", "", "ct.nii"},
		{"ct.nii", "rescaled_", "rescaled_ct.nii"},
	}

	for _, tt := range tests {
		if got := Derive(tt.input, tt.prefix); got != tt.want {
			t.Errorf("Derive(%q, %q) = %q, want %q", tt.input, tt.prefix, got, tt.want)
		}
	}
}

func TestDefaultPrefix(t *testing.T) {
	if got := DefaultPrefix(remap.HounsfieldToCormack); got != CormackPrefix {
		t.Errorf("forward prefix = %q, want %q", got, CormackPrefix)
	}
	if got := DefaultPrefix(remap.CormackToHounsfield); got != HounsfieldPrefix {
		t.Errorf("inverse prefix = %q, want %q", got, HounsfieldPrefix)
	}
}

// TestForDirectionPrefixIsIndependent checks that an explicit prefix wins
// regardless of direction
func TestForDirectionPrefixIsIndependent(t *testing.T) {
	if got := ForDirection("ct.nii", "", remap.CormackToHounsfield); got != "hct.nii" {
		t.Errorf("got %q, want hct.nii", got)
	}
	if got := ForDirection("ct.nii", "h", remap.HounsfieldToCormack); got != "hct.nii" {
		t.Errorf("got %q, want hct.nii", got)
	}
	if got := ForDirection("ct.nii", "x", remap.CormackToHounsfield); got != "xct.nii" {
		t.Errorf("got %q, want xct.nii", got)
	}
}
