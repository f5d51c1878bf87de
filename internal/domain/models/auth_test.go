package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAdminClaims_Capabilities(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		want     []string
	}{
		{"no metadata", nil, nil},
		{"no capabilities", map[string]interface{}{"provider": "email"}, nil},
		{"wrong shape", map[string]interface{}{"capabilities": "edit_theme_options"}, nil},
		{
			"strings only",
			map[string]interface{}{"capabilities": []interface{}{"edit_theme_options", 3.0, "manage_categories"}},
			[]string{"edit_theme_options", "manage_categories"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AdminClaims{AppMetadata: tt.metadata}
			if diff := cmp.Diff(tt.want, c.Capabilities()); diff != "" {
				t.Errorf("Capabilities() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
