package engine

import "testing"

func TestResolve(t *testing.T) {
	ctx := Context{
		"user": map[string]any{
			"id": "u-1",
			"profile": map[string]any{
				"country": "AR",
				"skills":  []any{"go", "rust"},
			},
		},
		"flat":  42,
		"empty": nil,
	}

	tests := []struct {
		path      string
		want      any
		wantFound bool
	}{
		{"user.id", "u-1", true},
		{"user.profile.country", "AR", true},
		{"flat", 42, true},
		{"empty", nil, true},
		{"user.missing", nil, false},
		{"user.profile.country.deeper", nil, false},
		{"nope", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, found := Resolve(ctx, tt.path)
			if found != tt.wantFound {
				t.Fatalf("Resolve(%q) found=%v, want %v", tt.path, found, tt.wantFound)
			}
			if found && tt.want != nil && got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve_NestedContextValue(t *testing.T) {
	// A Context nested inside a Context still resolves.
	ctx := Context{"outer": Context{"inner": "x"}}
	got, found := Resolve(ctx, "outer.inner")
	if !found || got != "x" {
		t.Errorf("Resolve through nested Context failed: %v, %v", got, found)
	}
}
