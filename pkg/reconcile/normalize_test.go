package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "PyYAML", "pyyaml"},
		{"dots", "ruamel.yaml", "ruamel yaml"},
		{"underscores", "ruamel_yaml", "ruamel yaml"},
		{"hyphens", "font-awesome", "font awesome"},
		{"mixed separators", "Open__Sans--Bold", "open sans bold"},
		{"separator runs", "a._- b", "a b"},
		{"surrounding whitespace", "  requests  ", "requests"},
		{"internal whitespace run", "open   sans", "open sans"},
		{"empty", "", ""},
		{"only separators", "._-", ""},
		{"whitespace only", "   \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"PyYAML", "ruamel.yaml", "Open Sans", "font-awesome", "",
		"already normalized", "a._- b", "certifi", "  Spaced.Out_Name  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", in)
	}
}
