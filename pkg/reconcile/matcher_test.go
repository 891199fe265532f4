package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTestOptions(t *testing.T) *options {
	t.Helper()
	o, err := newOptions(nil)
	if err != nil {
		t.Fatalf("default options: %v", err)
	}
	return o
}

func TestScore(t *testing.T) {
	opts := defaultTestOptions(t)

	tests := []struct {
		name       string
		a, b       string
		wantScore  float64
		wantMethod Method
	}{
		{"identical keys", "pyyaml", "pyyaml", 1.0, MethodExact},
		{"substring containment", "markdown", "python markdown", substringScore, MethodSubstring},
		{"short key below substring guard", "yaml", "pyyaml", 0, MethodNone},
		{"near identical fuzzy", "ordereddoct", "ordereddict", float64(10) / 11, MethodFuzzy},
		{"unrelated names", "certifi", "pyyaml", 0, MethodNone},
		{"empty left key", "", "pyyaml", 0, MethodNone},
		{"empty right key", "pyyaml", "", 0, MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotScore, gotMethod := score(tt.a, tt.b, opts)
			assert.InDelta(t, tt.wantScore, gotScore, 1e-9)
			assert.Equal(t, tt.wantMethod, gotMethod)
		})
	}
}

func TestScoreLoweredFuzzyThreshold(t *testing.T) {
	o, err := newOptions([]Option{WithThreshold(0.6)})
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	// "yaml" nests in "pyyaml" but is below the substring guard; at the
	// default threshold its similarity ratio (4/6) is rejected, while a
	// lowered threshold admits it as a fuzzy match.
	gotScore, gotMethod := score("yaml", "pyyaml", o)
	assert.InDelta(t, float64(4)/6, gotScore, 1e-9)
	assert.Equal(t, MethodFuzzy, gotMethod)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"pyyaml", "pyyaml", 1.0},
		{"yaml", "pyyaml", float64(4) / 6},
		{"abc", "xyz", 0},
		{"", "", 1.0},
		{"abc", "", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, similarity(tt.a, tt.b), 1e-9, "similarity(%q, %q)", tt.a, tt.b)
		assert.InDelta(t, tt.want, similarity(tt.b, tt.a), 1e-9, "similarity must be symmetric for %q/%q", tt.a, tt.b)
	}
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "exact", MethodExact.String())
	assert.Equal(t, "substring", MethodSubstring.String())
	assert.Equal(t, "fuzzy", MethodFuzzy.String())
	assert.Equal(t, "none", MethodNone.String())
}

func BenchmarkSimilarity(b *testing.B) {
	left := "some reasonably long component name"
	right := "same reasonably long component names"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		similarity(left, right)
	}
}
