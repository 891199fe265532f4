package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
	"github.com/credtally/credtally/pkg/reconcile"
)

func detected(name, versionSpec string) inventory.Component {
	return inventory.Component{Name: name, VersionSpec: versionSpec, Origin: "requirements.txt:1"}
}

func documented(name, version string) credits.Record {
	return credits.Record{Name: name, Version: version}
}

func TestReconcileExactMatch(t *testing.T) {
	result, err := reconcile.Reconcile(
		[]inventory.Component{detected("PyYAML", "==5.4.1")},
		[]credits.Record{documented("pyyaml", "5.4.1")},
	)
	require.NoError(t, err)

	require.Len(t, result.Correct, 1)
	assert.Equal(t, "PyYAML", result.Correct[0].DetectedName)
	assert.Equal(t, "pyyaml", result.Correct[0].DocumentedName)
	assert.Equal(t, "exact", result.Correct[0].Method)
	assert.InDelta(t, 1.0, result.Correct[0].Score, 1e-9)
	assert.Empty(t, result.VersionMismatches)
	assert.Empty(t, result.MissingInDocs)
	assert.Empty(t, result.MissingInRepo)
	assert.Equal(t, 1, result.Summary.Correct)
}

func TestReconcileVersionMismatch(t *testing.T) {
	result, err := reconcile.Reconcile(
		[]inventory.Component{detected("PyYAML", "==5.4.1")},
		[]credits.Record{documented("pyyaml", "5.1")},
	)
	require.NoError(t, err)

	assert.Empty(t, result.Correct)
	require.Len(t, result.VersionMismatches, 1)
	assert.Equal(t, "==5.4.1", result.VersionMismatches[0].DetectedVersion)
	assert.Equal(t, "5.1", result.VersionMismatches[0].DocumentedVersion)
	assert.Equal(t, 1, result.Summary.VersionMismatch)
}

func TestReconcileUnknownVersionIsNotFlagged(t *testing.T) {
	tests := []struct {
		name              string
		detectedVersion   string
		documentedVersion string
	}{
		{"detected unknown", "unknown", "5.4.1"},
		{"documented unknown", "==5.4.1", "unknown"},
		{"detected empty", "", "5.4.1"},
		{"both unknown", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reconcile.Reconcile(
				[]inventory.Component{detected("pyyaml", tt.detectedVersion)},
				[]credits.Record{documented("pyyaml", tt.documentedVersion)},
			)
			require.NoError(t, err)
			assert.Len(t, result.Correct, 1, "unverifiable versions classify as correct")
			assert.Empty(t, result.VersionMismatches)
		})
	}
}

func TestReconcileMissingInDocs(t *testing.T) {
	result, err := reconcile.Reconcile(
		[]inventory.Component{detected("certifi", "==2021.5.30")},
		[]credits.Record{documented("pyyaml", "5.4.1")},
	)
	require.NoError(t, err)

	require.Len(t, result.MissingInDocs, 1)
	assert.Equal(t, "certifi", result.MissingInDocs[0].Name)
	require.Len(t, result.MissingInRepo, 1)
	assert.Equal(t, "pyyaml", result.MissingInRepo[0].Name)
}

func TestReconcileMissingInRepo(t *testing.T) {
	result, err := reconcile.Reconcile(
		nil,
		[]credits.Record{documented("ordereddict", "1.1")},
	)
	require.NoError(t, err)

	require.Len(t, result.MissingInRepo, 1)
	assert.Equal(t, "ordereddict", result.MissingInRepo[0].Name)
	assert.Equal(t, 1, result.Summary.MissingInRepo)
}

func TestReconcileEmptyInputs(t *testing.T) {
	result, err := reconcile.Reconcile(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Correct)
	assert.Empty(t, result.VersionMismatches)
	assert.Empty(t, result.MissingInDocs)
	assert.Empty(t, result.MissingInRepo)

	result, err = reconcile.Reconcile(
		[]inventory.Component{detected("certifi", "")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, result.MissingInDocs, 1)
}

func TestReconcileThresholdSensitivity(t *testing.T) {
	det := []inventory.Component{detected("yaml", "")}
	doc := []credits.Record{documented("pyyaml", "5.4.1")}

	// At the default threshold the pair must not match: "yaml" is below
	// the substring guard and its similarity ratio is too low.
	result, err := reconcile.Reconcile(det, doc, reconcile.WithThreshold(0.80))
	require.NoError(t, err)
	assert.Empty(t, result.Correct)
	require.Len(t, result.MissingInDocs, 1)
	require.Len(t, result.MissingInRepo, 1)

	// A lowered threshold admits the pair as a fuzzy match.
	result, err = reconcile.Reconcile(det, doc, reconcile.WithThreshold(0.60))
	require.NoError(t, err)
	require.Len(t, result.Correct, 1)
	assert.Equal(t, "fuzzy", result.Correct[0].Method)
	assert.Empty(t, result.MissingInDocs)
	assert.Empty(t, result.MissingInRepo)
}

func TestReconcileExclusivityUnderContention(t *testing.T) {
	// Both detected names fuzzy-match the single documented record; only
	// the higher-scoring one may be committed.
	det := []inventory.Component{
		detected("ordereddozt", ""), // two substitutions away
		detected("ordereddoct", ""), // one substitution away
	}
	doc := []credits.Record{documented("ordereddict", "1.1")}

	result, err := reconcile.Reconcile(det, doc)
	require.NoError(t, err)

	require.Len(t, result.Correct, 1)
	assert.Equal(t, "ordereddoct", result.Correct[0].DetectedName)
	assert.Equal(t, "fuzzy", result.Correct[0].Method)
	require.Len(t, result.MissingInDocs, 1)
	assert.Equal(t, "ordereddozt", result.MissingInDocs[0].Name)
}

func TestReconcileSubstringMatch(t *testing.T) {
	result, err := reconcile.Reconcile(
		[]inventory.Component{detected("python-markdown", "")},
		[]credits.Record{documented("Markdown", "unknown")},
	)
	require.NoError(t, err)

	require.Len(t, result.Correct, 1)
	assert.Equal(t, "substring", result.Correct[0].Method)
	assert.InDelta(t, 0.85, result.Correct[0].Score, 1e-9)
}

func TestReconcileSkipsEmptyNames(t *testing.T) {
	result, err := reconcile.Reconcile(
		[]inventory.Component{detected("---", ""), detected("certifi", "")},
		[]credits.Record{documented("   ", "1.0"), documented("certifi", "unknown")},
	)
	require.NoError(t, err)

	require.Len(t, result.SkippedDetected, 1)
	assert.Equal(t, "---", result.SkippedDetected[0].Name)
	require.Len(t, result.SkippedDocumented, 1)
	require.Len(t, result.Correct, 1)
	assert.Equal(t, "certifi", result.Correct[0].DetectedName)
	assert.Equal(t, 1, result.Summary.SkippedDetected)
	assert.Equal(t, 1, result.Summary.SkippedDocumented)
}

func TestReconcileThresholdValidation(t *testing.T) {
	_, err := reconcile.Reconcile(nil, nil, reconcile.WithThreshold(1.5))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = reconcile.Reconcile(nil, nil, reconcile.WithThreshold(-0.1))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = reconcile.Reconcile(nil, nil, reconcile.WithFuzzyThreshold(2))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcilePartitionInvariant(t *testing.T) {
	det := []inventory.Component{
		detected("PyYAML", "==5.4.1"),
		detected("certifi", "==2021.5.30"),
		detected("requests", ">=2.0"),
		detected("ordereddoct", ""),
		detected("", ""),
	}
	doc := []credits.Record{
		documented("pyyaml", "5.4.1"),
		documented("ordereddict", "1.1"),
		documented("six", "1.16.0"),
	}

	result, err := reconcile.Reconcile(det, doc)
	require.NoError(t, err)

	var detectedOut []string
	for _, m := range result.Correct {
		detectedOut = append(detectedOut, m.DetectedName)
	}
	for _, m := range result.VersionMismatches {
		detectedOut = append(detectedOut, m.DetectedName)
	}
	for _, c := range result.MissingInDocs {
		detectedOut = append(detectedOut, c.Name)
	}
	for _, c := range result.SkippedDetected {
		detectedOut = append(detectedOut, c.Name)
	}
	assert.ElementsMatch(t, []string{"PyYAML", "certifi", "requests", "ordereddoct", ""}, detectedOut,
		"every detected component must appear exactly once across the result")

	var documentedOut []string
	for _, m := range result.Correct {
		documentedOut = append(documentedOut, m.DocumentedName)
	}
	for _, m := range result.VersionMismatches {
		documentedOut = append(documentedOut, m.DocumentedName)
	}
	for _, r := range result.MissingInRepo {
		documentedOut = append(documentedOut, r.Name)
	}
	for _, r := range result.SkippedDocumented {
		documentedOut = append(documentedOut, r.Name)
	}
	assert.ElementsMatch(t, []string{"pyyaml", "ordereddict", "six"}, documentedOut,
		"every documented record must appear exactly once across the result")
}

func TestReconcileDeterminism(t *testing.T) {
	det := []inventory.Component{
		detected("zebra-lib", "==1.0"),
		detected("alpha-lib", "==2.0"),
		detected("PyYAML", "==5.4.1"),
		detected("certifi", ""),
	}
	doc := []credits.Record{
		documented("alpha_lib", "2.0"),
		documented("pyyaml", "5.1"),
		documented("zebra.lib", "unknown"),
	}

	first, err := reconcile.Reconcile(det, doc)
	require.NoError(t, err)
	second, err := reconcile.Reconcile(det, doc)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must yield identical output ordering and classification")
}

func TestReconcileResultOrdering(t *testing.T) {
	det := []inventory.Component{
		detected("zlib", ""),
		detected("certifi", ""),
		detected("attrs", ""),
	}

	result, err := reconcile.Reconcile(det, nil)
	require.NoError(t, err)

	require.Len(t, result.MissingInDocs, 3)
	assert.Equal(t, "attrs", result.MissingInDocs[0].Name)
	assert.Equal(t, "certifi", result.MissingInDocs[1].Name)
	assert.Equal(t, "zlib", result.MissingInDocs[2].Name)
	assert.True(t, result.HasDiscrepancies())
}
