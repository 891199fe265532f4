package aboutbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/inventory"
)

func TestBuilderAddDetectsLGPL(t *testing.T) {
	b := NewBuilder("MyApp")
	b.Add(Block{Name: "mitlib", LicenseType: "MIT"})
	b.Add(Block{Name: "lgpllib", LicenseType: "LGPL-2.1"})
	b.Add(Block{Name: "textonly", LicenseText: "GNU LESSER GENERAL PUBLIC LICENSE Version 3"})

	lgpl := b.LGPLBlocks()
	require.Len(t, lgpl, 2)
	assert.Equal(t, "lgpllib", lgpl[0].Name)
	assert.Equal(t, "textonly", lgpl[1].Name)
}

func TestBuilderBlocksSorted(t *testing.T) {
	b := NewBuilder("MyApp")
	b.Add(Block{Name: "zlib", Category: "modules"})
	b.Add(Block{Name: "Attrs", Category: "modules"})
	b.Add(Block{Name: "ffmpeg", Category: "binaries"})

	blocks := b.Blocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, "ffmpeg", blocks[0].Name, "categories sort first")
	assert.Equal(t, "Attrs", blocks[1].Name)
	assert.Equal(t, "zlib", blocks[2].Name)
}

func TestBuilderAddCredits(t *testing.T) {
	file := &credits.File{Records: []credits.Record{
		{Name: "PyYAML", Version: "5.4.1", URL: "https://pyyaml.org", RawText: "MIT terms..."},
		{Name: "certifi", Version: inventory.VersionUnknown},
	}}

	b := NewBuilder("MyApp")
	b.AddCredits("modules", file)

	blocks := b.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "PyYAML", blocks[0].Name)
	assert.Equal(t, "5.4.1", blocks[0].Version)
	assert.Equal(t, "https://pyyaml.org", blocks[0].URL)
	assert.Empty(t, blocks[1].Version, "the unknown sentinel does not render")
}

func TestBuilderAddInventory(t *testing.T) {
	inv := &inventory.Inventory{
		Dependencies: []inventory.Dependency{
			{
				Name:        "PyYAML",
				VersionSpec: "==5.4.1",
				License:     &inventory.LicenseInfo{Type: "MIT", Text: "MIT terms...", Copyrights: []string{"Copyright (c) 2021"}},
			},
			{
				Name:        "requests",
				VersionSpec: inventory.VersionUnknown,
				Registry:    &inventory.RegistryInfo{License: "Apache-2.0", HomePage: "https://example.com", Version: "2.28.0"},
			},
		},
		VendoredCandidates: []inventory.VendoredCandidate{
			{Path: "third_party/ordereddict", License: &inventory.LicenseInfo{Type: "PSF-2.0"}},
			{Path: "third_party/nolicense"},
		},
	}

	b := NewBuilder("MyApp")
	b.AddInventory("modules", inv)

	blocks := b.Blocks()
	require.Len(t, blocks, 3, "candidates without license info are dropped")
	assert.Equal(t, "ordereddict", blocks[0].Name)
	assert.Equal(t, "5.4.1", blocks[1].Version, "operator prefixes are stripped")
	assert.Equal(t, "Apache-2.0", blocks[2].LicenseType, "registry license fills the gap")
	assert.Equal(t, "2.28.0", blocks[2].Version, "registry version fills the gap")
}

func TestRender(t *testing.T) {
	b := NewBuilder("MyApp")
	b.Add(Block{
		Name:        "PyYAML",
		Version:     "5.4.1",
		Copyright:   "Copyright (c) 2021 Ingy dot Net",
		LicenseType: "MIT",
		LicenseText: "Permission is hereby granted <free> of charge...",
		URL:         "https://pyyaml.org",
	})
	b.Add(Block{Name: "pygtk", LicenseType: "LGPL-2.1"})

	var sb strings.Builder
	require.NoError(t, b.Render(&sb))
	html := sb.String()

	assert.Contains(t, html, "<title>MyApp third-party licenses</title>")
	assert.Contains(t, html, "PyYAML 5.4.1")
	assert.Contains(t, html, `href="https://pyyaml.org"`)
	assert.Contains(t, html, "License: MIT")
	assert.Contains(t, html, "&lt;free&gt;", "license text is HTML-escaped")
	assert.Contains(t, html, "lgpl-notice")
	assert.Contains(t, html, "available on request")
}

func TestRenderEmpty(t *testing.T) {
	var sb strings.Builder
	err := NewBuilder("MyApp").Render(&sb)
	assert.Error(t, err)
}

func TestIsLGPL(t *testing.T) {
	assert.True(t, IsLGPL("LGPL-3.0", ""))
	assert.True(t, IsLGPL("lgpl-2.1", ""))
	assert.True(t, IsLGPL("", "GNU Lesser General Public License"))
	assert.False(t, IsLGPL("GPL-3.0", "GNU General Public License"))
	assert.False(t, IsLGPL("MIT", "Permission is hereby granted"))
}
