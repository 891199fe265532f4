// Package aboutbox renders the third-party license document shipped in
// an application's about dialog. Blocks are aggregated from credits
// files and scan inventories, grouped by category, and rendered as a
// self-contained HTML page. LGPL components get a source-availability
// notice, which distributors of binaries are required to make.
package aboutbox

import (
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// Block is one attribution entry in the about box.
type Block struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Copyright   string `json:"copyright,omitempty" yaml:"copyright,omitempty"`
	LicenseType string `json:"license_type,omitempty" yaml:"license_type,omitempty"`
	LicenseText string `json:"license_text,omitempty" yaml:"license_text,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	LGPL        bool   `json:"lgpl" yaml:"lgpl"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Builder aggregates attribution blocks for rendering.
type Builder struct {
	title  string
	blocks []Block
}

// NewBuilder creates a Builder titled after the distributing
// application.
func NewBuilder(title string) *Builder {
	return &Builder{title: title}
}

// Add appends a block, filling in LGPL detection when the caller has
// not set it.
func (b *Builder) Add(block Block) {
	if !block.LGPL {
		block.LGPL = IsLGPL(block.LicenseType, block.LicenseText)
	}
	b.blocks = append(b.blocks, block)
}

// AddCredits converts every record of a parsed credits file into a
// block under the given category.
func (b *Builder) AddCredits(category string, file *credits.File) {
	for _, rec := range file.Records {
		version := rec.Version
		if version == inventory.VersionUnknown {
			version = ""
		}
		b.Add(Block{
			Name:        rec.Name,
			Version:     version,
			LicenseText: rec.RawText,
			URL:         rec.URL,
			Category:    category,
		})
	}
}

// AddInventory converts an inventory's dependencies into blocks,
// carrying whatever license and registry metadata the scan attached.
func (b *Builder) AddInventory(category string, inv *inventory.Inventory) {
	for _, dep := range inv.Dependencies {
		block := Block{
			Name:     dep.Name,
			Category: category,
		}
		if dep.VersionSpec != "" && dep.VersionSpec != inventory.VersionUnknown {
			block.Version = strings.TrimLeft(dep.VersionSpec, "=<>!~^ ")
		}
		if dep.License != nil {
			block.LicenseType = dep.License.Type
			block.LicenseText = dep.License.Text
			if len(dep.License.Copyrights) > 0 {
				block.Copyright = strings.Join(dep.License.Copyrights, "\n")
			}
		}
		if dep.Registry != nil {
			if block.LicenseType == "" {
				block.LicenseType = dep.Registry.License
			}
			block.URL = dep.Registry.HomePage
			if block.Version == "" {
				block.Version = dep.Registry.Version
			}
		}
		b.Add(block)
	}
	for _, vendored := range inv.VendoredCandidates {
		if vendored.License == nil {
			continue
		}
		b.Add(Block{
			Name:        lastSegment(vendored.Path),
			LicenseType: vendored.License.Type,
			LicenseText: vendored.License.Text,
			Copyright:   strings.Join(vendored.License.Copyrights, "\n"),
			Category:    category,
		})
	}
}

// Blocks returns the aggregated blocks sorted by category, then name.
func (b *Builder) Blocks() []Block {
	out := make([]Block, len(b.blocks))
	copy(out, b.blocks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// LGPLBlocks returns the blocks that need a source-availability
// notice.
func (b *Builder) LGPLBlocks() []Block {
	var out []Block
	for _, block := range b.Blocks() {
		if block.LGPL {
			out = append(out, block)
		}
	}
	return out
}

// Render writes the about-box HTML document.
func (b *Builder) Render(w io.Writer) error {
	if len(b.blocks) == 0 {
		return errors.NewValidationError("blocks", nil, "nothing to render")
	}

	data := struct {
		Title      string
		Blocks     []Block
		LGPLBlocks []Block
	}{
		Title:      b.title,
		Blocks:     b.Blocks(),
		LGPLBlocks: b.LGPLBlocks(),
	}
	return pageTemplate.Execute(w, data)
}

// IsLGPL reports whether a license is a Lesser GPL variant, checking
// the identifier first and falling back to the text.
func IsLGPL(licenseType, licenseText string) bool {
	if strings.HasPrefix(strings.ToUpper(licenseType), "LGPL") {
		return true
	}
	lower := strings.ToLower(licenseText)
	return strings.Contains(lower, "gnu lesser general public license") ||
		strings.Contains(lower, "gnu library general public license")
}

func lastSegment(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

var pageTemplate = template.Must(template.New("aboutbox").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} third-party licenses</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: 0.2em; }
.block { margin-bottom: 2em; }
.license-text { white-space: pre-wrap; font-family: monospace; font-size: 0.85em; background: #f6f6f6; padding: 1em; }
.lgpl-notice { border: 1px solid #c90; background: #ffc; padding: 1em; margin-bottom: 2em; }
</style>
</head>
<body>
<h1>{{.Title}} third-party licenses</h1>
{{if .LGPLBlocks}}
<div class="lgpl-notice">
<p>This distribution includes components licensed under the GNU Lesser
General Public License. Their source code, including any modifications,
is available on request:</p>
<ul>
{{range .LGPLBlocks}}<li>{{.Name}}{{if .Version}} {{.Version}}{{end}}</li>
{{end}}</ul>
</div>
{{end}}
{{range .Blocks}}
<div class="block">
<h2>{{.Name}}{{if .Version}} {{.Version}}{{end}}</h2>
{{if .URL}}<p><a href="{{.URL}}">{{.URL}}</a></p>{{end}}
{{if .Copyright}}<p>{{.Copyright}}</p>{{end}}
{{if .LicenseType}}<p>License: {{.LicenseType}}</p>{{end}}
{{if .LicenseText}}<div class="license-text">{{.LicenseText}}</div>{{end}}
</div>
{{end}}
</body>
</html>
`))
