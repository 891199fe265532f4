package credits

import (
	"sort"
	"strings"

	"github.com/credtally/credtally/pkg/inventory"
)

// markerWidth is the column the "=" run on a section marker pads to.
const markerWidth = 80

// DefaultHeader opens a generated software_credits file.
const DefaultHeader = "This application uses the following third party components. " +
	"Each section lists the component, its license, and the required attribution."

// Entry is one component to render into a draft credits file.
type Entry struct {
	Name      string
	Version   string
	URL       string
	License   string // SPDX identifier when known
	Copyright string
}

// Draft renders a skeleton software_credits file for the given entries,
// sorted by name. Each section carries whatever license and copyright
// details are known, with a placeholder line where the license text
// still has to be filled in by hand.
func Draft(header string, entries []Entry) string {
	if header == "" {
		header = DefaultHeader
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, e := range sorted {
		b.WriteString(markerLine(e))
		b.WriteString("\n\n")
		if e.Copyright != "" {
			b.WriteString(e.Copyright)
			b.WriteString("\n")
		}
		if e.License != "" {
			b.WriteString("License: ")
			b.WriteString(e.License)
			b.WriteString("\n")
		}
		b.WriteString("TODO: paste the full license text here.\n\n")
	}

	return b.String()
}

// DraftEntries converts detected components into draft entries, carrying
// the version when one is known.
func DraftEntries(components []inventory.Component) []Entry {
	entries := make([]Entry, 0, len(components))
	for _, c := range components {
		e := Entry{Name: c.Name}
		if c.VersionSpec != "" && c.VersionSpec != inventory.VersionUnknown {
			e.Version = strings.TrimLeft(c.VersionSpec, "=<>!~^ ")
		}
		entries = append(entries, e)
	}
	return entries
}

// markerLine builds a "=== Name version (URL) ===..." section marker
// padded with "=" to a fixed width.
func markerLine(e Entry) string {
	var b strings.Builder
	b.WriteString("=== ")
	b.WriteString(e.Name)
	if e.Version != "" {
		b.WriteString(" ")
		b.WriteString(e.Version)
	}
	if e.URL != "" {
		b.WriteString(" (")
		b.WriteString(e.URL)
		b.WriteString(")")
	}
	b.WriteString(" ")
	if pad := markerWidth - b.Len(); pad > 0 {
		b.WriteString(strings.Repeat("=", pad))
	}
	return b.String()
}
