// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the mask-file fixtures used by the loader, view
// model, renderer and exporter tests.
package testutil

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/banshee-data/wafermap/internal/centers"
	"github.com/banshee-data/wafermap/internal/fsutil"
)

// KV is one key/value line of a mask file.
type KV struct {
	Key   string
	Value string
}

// Section is one [section] of a mask file.
type Section struct {
	Name    string
	Entries []KV
}

// MaskFile is an editable mask file fixture. Sections and keys keep their
// insertion order when rendered.
type MaskFile struct {
	Sections []Section
}

// FixtureCenterKey names the centre of SampleMask; resolve it through
// Registry.
const FixtureCenterKey = "FIXTURE-5X5"

// FixtureCenter is the grid centre of SampleMask.
var FixtureCenter = centers.Center{X: 3, Y: 3}

// Registry returns the built-in centres plus FixtureCenterKey.
func Registry() *centers.Registry {
	return centers.New(map[string]centers.Center{FixtureCenterKey: FixtureCenter})
}

// SampleMask returns a small, valid 150 mm mask on a 5×5 grid centred on
// die (3,3), 5 mm × 4 mm pitch. Maps:
//
//	Every  - the 5×5 grid minus its four corners (21 die)
//	Center - only die (3,3)
func SampleMask() *MaskFile {
	return &MaskFile{Sections: []Section{
		{Name: "Mask", Entries: []KV{
			{"Mask", `"` + FixtureCenterKey + `"`},
			{"Die X", "5.0"},
			{"Die Y", "4.0"},
			{"Flat", "0"},
			{"Notes", `"sample fixture"`},
		}},
		{Name: "150mm", Entries: []KV{
			{"Rows", "5"},
			{"Cols", "5"},
			{"Home Row", "3"},
			{"Home Col", "3"},
			{"Start Row", "1"},
			{"Start Col", "1"},
			{"Every", `"1,1; 1,5; 5,1; 5,5"`},
			{"Center", centerOnlyExclusions},
		}},
		{Name: "Devices", Entries: []KV{
			{"Resistor", `"R_1K"`},
			{"Diode", `"D_STD"`},
			{"Capacitor", `"C_MIM"`},
		}},
	}}
}

// centerOnlyExclusions excludes every die of the 5×5 grid except (3,3).
var centerOnlyExclusions = func() string {
	var parts []string
	for r := 1; r <= 5; r++ {
		for c := 1; c <= 5; c++ {
			if r == 3 && c == 3 {
				continue
			}
			parts = append(parts, strconv.Itoa(r)+","+strconv.Itoa(c))
		}
	}
	return `"` + strings.Join(parts, "; ") + `"`
}()

// Set replaces or appends key in section, creating the section if needed.
func (m *MaskFile) Set(section, key, value string) *MaskFile {
	for i := range m.Sections {
		if m.Sections[i].Name != section {
			continue
		}
		for j := range m.Sections[i].Entries {
			if m.Sections[i].Entries[j].Key == key {
				m.Sections[i].Entries[j].Value = value
				return m
			}
		}
		m.Sections[i].Entries = append(m.Sections[i].Entries, KV{key, value})
		return m
	}
	m.Sections = append(m.Sections, Section{Name: section, Entries: []KV{{key, value}}})
	return m
}

// Delete removes key from section.
func (m *MaskFile) Delete(section, key string) *MaskFile {
	for i := range m.Sections {
		if m.Sections[i].Name != section {
			continue
		}
		kept := m.Sections[i].Entries[:0]
		for _, kv := range m.Sections[i].Entries {
			if kv.Key != key {
				kept = append(kept, kv)
			}
		}
		m.Sections[i].Entries = kept
	}
	return m
}

// DeleteSection removes a whole section.
func (m *MaskFile) DeleteSection(name string) *MaskFile {
	kept := m.Sections[:0]
	for _, s := range m.Sections {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	m.Sections = kept
	return m
}

// RenameSection renames a section, e.g. to move maps to another wafer size.
func (m *MaskFile) RenameSection(from, to string) *MaskFile {
	for i := range m.Sections {
		if m.Sections[i].Name == from {
			m.Sections[i].Name = to
		}
	}
	return m
}

// String renders the fixture as INI text.
func (m *MaskFile) String() string {
	var b strings.Builder
	for i, s := range m.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + s.Name + "]\n")
		for _, kv := range s.Entries {
			b.WriteString(kv.Key + " = " + kv.Value + "\n")
		}
	}
	return b.String()
}

// WriteMask writes content to dir/name.ini on fs.
func WriteMask(t *testing.T, fs fsutil.FileSystem, dir, name, content string) string {
	t.Helper()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name+".ini")
	if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
