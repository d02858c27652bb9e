package history

import (
	"fmt"
	"regexp"

	"perpstracker/pkg/jsonstore"
)

var rotatedFilePattern = regexp.MustCompile(`^[a-z0-9_]+_\d{5}\.json$`)

// Manifest is the append-only index of rotation-generated data files for one
// exchange. It replaces the bare filename list with a schema that can be
// validated on load.
type Manifest struct {
	Exchange string   `json:"exchange"`
	Files    []string `json:"files"`
}

// LoadManifest reads the manifest at path, validating its contents. A missing
// file yields an empty manifest for the given exchange.
func LoadManifest(path, exchange string) (*Manifest, error) {
	m := &Manifest{Exchange: exchange}
	found, err := jsonstore.Load(path, m)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if !found {
		return m, nil
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every tracked filename matches the rotation naming
// scheme and appears once.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Files))
	for _, name := range m.Files {
		if !rotatedFilePattern.MatchString(name) {
			return fmt.Errorf("invalid rotated filename %q", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate rotated filename %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Add records name if it is not already tracked, returning true when the
// manifest changed.
func (m *Manifest) Add(name string) bool {
	for _, existing := range m.Files {
		if existing == name {
			return false
		}
	}
	m.Files = append(m.Files, name)
	return true
}

// Save persists the manifest to path.
func (m *Manifest) Save(path string) error {
	if err := jsonstore.Save(path, m); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}
