// Package roster loads force rosters and holds the shared, editable network
// state for one roster.
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/validation"
)

var (
	ErrReadRoster    = errors.New("failed to read roster")
	ErrParseRoster   = errors.New("failed to parse roster")
	ErrInvalidRoster = errors.New("invalid roster")
)

// File is the on-disk roster: units, optional grouping hints and any
// networks already configured. JSON files are read as YAML.
type File struct {
	Units    []c3.Unit         `yaml:"units" json:"units"`
	Groups   map[string]string `yaml:"groups,omitempty" json:"groups,omitempty"`
	Networks []c3.Network      `yaml:"networks,omitempty" json:"networks,omitempty"`
}

// Load reads and validates a roster file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRoster, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML or JSON roster.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrParseRoster, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	return &f, nil
}

// Validate checks units, groups and network shapes. Link legality is not
// checked here; sessions clean networks against the rules on load.
func (f *File) Validate() error {
	if err := validation.ValidateUnits(f.Units); err != nil {
		return err
	}
	if err := validation.ValidateGroups(f.Groups, f.Units); err != nil {
		return err
	}
	return validation.ValidateNetworks(f.Networks)
}

// Nodes classifies the roster's units.
func (f *File) Nodes() []*c3.Node {
	return c3.NewNodes(f.Units)
}

// WriteYAML encodes the roster as YAML.
func (f *File) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// WriteJSON encodes the roster as indented JSON.
func (f *File) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}
