// Package seed loads the initial record collection from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"reviewdesk/record"
)

//go:embed records.yaml
var defaultDataset []byte

// ErrEmptyDataset is returned when a dataset contains no records.
var ErrEmptyDataset = errors.New("seed: dataset has no records")

type document struct {
	Records []entry `yaml:"records"`
}

type entry struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Status      string  `yaml:"status"`
	Note        *string `yaml:"note"`
	Version     int     `yaml:"version"`
}

// Default returns the embedded specimen dataset.
func Default() ([]record.Record, error) {
	return Decode(bytes.NewReader(defaultDataset))
}

// Load reads a dataset from path, or the embedded one when path is empty.
func Load(path string) ([]record.Record, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return records, nil
}

// Decode parses and validates a YAML dataset. Unknown fields are rejected so
// typos in operator-supplied files surface at startup.
func Decode(r io.Reader) ([]record.Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if len(doc.Records) == 0 {
		return nil, ErrEmptyDataset
	}

	seen := make(map[string]struct{}, len(doc.Records))
	out := make([]record.Record, 0, len(doc.Records))
	for i, e := range doc.Records {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("seed: entry %d: missing id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("seed: entry %d: %w: %s", i, record.ErrDuplicateID, id)
		}
		seen[id] = struct{}{}

		status := record.Status(e.Status)
		if status == "" {
			status = record.StatusPending
		}
		if !status.Valid() {
			return nil, fmt.Errorf("seed: entry %s: %w %q", id, record.ErrInvalidStatus, e.Status)
		}
		if status.RequiresNote() && (e.Note == nil || strings.TrimSpace(*e.Note) == "") {
			return nil, fmt.Errorf("seed: entry %s: note is required when status is %s", id, status)
		}
		if e.Version < 0 {
			return nil, fmt.Errorf("seed: entry %s: negative version", id)
		}
		version := e.Version
		if version == 0 {
			version = 1
		}

		out = append(out, record.Record{
			ID:          id,
			Name:        e.Name,
			Description: e.Description,
			Status:      status,
			Note:        e.Note,
			Version:     version,
		})
	}
	return out, nil
}
