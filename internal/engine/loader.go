package engine

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTable decodes a YAML rule table. Keywords are lowercased before
// validation so authors may write them in any case.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode rule table: %w", err)
	}

	for i := range t.Rules {
		t.Rules[i].Any = lowerAll(t.Rules[i].Any)
		t.Rules[i].All = lowerAll(t.Rules[i].All)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// WriteTable encodes t as YAML.
func WriteTable(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode rule table: %w", err)
	}
	return enc.Close()
}

func lowerAll(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToLower(s)
	}
	return in
}
