// Package config loads solver and filter configuration from YAML documents.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode decodes a single YAML document from r into v.
// Unknown keys are rejected. An empty document leaves v untouched.
func Decode(r io.Reader, v interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode config: %w", err)
	}

	return nil
}

// Load reads the YAML file at path and decodes it into v.
func Load(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Decode(f, v)
}

// Write encodes v as YAML into w.
func Write(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return enc.Close()
}
