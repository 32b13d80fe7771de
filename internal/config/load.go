package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the pipeline file at path over Default. Unknown fields are
// rejected so typos surface instead of silently keeping a default.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Decode(b)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Decode parses a pipeline document over Default.
func Decode(b []byte) (Pipeline, error) {
	p := Default()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode: %w", err)
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}
