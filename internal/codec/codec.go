// Package codec serializes the project collection to and from its
// persisted JSON document form.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scrumebox/scrume/internal/models"
)

// ErrDecode indicates the input bytes are not a valid project document.
var ErrDecode = errors.New("codec: decode failed")

// Encode serializes the collection as a compact JSON array.
func Encode(projects []models.Project) ([]byte, error) {
	if projects == nil {
		projects = []models.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return data, nil
}

// Decode parses a JSON project document. Malformed, truncated, or
// wrongly shaped input fails with ErrDecode.
func Decode(data []byte) ([]models.Project, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var projects []models.Project
	if err := dec.Decode(&projects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// Trailing garbage after the document is corruption too.
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrDecode)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// EncodeExport serializes the collection for backup: pretty-printed
// with deterministically sorted keys, suitable for leaving the device
// and for diff-friendly inspection.
func EncodeExport(projects []models.Project) ([]byte, error) {
	compact, err := Encode(projects)
	if err != nil {
		return nil, err
	}

	// Re-marshal through generic values so keys come out sorted.
	var doc any
	if err := json.Unmarshal(compact, &doc); err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	return out, nil
}
