// Package codec reads and writes documents as JSON or YAML.
//
// Decoding only checks the envelope. Payloads must still pass
// store.LoadDocument before they reach the editor.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

type rawBlock struct {
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Unmarshal decodes a document.
func Unmarshal(data []byte, f Format) (domain.Document, error) {
	var raw map[string]rawBlock

	switch f {
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}

	if raw == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return normalize(raw)
}

// Marshal encodes a document. JSON output is indented.
func Marshal(doc domain.Document, f Format) ([]byte, error) {
	switch f {
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

func normalize(raw map[string]rawBlock) (domain.Document, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	doc := make(domain.Document, len(raw))
	for _, id := range ids {
		rb := raw[id]
		if rb.Type == "" {
			return nil, fmt.Errorf("block %s: missing type", id)
		}

		data, err := splitData(rb)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", id, err)
		}
		doc[domain.BlockID(id)] = domain.Block{Type: rb.Type, Data: data}
	}
	return doc, nil
}

// splitData separates style and props. Layout blocks written by older
// editors keep their props, childrenIds included, directly under data;
// those keys are moved into props. Explicit props win over them.
func splitData(rb rawBlock) (domain.BlockData, error) {
	var out domain.BlockData
	legacy := map[string]any{}

	for key, value := range rb.Data {
		switch key {
		case "style", "props":
			if value == nil {
				continue
			}
			m, ok := value.(map[string]any)
			if !ok {
				return out, fmt.Errorf("data.%s must be an object, got %T", key, value)
			}
			if key == "style" {
				out.Style = m
			} else {
				out.Props = m
			}
		default:
			if rb.Type != domain.TypeEmailLayout {
				return out, fmt.Errorf("unexpected key data.%s", key)
			}
			legacy[key] = value
		}
	}

	if len(legacy) > 0 {
		for k, v := range out.Props {
			legacy[k] = v
		}
		out.Props = legacy
	}
	return out, nil
}
