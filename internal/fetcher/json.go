package fetcher

import (
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DecodeJSONObject decodes a single JSON object from a reader.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}

// DecodeYAMLObject decodes a single YAML document from a reader.
func DecodeYAMLObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := yaml.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "yaml: decode object")
	}
	return &obj, nil
}

// DecodeDocument picks the decoder from the location's extension: .yaml and
// .yml are YAML, anything else is JSON.
func DecodeDocument[T any](r io.Reader, location string) (*T, error) {
	loc := location
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	switch strings.ToLower(path.Ext(loc)) {
	case ".yaml", ".yml":
		return DecodeYAMLObject[T](r)
	default:
		return DecodeJSONObject[T](r)
	}
}
