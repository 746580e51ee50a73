package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestDecodeJSONObject(t *testing.T) {
	obj, err := DecodeJSONObject[testRecord](strings.NewReader(`{"id":42,"name":"test"}`))
	require.NoError(t, err)
	assert.Equal(t, 42, obj.ID)
	assert.Equal(t, "test", obj.Name)
}

func TestDecodeJSONObject_Invalid(t *testing.T) {
	_, err := DecodeJSONObject[testRecord](strings.NewReader(`{broken`))
	assert.Error(t, err)
}

func TestDecodeYAMLObject(t *testing.T) {
	obj, err := DecodeYAMLObject[testRecord](strings.NewReader("id: 7\nname: pantry\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, obj.ID)
	assert.Equal(t, "pantry", obj.Name)
}

func TestDecodeDocument_ByExtension(t *testing.T) {
	tests := []struct {
		location string
		input    string
	}{
		{"spots.json", `{"id":1,"name":"a"}`},
		{"spots.yaml", "id: 1\nname: a\n"},
		{"https://example.org/spots.YML?v=2", "id: 1\nname: a\n"},
		{"s3://bucket/spots", `{"id":1,"name":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			obj, err := DecodeDocument[testRecord](strings.NewReader(tt.input), tt.location)
			require.NoError(t, err)
			assert.Equal(t, testRecord{ID: 1, Name: "a"}, *obj)
		})
	}
}
