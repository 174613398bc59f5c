// Package regfile decodes the YAML or JSON registry files (queries, publishers).
package regfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	ext string
	fn  func([]byte, any) error
}

var decoders = []decoder{
	{ext: ".yaml", fn: yaml.Unmarshal},
	{ext: ".yml", fn: yaml.Unmarshal},
	{ext: ".json", fn: json.Unmarshal},
}

// Load reads path and decodes it into T. kind names the file in errors.
func Load[T any](path, kind string) (T, error) {
	var zero T
	path = strings.TrimSpace(path)
	if path == "" {
		return zero, fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s file: %w", kind, err)
	}
	return Decode[T](raw, filepath.Ext(path), kind)
}

// Decode picks the decoder by extension. Without one, YAML then JSON are tried.
func Decode[T any](data []byte, ext, kind string) (T, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out T
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%s file format not recognized (expected YAML or JSON)", kind)
}
