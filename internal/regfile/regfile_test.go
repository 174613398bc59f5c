package regfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Items []string `json:"items" yaml:"items"`
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "items.yml")
	jsonPath := filepath.Join(dir, "items.json")
	if err := os.WriteFile(yamlPath, []byte("items:\n  - a\n  - b\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"items":["c"]}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	got, err := Load[sample](yamlPath, "items")
	if err != nil || len(got.Items) != 2 || got.Items[1] != "b" {
		t.Fatalf("yaml load: %#v, %v", got, err)
	}
	got, err = Load[sample](jsonPath, "items")
	if err != nil || len(got.Items) != 1 || got.Items[0] != "c" {
		t.Fatalf("json load: %#v, %v", got, err)
	}
}

func TestDecodeWithoutExtension(t *testing.T) {
	got, err := Decode[sample]([]byte(`{"items": ["x"]}`), "", "items")
	if err != nil || len(got.Items) != 1 {
		t.Fatalf("decode: %#v, %v", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load[sample]("  ", "items"); err == nil || !strings.Contains(err.Error(), "items file path is empty") {
		t.Fatalf("expected empty path error, got %v", err)
	}
	if _, err := Load[sample](filepath.Join(t.TempDir(), "missing.yaml"), "items"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Decode[sample]([]byte("items: [a"), ".txt", "items"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
