package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Years []int    `json:"years" yaml:"years"`
	Names []string `json:"names" yaml:"names"`
}

func (s *sample) Validate() error {
	if s.Names == nil {
		return errors.New("names: is required")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "bp.json", `{"years":[2020,2021],"names":["hr"]}`)
	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Years) != 2 || s.Years[1] != 2021 {
		t.Errorf("years = %v", s.Years)
	}
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "bp.yml", "years: [1999]\nnames:\n  - legal\n")
	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Names) != 1 || s.Names[0] != "legal" {
		t.Errorf("names = %v", s.Names)
	}
}

func TestLoad_WrongType(t *testing.T) {
	p := writeFile(t, "bp.json", `{"years":["2020"],"names":[]}`)
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected error for string year")
	}
}

func TestLoad_Malformed(t *testing.T) {
	p := writeFile(t, "bp.json", `{"years":[2020]`)
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestLoad_ValidationCalled(t *testing.T) {
	p := writeFile(t, "bp.json", `{"years":[2020]}`)
	var s sample
	err := Load(p, &s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	err := Load(filepath.Join(t.TempDir(), "nope.json"), &s)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"a.json": FormatJSON,
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"noext":  FormatJSON,
		"x.conf": FormatJSON,
	}
	for name, want := range cases {
		if got := FormatFor(name); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDecode_Reader(t *testing.T) {
	var s sample
	if err := Decode(strings.NewReader(`{"years":[],"names":[]}`), FormatJSON, &s); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Years == nil {
		t.Error("empty list should decode to a non-nil slice")
	}
}
