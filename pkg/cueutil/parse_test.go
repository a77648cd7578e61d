// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	name?:    string
	include?: [...string]
	output?: {
		compression?: "stored" | "deflate" | "bzip2" | "lzma"
	}
}
`

type testConfig struct {
	Name    string   `json:"name"`
	Include []string `json:"include"`
	Output  struct {
		Compression string `json:"compression"`
	} `json:"output"`
}

func TestParseAndDecodeJSONC(t *testing.T) {
	data := []byte(`{
		// the bundle name
		"name": "demo",
		"include": ["src/**/*.py"],
		"output": {"compression": "deflate"},
	}`)

	res, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config")
	if err != nil {
		t.Fatalf("ParseAndDecode returned error: %v", err)
	}
	if res.Value.Name != "demo" {
		t.Errorf("Name = %q, want %q", res.Value.Name, "demo")
	}
	if len(res.Value.Include) != 1 || res.Value.Include[0] != "src/**/*.py" {
		t.Errorf("Include = %v, want [src/**/*.py]", res.Value.Include)
	}
	if res.Value.Output.Compression != "deflate" {
		t.Errorf("Compression = %q, want deflate", res.Value.Output.Compression)
	}
}

func TestParseAndDecodeRejectsBadEnum(t *testing.T) {
	data := []byte(`{"output": {"compression": "zstd"}}`)

	_, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config",
		WithFilename(".zipbundler.jsonc"))
	if err == nil {
		t.Fatal("expected validation error for out-of-enum compression")
	}
	if !strings.Contains(err.Error(), ".zipbundler.jsonc") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestParseAndDecodeRejectsWrongType(t *testing.T) {
	data := []byte(`{"include": [7]}`)

	_, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config")
	if err == nil {
		t.Fatal("expected type error for numeric include entry")
	}
}

func TestCheckFileSize(t *testing.T) {
	if err := CheckFileSize(make([]byte, 10), 5, "big.jsonc"); err == nil {
		t.Error("expected size error")
	}
	if err := CheckFileSize(make([]byte, 5), 10, "ok.jsonc"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"name"}, want: "name"},
		{path: []string{"include", "0"}, want: "include[0]"},
		{path: []string{"output", "compression"}, want: "output.compression"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
