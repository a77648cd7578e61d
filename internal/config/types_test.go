// SPDX-License-Identifier: MPL-2.0

package config

import "testing"

func TestParseEntryPoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMod  string
		wantFunc string
		wantErr  bool
	}{
		{name: "bare module", input: "app", wantMod: "app"},
		{name: "dotted module", input: "app.cli.main", wantMod: "app.cli.main"},
		{name: "module with function", input: "app.__main__:main", wantMod: "app.__main__", wantFunc: "main"},
		{name: "underscore leading", input: "_pkg:run", wantMod: "_pkg", wantFunc: "run"},
		{name: "empty", input: "", wantErr: true},
		{name: "leading digit", input: "1app:main", wantErr: true},
		{name: "trailing dot", input: "app.:main", wantErr: true},
		{name: "empty function", input: "app:", wantErr: true},
		{name: "double colon", input: "app:main:extra", wantErr: true},
		{name: "hyphen", input: "my-app:main", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := ParseEntryPoint(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEntryPoint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if ep.Module != tt.wantMod || ep.Function != tt.wantFunc {
				t.Errorf("ParseEntryPoint(%q) = {%s %s}, want {%s %s}",
					tt.input, ep.Module, ep.Function, tt.wantMod, tt.wantFunc)
			}
			if got := ep.String(); got != tt.input {
				t.Errorf("String() = %q, want round-trip of %q", got, tt.input)
			}
		})
	}
}

func TestParseIncludePattern(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSrc  string
		wantDest string
		wantErr  bool
	}{
		{name: "plain glob", input: "src/app/**/*.py", wantSrc: "src/app/**/*.py"},
		{name: "explicit dest", input: "extra/lib:lib", wantSrc: "extra/lib", wantDest: "lib"},
		{name: "empty source", input: ":lib", wantErr: true},
		{name: "empty dest", input: "src:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := ParseIncludePattern(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIncludePattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if pat.Source != tt.wantSrc || pat.Dest != tt.wantDest {
				t.Errorf("ParseIncludePattern(%q) = {%s %s}, want {%s %s}",
					tt.input, pat.Source, pat.Dest, tt.wantSrc, tt.wantDest)
			}
		})
	}
}

func TestCompressionMethodIsValid(t *testing.T) {
	for _, m := range ValidCompressionMethods {
		if !m.IsValid() {
			t.Errorf("%s.IsValid() = false, want true", m)
		}
	}
	if CompressionMethod("zstd").IsValid() {
		t.Error("zstd should not be a valid compression method")
	}
	if CompressionMethod("").IsValid() {
		t.Error("empty method should not be valid")
	}
}
