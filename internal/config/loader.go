// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"zipbundler/pkg/cueutil"
)

//go:embed config_schema.cue
var schemaBytes []byte

// knownTopKeys and knownSubKeys mirror config_schema.cue. The manual scan
// exists so non-strict mode can downgrade unknown keys to warnings; the CUE
// schema itself is closed and would reject them outright.
var knownTopKeys = map[string]bool{
	"name": true, "version": true, "description": true, "author": true,
	"license": true, "entry_point": true, "include": true, "exclude": true,
	"respect_gitignore": true, "insert_main_guard": true,
	"force_main_stub": true, "shebang": true,
	"output": true, "options": true, "watch": true, "metadata": true,
}

var knownSubKeys = map[string]map[string]bool{
	"output": {
		"path": true, "directory": true, "name": true,
		"compress": true, "compression": true, "compression_level": true,
	},
	"options": {
		"disable_build_timestamp": true, "hash_contents": true,
	},
	"watch": {
		"interval": true, "debounce": true,
	},
}

// loadJSONCLayer reads the dedicated config file, which is JSONC and parsed
// with CUE, and merges the sanitized result into v.
func loadJSONCLayer(v *viper.Viper, path string, strict bool, warnings *[]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{File: path, Message: "cannot read config file", Cause: err}
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return &ConfigError{File: path, Message: err.Error()}
	}

	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(path))
	if val.Err() != nil {
		return &ConfigError{Message: "malformed config file",
			Cause: cueutil.FormatError(val.Err(), path)}
	}

	var raw map[string]any
	if err := val.Decode(&raw); err != nil {
		return &ConfigError{Message: "malformed config file",
			Cause: cueutil.FormatError(err, path)}
	}

	if err := sanitizeLayer(raw, path, strict, warnings); err != nil {
		return err
	}
	if err := typeCheckLayer(raw, path); err != nil {
		return err
	}
	return v.MergeConfigMap(raw)
}

// loadPyprojectLayer reads pyproject.toml. The [project] table contributes
// metadata defaults; the [tool.zipbundler] table is a full config layer
// below the dedicated config file.
func loadPyprojectLayer(v *viper.Viper, path string, strict bool, warnings *[]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{File: path, Message: "cannot read project metadata file", Cause: err}
	}

	var doc struct {
		Project struct {
			Name        string `toml:"name"`
			Version     string `toml:"version"`
			Description string `toml:"description"`
			Authors     []struct {
				Name  string `toml:"name"`
				Email string `toml:"email"`
			} `toml:"authors"`
			License any `toml:"license"`
		} `toml:"project"`
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return &ConfigError{File: path, Message: "malformed project metadata file", Cause: err}
	}

	// Project metadata fills gaps below everything else.
	if doc.Project.Name != "" {
		v.SetDefault("name", doc.Project.Name)
	}
	if doc.Project.Version != "" {
		v.SetDefault("version", doc.Project.Version)
	}
	if doc.Project.Description != "" {
		v.SetDefault("description", doc.Project.Description)
	}
	if len(doc.Project.Authors) > 0 && doc.Project.Authors[0].Name != "" {
		v.SetDefault("author", doc.Project.Authors[0].Name)
	}
	if lic := pyprojectLicense(doc.Project.License); lic != "" {
		v.SetDefault("license", lic)
	}

	tbl, ok := doc.Tool["zipbundler"].(map[string]any)
	if !ok {
		return nil
	}
	if err := sanitizeLayer(tbl, path, strict, warnings); err != nil {
		return err
	}
	if err := typeCheckLayer(tbl, path); err != nil {
		return err
	}
	return v.MergeConfigMap(tbl)
}

// pyprojectLicense handles both PEP 621 forms: a plain SPDX string and the
// older {text = "..."} table.
func pyprojectLicense(raw any) string {
	switch l := raw.(type) {
	case string:
		return l
	case map[string]any:
		if text, ok := l["text"].(string); ok {
			return text
		}
	}
	return ""
}

// sanitizeLayer enforces the strict/lenient split on findings CUE cannot
// downgrade: unknown keys, out-of-enum compression methods, and
// out-of-range compression levels. In non-strict mode offenders are removed
// from the layer (so defaults apply) and recorded as warnings.
func sanitizeLayer(m map[string]any, file string, strict bool, warnings *[]string) error {
	reject := func(field, msg string) error {
		if strict {
			return &ConfigError{File: file, Field: field, Message: msg}
		}
		*warnings = append(*warnings, fmt.Sprintf("%s: %s: %s", file, field, msg))
		return nil
	}

	for k := range m {
		if knownTopKeys[k] {
			continue
		}
		if err := reject(k, "unknown key"); err != nil {
			return err
		}
		delete(m, k)
	}

	for sub, known := range knownSubKeys {
		subMap, ok := m[sub].(map[string]any)
		if !ok {
			continue
		}
		for k := range subMap {
			if known[k] {
				continue
			}
			if err := reject(sub+"."+k, "unknown key"); err != nil {
				return err
			}
			delete(subMap, k)
		}
	}

	if out, ok := m["output"].(map[string]any); ok {
		if method, ok := out["compression"].(string); ok && !CompressionMethod(method).IsValid() {
			msg := fmt.Sprintf("invalid compression method %q (valid: %v)", method, ValidCompressionMethods)
			if err := reject("output.compression", msg); err != nil {
				return err
			}
			delete(out, "compression")
		}
		if raw, ok := out["compression_level"]; ok {
			if n, isInt := asInt(raw); isInt && (n < 0 || n > 9) {
				msg := fmt.Sprintf("compression level %d out of range [0, 9]", n)
				if err := reject("output.compression_level", msg); err != nil {
					return err
				}
				delete(out, "compression_level")
			}
		}
	}

	return nil
}

// typeCheckLayer validates a sanitized layer against the embedded CUE
// schema. Remaining violations are wrong value types, which are fatal in
// both strict and non-strict mode.
func typeCheckLayer(m map[string]any, file string) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schema.Err())
	}
	root := schema.LookupPath(cue.ParsePath("#Config"))
	if root.Err() != nil {
		return fmt.Errorf("internal error: #Config not found in schema: %w", root.Err())
	}

	unified := root.Unify(ctx.Encode(m))
	if err := unified.Validate(); err != nil {
		return &ConfigError{Message: "invalid config file",
			Cause: cueutil.FormatError(err, file)}
	}
	return nil
}

// asInt normalizes the numeric types produced by the CUE and TOML decoders.
func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
