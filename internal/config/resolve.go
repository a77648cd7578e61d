// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Overrides carries the CLI flag layer. Zero values mean "not given";
// pointer fields distinguish an explicit false/0 from absence. Includes and
// Excludes replace the file-layer lists entirely, AddIncludes and
// AddExcludes append to them.
type Overrides struct {
	Includes    []string
	AddIncludes []string
	Excludes    []string
	AddExcludes []string

	OutputPath string
	EntryPoint string

	Interpreter string
	NoShebang   bool

	Compression      string
	CompressionLevel *int
	Compress         *bool

	InsertMainGuard       *bool
	RespectGitignore      *bool
	DisableBuildTimestamp *bool
	HashContents          *bool

	WatchInterval time.Duration
	Debounce      time.Duration
}

// Resolve merges CLI overrides, the dedicated config file, the pyproject
// table, environment variables, and built-in defaults into one immutable
// ResolvedConfig.
//
// configPath and pyprojectPath may be empty; the well-known files are then
// searched for in projectRoot and silently skipped when absent. An explicit
// path that cannot be read is a ConfigError.
func Resolve(projectRoot string, ov Overrides, configPath, pyprojectPath string, strict bool) (*ResolvedConfig, error) {
	var warnings []string

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("binding environment overrides: %w", err)
	}

	// File layers, lowest precedence first. viper's own layering puts env
	// bindings above everything merged here.
	pp := pyprojectPath
	if pp == "" {
		if cand := filepath.Join(projectRoot, PyprojectFileName); fileExists(cand) {
			pp = cand
		}
	}
	if pp != "" {
		if err := loadPyprojectLayer(v, pp, strict, &warnings); err != nil {
			return nil, err
		}
	}

	cf := configPath
	if cf == "" {
		if cand := filepath.Join(projectRoot, DefaultConfigFileName); fileExists(cand) {
			cf = cand
		}
	}
	if cf != "" {
		if err := loadJSONCLayer(v, cf, strict, &warnings); err != nil {
			return nil, err
		}
	}

	cfg, err := fold(v, ov, projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.Warnings = warnings
	return cfg, nil
}

// fold collapses the merged layers plus the CLI overrides into the final
// ResolvedConfig, validating as it goes.
func fold(v *viper.Viper, ov Overrides, projectRoot string) (*ResolvedConfig, error) {
	cfg := &ResolvedConfig{}

	// Includes and excludes: CLI replace-forms win whole, add-forms append.
	rawIncludes := v.GetStringSlice("include")
	if ov.Includes != nil {
		rawIncludes = ov.Includes
	}
	for _, raw := range append(append([]string{}, rawIncludes...), ov.AddIncludes...) {
		pat, err := ParseIncludePattern(raw)
		if err != nil {
			return nil, err
		}
		cfg.Includes = append(cfg.Includes, pat)
	}
	if len(cfg.Includes) == 0 {
		return nil, &ConfigError{Field: "include", Message: "no include patterns configured"}
	}

	excludes := v.GetStringSlice("exclude")
	if ov.Excludes != nil {
		excludes = ov.Excludes
	}
	cfg.Excludes = append(append([]string{}, excludes...), ov.AddExcludes...)

	cfg.RespectGitignore = v.GetBool("respect_gitignore")
	if ov.RespectGitignore != nil {
		cfg.RespectGitignore = *ov.RespectGitignore
	}

	// Output path: an explicit path wins over directory + name composition.
	out := ov.OutputPath
	if out == "" {
		out = v.GetString("output.path")
	}
	if out == "" {
		out = filepath.Join(v.GetString("output.directory"), v.GetString("output.name"))
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(projectRoot, out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, &ConfigError{Field: "output.path",
			Message: fmt.Sprintf("cannot create output directory %s", filepath.Dir(out)), Cause: err}
	}
	cfg.OutputPath = out

	ep := ov.EntryPoint
	if ep == "" {
		ep = v.GetString("entry_point")
	}
	if ep != "" {
		entry, err := ParseEntryPoint(ep)
		if err != nil {
			return nil, err
		}
		cfg.EntryPoint = entry
	}

	interp, err := resolveInterpreter(v, ov)
	if err != nil {
		return nil, err
	}
	cfg.Interpreter = interp

	cfg.InsertMainGuard = v.GetBool("insert_main_guard")
	if ov.InsertMainGuard != nil {
		cfg.InsertMainGuard = *ov.InsertMainGuard
	}
	cfg.ForceMainStub = v.GetBool("force_main_stub")

	method, level, err := resolveCompression(v, ov)
	if err != nil {
		return nil, err
	}
	cfg.Compression = method
	cfg.CompressionLevel = level

	cfg.DisableBuildTimestamp = v.GetBool("options.disable_build_timestamp")
	if ov.DisableBuildTimestamp != nil {
		cfg.DisableBuildTimestamp = *ov.DisableBuildTimestamp
	}
	cfg.HashContents = v.GetBool("options.hash_contents")
	if ov.HashContents != nil {
		cfg.HashContents = *ov.HashContents
	}

	cfg.WatchInterval = secondsDuration(v.GetFloat64("watch.interval"))
	if ov.WatchInterval > 0 {
		cfg.WatchInterval = ov.WatchInterval
	}
	if cfg.WatchInterval <= 0 {
		return nil, &ConfigError{Field: "watch.interval", Message: "watch interval must be positive"}
	}
	cfg.Debounce = secondsDuration(v.GetFloat64("watch.debounce"))
	if ov.Debounce > 0 {
		cfg.Debounce = ov.Debounce
	}
	if cfg.Debounce < 0 {
		return nil, &ConfigError{Field: "watch.debounce", Message: "debounce must not be negative"}
	}

	cfg.Metadata = Metadata{
		Name:    v.GetString("name"),
		Version: v.GetString("version"),
		Summary: v.GetString("description"),
		Author:  v.GetString("author"),
		License: v.GetString("license"),
		Extra:   v.GetStringMapString("metadata"),
	}
	if cfg.Metadata.License == "" {
		cfg.Metadata.License = LicenseFallback
	}

	return cfg, nil
}

// resolveInterpreter turns the shebang tri-state (bool or string) plus the
// CLI flags into a concrete interpreter, empty for "no shebang".
func resolveInterpreter(v *viper.Viper, ov Overrides) (string, error) {
	if ov.NoShebang {
		return "", nil
	}
	if ov.Interpreter != "" {
		return ov.Interpreter, nil
	}
	switch sv := v.Get("shebang").(type) {
	case bool:
		if sv {
			return DefaultInterpreter, nil
		}
		return "", nil
	case string:
		if sv == "" {
			return "", nil
		}
		return sv, nil
	case nil:
		return DefaultInterpreter, nil
	default:
		return "", &ConfigError{Field: "shebang",
			Message: fmt.Sprintf("must be a string or a bool, got %T", sv)}
	}
}

// resolveCompression picks the method and level. A named method always wins
// over the compress toggle; the toggle only chooses between stored and
// deflate when no method was named anywhere.
func resolveCompression(v *viper.Viper, ov Overrides) (CompressionMethod, *int, error) {
	var method CompressionMethod
	switch {
	case ov.Compression != "":
		method = CompressionMethod(ov.Compression)
	case v.GetString("output.compression") != "":
		method = CompressionMethod(v.GetString("output.compression"))
	default:
		compress := v.GetBool("output.compress")
		if ov.Compress != nil {
			compress = *ov.Compress
		}
		if compress {
			method = CompressionDeflate
		} else {
			method = CompressionStored
		}
	}
	if !method.IsValid() {
		return "", nil, &ConfigError{Field: "output.compression",
			Message: fmt.Sprintf("invalid compression method %q (valid: %v)", method, ValidCompressionMethods)}
	}

	var level *int
	if raw := v.Get("output.compression_level"); raw != nil {
		n, ok := asInt(raw)
		if !ok {
			return "", nil, &ConfigError{Field: "output.compression_level",
				Message: fmt.Sprintf("must be an integer, got %T", raw)}
		}
		level = &n
	}
	if ov.CompressionLevel != nil {
		level = ov.CompressionLevel
	}
	if level != nil && (*level < 0 || *level > 9) {
		return "", nil, &ConfigError{Field: "output.compression_level",
			Message: fmt.Sprintf("compression level %d out of range [0, 9]", *level)}
	}
	return method, level, nil
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
