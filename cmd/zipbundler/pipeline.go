// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"zipbundler/internal/archive"
	"zipbundler/internal/config"
	"zipbundler/internal/issue"
	"zipbundler/internal/pathset"
	"zipbundler/pkg/types"
)

// pipelineFlags are the override flags shared by every command that runs
// config resolution (build, watch, list, validate). Each command registers
// its own copy so flag state stays per-command.
type pipelineFlags struct {
	includes    []string
	addIncludes []string
	excludes    []string
	addExcludes []string

	output      string
	entry       string
	interpreter string
	noShebang   bool

	compression      string
	compressionLevel int
	compress         bool

	noMainGuard      bool
	noGitignore      bool
	fastFingerprints bool
	noTimestamp      bool
}

func (p *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&p.includes, "include", nil, "include pattern source[:dest], replaces the configured list")
	fs.StringArrayVar(&p.addIncludes, "add-include", nil, "include pattern appended to the configured list")
	fs.StringArrayVar(&p.excludes, "exclude", nil, "exclude glob, replaces the configured list")
	fs.StringArrayVar(&p.addExcludes, "add-exclude", nil, "exclude glob appended to the configured list")
	fs.StringVarP(&p.output, "output", "o", "", "output archive path")
	fs.StringVarP(&p.entry, "entry", "e", "", "entry point, module[.sub]*[:function]")
	fs.StringVarP(&p.interpreter, "python", "p", "", "shebang interpreter line")
	fs.BoolVar(&p.noShebang, "no-shebang", false, "omit the shebang line")
	fs.StringVar(&p.compression, "compression", "", "compression method (stored, deflate, bzip2, lzma)")
	fs.IntVar(&p.compressionLevel, "compression-level", 0, "compression level, 0-9")
	fs.BoolVar(&p.compress, "compress", false, "shorthand for --compression deflate")
	fs.BoolVar(&p.noMainGuard, "no-main-guard", false, "emit the entry stub without the __main__ guard")
	fs.BoolVar(&p.noGitignore, "no-gitignore", false, "bundle files even when .gitignore excludes them")
	fs.BoolVar(&p.fastFingerprints, "fast", false, "fingerprint by mtime and size instead of hashing contents")
	fs.BoolVar(&p.noTimestamp, "no-build-timestamp", false, "write the timestamp placeholder for reproducible output")
}

// overrides translates the parsed flags into the CLI override layer. The
// fs.Changed checks keep untouched boolean flags out of the layer, so file
// and environment settings still apply.
func (p *pipelineFlags) overrides(fs *pflag.FlagSet) config.Overrides {
	ov := config.Overrides{
		Includes:    p.includes,
		AddIncludes: p.addIncludes,
		Excludes:    p.excludes,
		AddExcludes: p.addExcludes,
		OutputPath:  p.output,
		EntryPoint:  p.entry,
		Interpreter: p.interpreter,
		NoShebang:   p.noShebang,
		Compression: p.compression,
	}
	if fs.Changed("compression-level") {
		level := p.compressionLevel
		ov.CompressionLevel = &level
	}
	if fs.Changed("compress") {
		compress := p.compress
		ov.Compress = &compress
	}
	if fs.Changed("no-main-guard") {
		guard := !p.noMainGuard
		ov.InsertMainGuard = &guard
	}
	if fs.Changed("no-gitignore") {
		respect := !p.noGitignore
		ov.RespectGitignore = &respect
	}
	if fs.Changed("fast") {
		hash := !p.fastFingerprints
		ov.HashContents = &hash
	}
	if fs.Changed("no-build-timestamp") {
		disable := p.noTimestamp
		ov.DisableBuildTimestamp = &disable
	}
	return ov
}

// resolvePipeline runs config resolution against the project root and
// reports collected warnings. Failures carry the config exit code.
func resolvePipeline(ov config.Overrides) (*config.ResolvedConfig, string, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, "", &ExitError{Code: types.ExitFailure, Err: err}
	}

	cfg, err := config.Resolve(root, ov, cfgFile, pyprojectFile, strict)
	if err != nil {
		return nil, "", &ExitError{Code: types.ExitConfigError, Err: describeConfigError(err)}
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+w)
	}
	return cfg, root, nil
}

// describeConfigError attaches recovery suggestions to a failed resolution.
func describeConfigError(err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("resolve configuration").
		WithSuggestion("run 'zipbundler validate' to check the config in isolation")
	if strict {
		ctx = ctx.WithSuggestion("drop --strict to downgrade unknown keys to warnings")
	}
	return ctx.Wrap(err).BuildError()
}

// pipelineExit maps pipeline errors onto the exit code taxonomy: config
// errors exit 2, collision and build errors exit 3, anything else 1.
func pipelineExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := types.ExitFailure
	switch {
	case errors.Is(err, config.ErrConfig):
		code = types.ExitConfigError
	case errors.Is(err, pathset.ErrCollision),
		errors.Is(err, pathset.ErrInvalidPath),
		errors.Is(err, archive.ErrBuild):
		code = types.ExitBuildError
	}
	return &ExitError{Code: code, Err: err}
}
