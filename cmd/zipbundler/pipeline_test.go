// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"

	"zipbundler/internal/archive"
	"zipbundler/internal/config"
	"zipbundler/internal/pathset"
	"zipbundler/pkg/types"
)

func TestPipelineExit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"config error", &config.ConfigError{Field: "include", Message: "bad"}, types.ExitConfigError},
		{"collision", &pathset.CollisionError{ArchivePath: "a.py"}, types.ExitBuildError},
		{"invalid path", &pathset.InvalidPathError{ArchivePath: "../x"}, types.ExitBuildError},
		{"build error", &archive.BuildError{Op: "write"}, types.ExitBuildError},
		{"generic", errors.New("boom"), types.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipelineExit(tt.err)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("pipelineExit(%v) = %v, want ExitError", tt.err, err)
			}
			if exitErr.Code != tt.want {
				t.Errorf("exit code = %d, want %d", exitErr.Code, tt.want)
			}
		})
	}

	if err := pipelineExit(nil); err != nil {
		t.Errorf("pipelineExit(nil) = %v, want nil", err)
	}

	// An ExitError passes through with its code intact.
	orig := &ExitError{Code: types.ExitConfigError}
	var exitErr *ExitError
	if err := pipelineExit(orig); !errors.As(err, &exitErr) || exitErr.Code != types.ExitConfigError {
		t.Errorf("pipelineExit kept %v instead of the original exit code", err)
	}
}

func TestPipelineFlagsOverrides(t *testing.T) {
	var p pipelineFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	p.register(fs)

	args := []string{
		"--include", "src", "--add-exclude", "*.tmp",
		"--output", "out.pyz", "--entry", "app:main",
		"--compress", "--compression-level", "7",
		"--no-main-guard", "--fast",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ov := p.overrides(fs)
	if len(ov.Includes) != 1 || ov.Includes[0] != "src" {
		t.Errorf("Includes = %v", ov.Includes)
	}
	if len(ov.AddExcludes) != 1 || ov.AddExcludes[0] != "*.tmp" {
		t.Errorf("AddExcludes = %v", ov.AddExcludes)
	}
	if ov.OutputPath != "out.pyz" || ov.EntryPoint != "app:main" {
		t.Errorf("OutputPath = %q, EntryPoint = %q", ov.OutputPath, ov.EntryPoint)
	}
	if ov.Compress == nil || !*ov.Compress {
		t.Error("Compress must be set when --compress was given")
	}
	if ov.CompressionLevel == nil || *ov.CompressionLevel != 7 {
		t.Errorf("CompressionLevel = %v", ov.CompressionLevel)
	}
	if ov.InsertMainGuard == nil || *ov.InsertMainGuard {
		t.Error("--no-main-guard must clear InsertMainGuard")
	}
	if ov.HashContents == nil || *ov.HashContents {
		t.Error("--fast must clear HashContents")
	}

	// Untouched toggles stay absent so lower layers apply.
	if ov.RespectGitignore != nil || ov.DisableBuildTimestamp != nil {
		t.Error("untouched boolean flags must not enter the override layer")
	}
}
