// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"zipbundler/internal/config"
	"zipbundler/pkg/types"
)

var (
	initForce       bool
	initPreset      string
	initListPresets bool

	// initCmd writes a starter config file
	initCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a .zipbundler.jsonc config in the current directory",
		Long: `Create a .zipbundler.jsonc config in the current directory.

Generates a starter configuration from a preset. Use --list-presets to
see what is available, and --preset to pick one; an existing file is only
overwritten with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	initCmd.Flags().StringVarP(&initPreset, "preset", "t", "basic", "preset to use (basic, cli, library, minimal)")
	initCmd.Flags().BoolVar(&initListPresets, "list-presets", false, "describe the available presets and exit")
}

// preset is one starter configuration template.
type preset struct {
	title       string
	description string
	content     string
}

var presets = map[string]preset{
	"basic": {
		title:       "Basic",
		description: "Standard configuration for a typical Python package",
		content: `{
  // Files to include (glob patterns, or "source:dest" pairs)
  "include": [
    "src/my_package/**/*.py"
  ],

  // Files to exclude (glob patterns against the source path)
  "exclude": [
    "**/tests/**"
  ],

  // Output configuration
  "output": {
    "path": "dist/my_package.pyz",
    "compression": "deflate"
  },

  // Entry point for an executable archive (optional)
  // "entry_point": "my_package.__main__:main",

  "insert_main_guard": true,

  // Metadata written into PKG-INFO (optional)
  // "name": "My Package",
  // "version": "1.0.0",
  // "description": "Package description"
}
`,
	},
	"cli": {
		title:       "CLI Tool",
		description: "Configuration for a command-line application with entry point",
		content: `{
  "include": [
    "src/my_package/**/*.py"
  ],
  "exclude": [
    "**/tests/**"
  ],

  "output": {
    "path": "dist/my_package.pyz",
    "compression": "deflate"
  },

  // Entry point invoked when the archive runs
  "entry_point": "my_package.__main__:main",

  "shebang": "/usr/bin/env python3",
  "insert_main_guard": true,

  "name": "My CLI Tool",
  "version": "1.0.0",
  "description": "A command-line application"
}
`,
	},
	"library": {
		title:       "Library",
		description: "Configuration for an importable library (no entry point)",
		content: `{
  "include": [
    "src/my_package/**/*.py"
  ],
  "exclude": [
    "**/tests/**"
  ],

  "output": {
    "path": "dist/my_package.zip",
    "compression": "deflate"
  },

  // No entry point and no shebang: this archive is for importing,
  // not for running.
  "shebang": false,

  "name": "My Library",
  "version": "1.0.0",
  "description": "An importable Python library"
}
`,
	},
	"minimal": {
		title:       "Minimal",
		description: "Minimal configuration with just the essentials",
		content: `{
  "include": [
    "src/my_package/**/*.py"
  ],
  "output": {
    "path": "dist/my_package.pyz"
  }
}
`,
	},
}

func runInit(cmd *cobra.Command, args []string) error {
	if initListPresets {
		fmt.Fprint(cmd.OutOrStdout(), renderPresetCatalog())
		return nil
	}

	p, ok := presets[initPreset]
	if !ok {
		return &ExitError{
			Code: types.ExitFailure,
			Err:  fmt.Errorf("unknown preset %q, available: %s", initPreset, strings.Join(presetNames(), ", ")),
		}
	}

	filename := config.DefaultConfigFileName
	if len(args) > 0 {
		filename = args[0]
	}

	if _, err := os.Stat(filename); err == nil && !initForce {
		return &ExitError{
			Code: types.ExitFailure,
			Err:  fmt.Errorf("configuration file already exists: %s, use --force to overwrite", filename),
		}
	}

	if err := os.WriteFile(filename, []byte(p.content), 0o644); err != nil {
		return &ExitError{Code: types.ExitFailure, Err: fmt.Errorf("failed to write config file: %w", err)}
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s", SuccessStyle.Render("✓"), PathStyle.Render(absPath))
	if initPreset != "basic" {
		fmt.Printf(" (using %q preset)", initPreset)
	}
	fmt.Println()
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Adjust the include patterns and entry point")
	fmt.Println("  2. Run 'zipbundler validate' to check the configuration")
	fmt.Println("  3. Run 'zipbundler build' to produce the archive")

	return nil
}

func presetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderPresetCatalog produces the --list-presets output: a markdown
// catalog rendered for the terminal, falling back to the raw markdown when
// rendering is unavailable.
func renderPresetCatalog() string {
	var md strings.Builder
	md.WriteString("# Available presets\n\n")
	for _, name := range presetNames() {
		p := presets[name]
		fmt.Fprintf(&md, "## %s\n\n%s: %s\n\n", name, p.title, p.description)
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return md.String()
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return md.String()
	}
	return out
}
