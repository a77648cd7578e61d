// SPDX-License-Identifier: MPL-2.0

package config

import "github.com/spf13/viper"

// Well-known file names and fallback values.
const (
	// DefaultConfigFileName is the dedicated config file searched for in the
	// project root when no --config flag is given.
	DefaultConfigFileName = ".zipbundler.jsonc"

	// PyprojectFileName is the project-metadata file carrying the
	// [tool.zipbundler] table.
	PyprojectFileName = "pyproject.toml"

	// DefaultOutputDir and DefaultOutputName form the default output path
	// dist/bundle.pyz.
	DefaultOutputDir  = "dist"
	DefaultOutputName = "bundle.pyz"

	// LicenseFallback is embedded in PKG-INFO when no license was resolved
	// from project metadata.
	LicenseFallback = "All rights reserved. See additional license files if " +
		"distributed alongside this file for additional terms."
)

// Environment variable names mirroring config fields.
const (
	EnvDisableBuildTimestamp = "DISABLE_BUILD_TIMESTAMP"
	EnvRespectGitignore      = "RESPECT_GITIGNORE"
	EnvCompress              = "COMPRESS"
	EnvWatchInterval         = "WATCH_INTERVAL"
)

// setDefaults installs the built-in defaults, the lowest-precedence layer.
// output.compression and output.compression_level deliberately have no
// default: absence is meaningful during resolution (the compress bool picks
// between stored and deflate only when no method was named).
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "bundle")
	v.SetDefault("version", "0.0.0")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("license", "")

	v.SetDefault("entry_point", "")

	v.SetDefault("include", []string{"src"})
	v.SetDefault("exclude", []string{})

	v.SetDefault("respect_gitignore", true)
	v.SetDefault("insert_main_guard", true)
	v.SetDefault("force_main_stub", false)
	v.SetDefault("shebang", true)

	v.SetDefault("output.path", "")
	v.SetDefault("output.directory", DefaultOutputDir)
	v.SetDefault("output.name", DefaultOutputName)
	v.SetDefault("output.compress", false)

	v.SetDefault("options.disable_build_timestamp", false)
	v.SetDefault("options.hash_contents", true)

	v.SetDefault("watch.interval", 1.0)
	v.SetDefault("watch.debounce", 0.5)
}

// bindEnv wires the environment overrides. Env sits between config files and
// CLI flags in precedence, which matches viper's own layering.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"options.disable_build_timestamp": EnvDisableBuildTimestamp,
		"respect_gitignore":               EnvRespectGitignore,
		"output.compress":                 EnvCompress,
		"watch.interval":                  EnvWatchInterval,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}
