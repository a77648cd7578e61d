// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps parsed file size at 1 MiB. Config files are tiny;
// anything larger is almost certainly the wrong file.
const DefaultMaxFileSize int64 = 1 << 20

type parseOptions struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

// Option configures a ParseAndDecode call.
type Option func(*parseOptions)

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    false,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) { o.filename = name }
}

// WithMaxFileSize overrides the maximum accepted input size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(o *parseOptions) { o.maxFileSize = n }
}

// WithConcrete requires all values to be concrete after unification.
// Off by default: config files legitimately omit fields that have defaults.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) { o.concrete = concrete }
}
