// SPDX-License-Identifier: MPL-2.0

package logs

import "testing"

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name     string
		quiet    bool
		verbose  bool
		explicit string
		want     string
	}{
		{name: "default", want: "info"},
		{name: "quiet", quiet: true, want: "warn"},
		{name: "verbose", verbose: true, want: "debug"},
		{name: "explicit wins over quiet", quiet: true, explicit: "error", want: "error"},
		{name: "explicit wins over verbose", verbose: true, explicit: "warn", want: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLevel(tt.quiet, tt.verbose, tt.explicit)
			if got != tt.want {
				t.Errorf("ResolveLevel(%v, %v, %q) = %q, want %q", tt.quiet, tt.verbose, tt.explicit, got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	if err := SetLevel("debug"); err != nil {
		t.Errorf("SetLevel(debug) returned error: %v", err)
	}
	if err := SetLevel("trace"); err != nil {
		t.Errorf("SetLevel(trace) should map to debug, got error: %v", err)
	}
	if err := SetLevel("bogus"); err == nil {
		t.Error("SetLevel(bogus) should return an error")
	}
}
