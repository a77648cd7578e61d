// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"testing"

	"zipbundler/internal/config"
)

func TestEntryPointCodeWithFunction(t *testing.T) {
	ep := &config.EntryPoint{Module: "app.cli", Function: "main"}
	want := "from app.cli import main\nmain()"
	if got := entryPointCode(ep); got != want {
		t.Errorf("entryPointCode = %q, want %q", got, want)
	}
}

func TestEntryPointCodeBareModule(t *testing.T) {
	ep := &config.EntryPoint{Module: "app"}
	want := "import app\n" +
		"if hasattr(app, '__main__'):\n" +
		"    app.__main__()\n" +
		"elif hasattr(app, 'main'):\n" +
		"    app.main()"
	if got := entryPointCode(ep); got != want {
		t.Errorf("entryPointCode = %q, want %q", got, want)
	}
}

func TestRenderMainStubGuarded(t *testing.T) {
	ep := &config.EntryPoint{Module: "app.__main__", Function: "main"}
	want := "if __name__ == '__main__':\n" +
		"    from app.__main__ import main\n" +
		"    main()"
	if got := renderMainStub(ep, true); got != want {
		t.Errorf("renderMainStub = %q, want %q", got, want)
	}
}

func TestRenderMainStubUnguarded(t *testing.T) {
	ep := &config.EntryPoint{Module: "app", Function: "run"}
	want := "from app import run\nrun()"
	if got := renderMainStub(ep, false); got != want {
		t.Errorf("renderMainStub = %q, want %q", got, want)
	}
}
