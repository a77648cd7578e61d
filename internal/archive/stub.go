// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"strings"

	"zipbundler/internal/config"
)

// entryPointCode renders the Python code that runs the configured entry
// point. With a function the stub imports and calls it; a bare module is
// imported and dispatched through its __main__ or main attribute.
func entryPointCode(ep *config.EntryPoint) string {
	if ep.Function != "" {
		return fmt.Sprintf("from %s import %s\n%s()", ep.Module, ep.Function, ep.Function)
	}
	return strings.Join([]string{
		fmt.Sprintf("import %s", ep.Module),
		fmt.Sprintf("if hasattr(%s, '__main__'):", ep.Module),
		fmt.Sprintf("    %s.__main__()", ep.Module),
		fmt.Sprintf("elif hasattr(%s, 'main'):", ep.Module),
		fmt.Sprintf("    %s.main()", ep.Module),
	}, "\n")
}

// renderMainStub produces the synthesized __main__.py body, optionally
// wrapped in the __name__ guard. Blank lines stay unindented inside the
// guard, matching what a human would write.
func renderMainStub(ep *config.EntryPoint, guard bool) string {
	code := entryPointCode(ep)
	if !guard {
		return code
	}

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "    " + line
		}
	}
	return "if __name__ == '__main__':\n" + strings.Join(lines, "\n")
}
