// Package webui holds the assets of the browser interface.
package webui

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed public
var files embed.FS

// Files returns the assets for the build. Debug builds read them from the
// working tree so they can be edited without recompiling.
func Files(build string) (fs.FS, error) {
	switch build {
	case "release":
		return fs.Sub(files, "public")
	case "debug":
		return os.DirFS("src/handler/webui/public"), nil
	}
	return nil, fmt.Errorf("invalid build: %q", build)
}
