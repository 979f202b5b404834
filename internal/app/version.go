package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version is the application version, set at build time with
// -ldflags "-X github.com/agbru/picalc/internal/app.Version=v1.2.3".
var Version = "dev"

// HasVersionFlag reports whether args ask for the version. Only arguments
// before a "--" terminator are considered.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes "picalc <version>" and the toolchain line.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "picalc %s\n", Version)
	fmt.Fprintf(out, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
