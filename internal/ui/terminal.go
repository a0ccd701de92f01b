package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// InteractiveTerminal reports whether both stdin and stdout are capable of
// live interaction. Anything redirected or uncertain counts as incapable.
func InteractiveTerminal() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
