// Package terminal detects whether suipkg talks to a person.
package terminal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminalPair reports whether in and out are both terminal files. Streams that are
// not *os.File, such as buffers in tests or pipes wrapped by cobra, never are.
func IsTerminalPair(in io.Reader, out io.Writer) bool {
	inFile, ok := in.(*os.File)
	if !ok {
		return false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(inFile.Fd())) && term.IsTerminal(int(outFile.Fd()))
}
