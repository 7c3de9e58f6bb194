package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ArgsFileSuffix is appended to a stub name to get the file its arguments are recorded in.
const ArgsFileSuffix = ".args"

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return WriteStubOutput(t, dir, name, "", 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return WriteStubOutput(t, dir, name, "", exitCode)
}

// WriteStubOutput writes an executable shell stub that records its arguments one per line
// in <name>.args, prints stdout verbatim and exits with exitCode. It returns the stub path.
func WriteStubOutput(t *testing.T, dir string, name string, stdout string, exitCode int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	argsPath := path + ArgsFileSuffix

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, ": > '%s'\n", argsPath)
	fmt.Fprintf(&b, "for arg in \"$@\"; do printf '%%s\\n' \"$arg\" >> '%s'; done\n", argsPath)
	if stdout != "" {
		b.WriteString("cat <<'STUB_EOF'\n")
		b.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("STUB_EOF\n")
	}
	fmt.Fprintf(&b, "exit %d\n", exitCode)

	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// StubArgs returns the arguments recorded by the last run of the stub at path.
func StubArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path + ArgsFileSuffix)
	if err != nil {
		t.Fatalf("read stub args: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// BoolPtr returns a pointer to v.
// v is the boolean value to take the address of.
func BoolPtr(v bool) *bool {
	return &v
}
