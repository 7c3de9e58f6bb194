package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestWriteStubCreatesExecutableThatSucceeds(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStub(t, dir, "ok-stub")

	info, err := os.Stat(stubPath)
	if err != nil {
		t.Fatalf("stat stub: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %#o", info.Mode().Perm())
	}

	cmd := exec.Command(stubPath)
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected success exit, got %v", err)
	}
	if args := StubArgs(t, stubPath); len(args) != 0 {
		t.Fatalf("expected no recorded args, got %v", args)
	}
}

func TestWriteStubWithExitCreatesExecutableWithRequestedExitCode(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStubWithExit(t, dir, "exit-stub", 7)

	err := exec.Command(stubPath).Run()
	if err == nil {
		t.Fatal("expected non-zero exit status")
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T", err)
	}
	if exitErr.ExitCode() != 7 {
		t.Fatalf("expected exit code 7, got %d", exitErr.ExitCode())
	}
}

func TestWriteStubOutputPrintsAndRecordsArgs(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStubOutput(t, dir, "sui", `{"modules":["AA=="]}`, 0)

	out, err := exec.Command(stubPath, "move", "build", "--path", filepath.Join(dir, "pkg dir")).Output()
	if err != nil {
		t.Fatalf("run stub: %v", err)
	}
	if string(out) != "{\"modules\":[\"AA==\"]}\n" {
		t.Fatalf("unexpected stdout %q", out)
	}
	args := StubArgs(t, stubPath)
	want := []string{"move", "build", "--path", filepath.Join(dir, "pkg dir")}
	if len(args) != len(want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}
}

func TestBoolPtr(t *testing.T) {
	ptr := BoolPtr(true)
	if ptr == nil {
		t.Fatal("expected non-nil pointer")
	}
	if !*ptr {
		t.Fatal("expected pointer value true")
	}
}
