package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geoprof/internal/cli"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func exitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if err != nil {
		return ExitCLIError
	}
	return ExitOK
}

func TestNoPathsPrintsUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"run"}, {"/keepXbim"}} {
		out, _, err := execute(t, args...)
		if err != nil {
			t.Fatalf("args %q: unexpected error %v", args, err)
		}
		if strings.TrimSpace(out) != cli.Usage {
			t.Errorf("args %q: output %q, want usage line", args, out)
		}
	}
}

func TestPlanExpandsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.ifc", "a.xbim", "notes.txt")

	out, _, err := execute(t, "plan", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Plan: 2 model(s)") {
		t.Errorf("expected both files in plan, got:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join(dir, "a.wexBIM")) {
		t.Errorf("expected scene output path, got:\n%s", out)
	}
}

func TestPlanLegacyKeepStoreSkipsStores(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.ifc", "a.xbim")

	out, _, err := execute(t, "plan", dir, "/KEEPXBIM", "/sameFolder", "/singleThread")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Plan: 1 model(s)") {
		t.Errorf("keep-store must skip existing stores, got:\n%s", out)
	}
	if !strings.Contains(out, "store: "+filepath.Join(dir, "a.xbim")) {
		t.Errorf("same-folder store destination missing, got:\n%s", out)
	}
	if !strings.Contains(out, "Threads: 1") {
		t.Errorf("single-thread not applied, got:\n%s", out)
	}
}

func TestPlanUnresolvedInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "plan", filepath.Join(dir, "missing"))
	if got := exitCode(err); got != ExitJobFailures {
		t.Errorf("exit code = %d, want %d", got, ExitJobFailures)
	}
}

func TestUnknownSwitchWarns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.ifc")

	_, errOut, err := execute(t, "plan", filepath.Join(dir, "a.ifc"), "/turbo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "ignoring unrecognized switch /turbo") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestMissingConverter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.ifc")

	_, _, err := execute(t, "run", "--no-ui", "--converter", filepath.Join(dir, "no-such-converter"), filepath.Join(dir, "a.ifc"))
	if got := exitCode(err); got != ExitMissingDep {
		t.Errorf("exit code = %d, want %d (err %v)", got, ExitMissingDep, err)
	}
}

func TestCompletionScript(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "geoprof") {
		t.Errorf("completion script does not mention the command")
	}
	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Errorf("expected an error for an unsupported shell")
	}
}
