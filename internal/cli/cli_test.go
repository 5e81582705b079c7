package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"opsboard/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("OPSBOARD_CONFIG_DIR", t.TempDir())
	t.Setenv("OPSBOARD_DIR", "")
	t.Setenv("OPSBOARD_FORMAT", "")
	return t.TempDir()
}

func mustEnv(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: opsboard %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func TestOutputContract_JSONEnvelope(t *testing.T) {
	dir := isolate(t)

	for _, args := range [][]string{
		{"census"},
		{"beds"},
		{"staffing"},
		{"staffing", "--unit", "icu"},
		{"discharge"},
		{"discharge", "--window", "saved"},
		{"or"},
		{"pdsa"},
		{"plan", "show"},
		{"window", "show"},
	} {
		env := mustEnv(t, append([]string{"--dir", dir}, args...)...)
		if _, ok := env["data"].([]any); !ok {
			t.Fatalf("%v: expected data to be a list; got %T", args, env["data"])
		}
	}
}

func TestORWindowFlag(t *testing.T) {
	dir := isolate(t)

	env := mustEnv(t, "--dir", dir, "or", "--window", "07:00-15:30")
	meta := env["meta"].(map[string]any)
	if meta["window"] != "07:00-15:30" || meta["primeTime"] != "07:00-15:30" {
		t.Fatalf("unexpected meta: %v", meta)
	}
	rooms := env["data"].([]any)
	first := rooms[0].(map[string]any)
	if first["room"] != "OR 1" || first["availableMinutes"] != float64(510) {
		t.Fatalf("unexpected first room: %v", first)
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "or", "--window", "15:00-07:00"})
	if err == nil {
		t.Fatalf("expected inverted window to fail")
	}
	if !strings.Contains(string(stderr), "invalid time range") {
		t.Fatalf("expected range error on stderr; got %q", string(stderr))
	}
}

func TestWindowSetIsUsedAsSavedDefault(t *testing.T) {
	dir := isolate(t)

	mustEnv(t, "--dir", dir, "window", "set", "or", "08:00-12:00")
	env := mustEnv(t, "--dir", dir, "or")
	if got := env["meta"].(map[string]any)["window"]; got != "08:00-12:00" {
		t.Fatalf("expected saved window; got %v", got)
	}

	env = mustEnv(t, "--dir", dir, "window", "show")
	rows := env["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected both views; got %v", rows)
	}
	or := rows[0].(map[string]any)
	dis := rows[1].(map[string]any)
	if or["start"] != "08:00" || or["saved"] != true || dis["saved"] != false {
		t.Fatalf("unexpected windows: %v", rows)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "window", "set", "lobby", "08:00-12:00"}); err == nil {
		t.Fatalf("expected unknown view to fail")
	}
}

func TestPlanSetShowHistory(t *testing.T) {
	dir := isolate(t)

	if _, _, err := runCLI(t, []string{"--dir", dir, "plan", "show", "4W"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found; got %v", err)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "plan", "set", "NOPE", "x"}); err == nil {
		t.Fatalf("expected unknown unit to fail")
	}

	mustEnv(t, "--dir", dir, "plan", "set", "4w", "Open", "flex", "beds")
	mustEnv(t, "--dir", dir, "plan", "set", "4W", "Open flex beds; call float pool")

	got := mustEnv(t, "--dir", dir, "plan", "show", "4W")["data"].(map[string]any)
	if got["unitId"] != "4W" || got["text"] != "Open flex beds; call float pool" {
		t.Fatalf("unexpected plan: %v", got)
	}

	hist := mustEnv(t, "--dir", dir, "plan", "history", "4W")
	if n := len(hist["data"].([]any)); n != 2 {
		t.Fatalf("expected 2 revisions; got %d", n)
	}
}

func TestPDSAAdvancePersists(t *testing.T) {
	dir := isolate(t)

	cycles := mustEnv(t, "--dir", dir, "pdsa")["data"].([]any)
	first := cycles[0].(map[string]any)
	id := first["id"].(string)

	env := mustEnv(t, "--dir", dir, "pdsa", "advance", id[:8])
	if env["meta"].(map[string]any)["from"] != first["phase"] {
		t.Fatalf("unexpected meta: %v", env["meta"])
	}
	advanced := env["data"].(map[string]any)["phase"]
	if advanced == first["phase"] {
		t.Fatalf("expected phase to change")
	}

	again := mustEnv(t, "--dir", dir, "pdsa")["data"].([]any)[0].(map[string]any)
	if again["phase"] != advanced {
		t.Fatalf("expected persisted phase %v; got %v", advanced, again["phase"])
	}
}

func TestFormats(t *testing.T) {
	dir := isolate(t)

	out, _, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "window", "set", "discharge", "09:00-17:00"})
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(out), "view: discharge") || !strings.Contains(string(out), "saved: true") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"--dir", dir, "--format", "edn", "window", "show", "discharge"})
	if err != nil {
		t.Fatalf("edn: %v", err)
	}
	if !strings.Contains(string(out), `:start "09:00"`) {
		t.Fatalf("unexpected edn:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "--format", "xml", "census"}); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestConfigDataDirAndPrimeTime(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("OPSBOARD_CONFIG_DIR", cfgDir)
	t.Setenv("OPSBOARD_DIR", "")
	dataDir := t.TempDir()
	if err := store.SaveConfig(&store.Config{DataDir: dataDir, PrimeTime: "08:00-16:00"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	mustEnv(t, "window", "set", "or", "08:00-16:00")
	r, err := store.Store{Dir: dataDir}.LoadWindow(t.Context(), "or")
	if err != nil {
		t.Fatalf("expected window under config data_dir: %v", err)
	}
	if r.String() != "08:00-16:00" {
		t.Fatalf("unexpected window: %s", r)
	}

	env := mustEnv(t, "or")
	if got := env["meta"].(map[string]any)["primeTime"]; got != "08:00-16:00" {
		t.Fatalf("expected configured prime time; got %v", got)
	}
}
