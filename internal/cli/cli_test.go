package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/pkg/models"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// helloOnly runs just the hello probe without touching disk.
const helloOnly = `
logging:
  level: error
probes:
  enabled: [hello]
history:
  driver: memory
`

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New()
	c.SetOutput(&stdout, &stderr)
	c.SetArgs(args)
	code := c.Execute()
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRoot_RunsHello(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "✓ hello: Hello, int!") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "1 passed, 0 failed") {
		t.Errorf("summary missing: %q", res.stdout)
	}
}

// TestRoot_DefaultProbeSetPasses runs every registered probe with only the
// history store narrowed, so each built-in probe must pass in this build.
func TestRoot_DefaultProbeSetPasses(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", "logging:\n  level: error\nhistory:\n  driver: memory\n")

	res := execute(t, "--config", cfg)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stdout = %s, stderr = %s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, " 0 failed, ") || !strings.Contains(res.stdout, " 0 errored ") {
		t.Errorf("summary = %q", res.stdout)
	}
}

func TestRun_HistoryOpenFailureStillRunsProbes(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "missing", "history.db")
	cfg := writeFile(t, "capprobe.yaml", `
logging:
  level: error
probes:
  enabled: [hello]
history:
  driver: sqlite
  dsn: "`+dsn+`"
`)

	res := execute(t, "--config", cfg, "run", probe.HelloName)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "✓ hello: Hello, int!") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRun_Idempotent(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	for i := 0; i < 3; i++ {
		if res := execute(t, "--config", cfg, "run", probe.HelloName); res.code != ExitSuccess {
			t.Fatalf("run %d: exit = %d, stderr = %s", i, res.code, res.stderr)
		}
	}
}

func TestRun_JSON(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "--json", "run")
	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}

	var report probe.Report
	if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, res.stdout)
	}
	if !report.Passed || len(report.Results) != 1 || report.Results[0].Output != probe.HelloExpected {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_UnknownProbe(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "run", "nope")

	if res.code != ExitValidation {
		t.Fatalf("exit = %d, want %d", res.code, ExitValidation)
	}
	if !strings.Contains(res.stderr, "probe not found: nope") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", "history:\n  driver: mongo\n")

	res := execute(t, "--config", cfg, "list")

	if res.code != ExitValidation {
		t.Fatalf("exit = %d, want %d", res.code, ExitValidation)
	}
}

func TestList_JSON(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "--json", "list")
	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}

	var list models.ProbeList
	if err := json.Unmarshal([]byte(res.stdout), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Probes) != 1 || list.Probes[0].Name != probe.HelloName || !list.Probes[0].Linked {
		t.Errorf("list = %+v", list)
	}
}

func TestHistory(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db") + "?_pragma=busy_timeout(5000)"
	cfg := writeFile(t, "capprobe.yaml", `
logging:
  level: error
probes:
  enabled: [hello]
history:
  driver: sqlite
  dsn: "`+dsn+`"
`)

	if res := execute(t, "--config", cfg); res.code != ExitSuccess {
		t.Fatalf("run exit = %d, stderr = %s", res.code, res.stderr)
	}

	res := execute(t, "--config", cfg, "--json", "history", "--limit", "5")
	if res.code != ExitSuccess {
		t.Fatalf("history exit = %d, stderr = %s", res.code, res.stderr)
	}
	var runs []models.RunSummary
	if err := json.Unmarshal([]byte(res.stdout), &runs); err != nil {
		t.Fatalf("decode: %v\n%s", err, res.stdout)
	}
	if len(runs) != 1 || runs[0].Probes != 1 || runs[0].Failed != 0 {
		t.Fatalf("runs = %+v", runs)
	}

	res = execute(t, "--config", cfg, "history", runs[0].RunID)
	if res.code != ExitSuccess || !strings.Contains(res.stdout, "passed") {
		t.Errorf("show run: exit = %d, stdout = %q", res.code, res.stdout)
	}

	res = execute(t, "--config", cfg, "history", "missing-run")
	if res.code != ExitValidation {
		t.Errorf("missing run exit = %d", res.code)
	}
}

func TestHistory_Disabled(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", "history:\n  driver: none\n")

	if res := execute(t, "--config", cfg, "history"); res.code != ExitStorage {
		t.Errorf("exit = %d, want %d", res.code, ExitStorage)
	}
}

func TestDoctor_JSON(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "--json", "doctor")
	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}

	var out struct {
		Checks    []DiagnosticCheck `json:"checks"`
		AllPassed bool              `json:"all_passed"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.AllPassed || len(out.Checks) != 4 {
		t.Errorf("doctor = %+v", out)
	}
}

func TestVersion_JSON(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "--json", "version")
	if res.code != ExitSuccess {
		t.Fatalf("exit = %d", res.code)
	}
	var info VersionInfo
	if err := json.Unmarshal([]byte(res.stdout), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Mode != probe.BuildMode || info.Version != Version {
		t.Errorf("info = %+v", info)
	}
}

func TestVersionFlag(t *testing.T) {
	res := execute(t, "--version")

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", res.code, res.stderr)
	}
	if res.stdout != GetVersionString()+"\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
	if strings.Contains(res.stdout, "passed") {
		t.Error("--version must not run probes")
	}
}

func TestQuiet_SuppressesPassLines(t *testing.T) {
	cfg := writeFile(t, "capprobe.yaml", helloOnly)

	res := execute(t, "--config", cfg, "--quiet")
	if res.code != ExitSuccess || res.stdout != "" {
		t.Errorf("exit = %d, stdout = %q", res.code, res.stdout)
	}
}
