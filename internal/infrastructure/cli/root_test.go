package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/aura-go/internal/app"
	"github.com/doeshing/aura-go/internal/pkg/clock"
	"github.com/doeshing/aura-go/internal/pkg/logger"
)

type nopExecutor struct{}

func (nopExecutor) OpenURL(context.Context, string) error { return nil }
func (nopExecutor) OpenPath(context.Context, string) error { return nil }
func (nopExecutor) OpenSettings(context.Context, string) error { return nil }
func (nopExecutor) LaunchApp(context.Context, string) error { return nil }
func (nopExecutor) StartProcess(context.Context, string, ...string) error { return nil }
func (nopExecutor) KillProcess(context.Context, string) (bool, error) { return false, nil }
func (nopExecutor) ToggleSetting(context.Context, string) error { return nil }
func (nopExecutor) SetLevel(context.Context, string, int) error { return nil }
func (nopExecutor) PressKeys(context.Context, ...string) error { return nil }
func (nopExecutor) CaptureScreen(context.Context, string) error { return nil }
func (nopExecutor) RecognizeText(context.Context, string) (string, error) { return "", nil }

type cliFixture struct {
	dir     string
	cfgPath string
	clock   *clock.Fake
}

func newCLIFixture(t *testing.T, extra string) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	raw := fmt.Sprintf(`preferences:
  min_confidence: 0.2
  history_size: 10
correction:
  enabled: true
  threshold: 0.8
contacts:
  file: %[1]s/contacts.yaml
apps:
  index_cache: %[1]s/cache/apps_index.json
  index_dirs: [%[1]s/apps]
files:
  base_dir: %[1]s/docs
history:
  enabled: true
  path: %[1]s/history.db
  retention_days: 30
speech:
  enabled: false
`, filepath.ToSlash(dir)) + extra
	require.NoError(t, os.WriteFile(cfgPath, []byte(raw), 0o600))
	return &cliFixture{
		dir:     dir,
		cfgPath: cfgPath,
		clock:   clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)),
	}
}

// execute runs one CLI invocation with a fresh root, as a process would.
func (f *cliFixture) execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(context.Background(), Options{
		ConfigPath: f.cfgPath,
		Adapters: app.Options{
			Logger:    logger.NewNop(),
			Executor:  nopExecutor{},
			Scheduler: f.clock,
		},
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunPrintsReply(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "run", "call", "amma")
	require.NoError(t, err)
	assert.Contains(t, out, "Calling amma")
}

func TestBareTextIsDispatched(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "turn", "off", "wifi")
	require.NoError(t, err)
	assert.Equal(t, "Wi-Fi OFF\n", out)
}

func TestRunErrorReplySetsFailure(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "run", "delete file ../config.yaml")
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.True(t, strings.HasPrefix(out, "[ERROR] "), out)
	assert.FileExists(t, f.cfgPath)
}

func TestVerboseShowsHandler(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "--verbose", "run", "open", "chromee")
	require.NoError(t, err)
	assert.Contains(t, out, "Opening chrome...")
	assert.Contains(t, out, "handler: open_chrome")
}

func TestHistorySurvivesInvocations(t *testing.T) {
	f := newCLIFixture(t, "")
	_, err := f.execute(t, "", "run", "call amma")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.execute(t, "", "run", "--mode", "voice", "weather in Paris")
	require.NoError(t, err)

	out, err := f.execute(t, "", "history", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "weather in Paris")
	assert.Contains(t, lines[1], "call amma")

	out, err = f.execute(t, "", "history", "search", "paris")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.NotContains(t, out, "amma")

	out, err = f.execute(t, "", "history", "export", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"input":"call amma"`)
	assert.Contains(t, out, `"mode":"voice"`)

	out, err = f.execute(t, "", "history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands recorded: 2")
	assert.Contains(t, out, "communication")

	out, err = f.execute(t, "", "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")

	out, err = f.execute(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet.")
}

func TestHistoryClearAsksFirst(t *testing.T) {
	f := newCLIFixture(t, "")
	_, err := f.execute(t, "", "run", "call amma")
	require.NoError(t, err)

	_, err = f.execute(t, "n\n", "history", "clear")
	require.Error(t, err)

	out, err := f.execute(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "call amma")
}

func TestShellSession(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "open chrome\n\nhistory\nexit\nturn off wifi\n", "shell")
	require.NoError(t, err)

	assert.Contains(t, out, shellBanner)
	assert.Contains(t, out, "Opening chrome...")
	assert.Contains(t, out, "open chrome => Opening chrome...")
	assert.Contains(t, out, shellGoodbye)
	assert.NotContains(t, out, "Wi-Fi OFF")
}

func TestShellStopsAtEndOfInput(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "turn off wifi", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Wi-Fi OFF")
}

func TestConfigGetAndSet(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "config", "get", "preferences.min_confidence")
	require.NoError(t, err)
	assert.Equal(t, "0.2\n", out)

	_, err = f.execute(t, "", "config", "set", "preferences.history_size", "25")
	require.NoError(t, err)
	out, err = f.execute(t, "", "config", "get", "--key", "preferences.history_size")
	require.NoError(t, err)
	assert.Equal(t, "25\n", out)

	_, err = f.execute(t, "", "config", "set", "preferences.min_confidence", "3")
	require.Error(t, err)

	_, err = f.execute(t, "", "config", "get", "preferences.nope")
	require.Error(t, err)

	out, err = f.execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, f.cfgPath+"\n", out)
}

func TestConfigValidate(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
}

func TestHandlersIntrospection(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "handlers")
	require.NoError(t, err)
	assert.Contains(t, out, "smart_search")
	assert.Contains(t, out, "(fallback)")

	out, err = f.execute(t, "", "handlers", "--category", "communication")
	require.NoError(t, err)
	assert.Contains(t, out, "call")
	assert.NotContains(t, out, "smart_search")

	out, err = f.execute(t, "", "handlers", "explain", "call", "amma")
	require.NoError(t, err)
	assert.Contains(t, out, "=> call\n")
}

func TestContactsAndVersion(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "contacts")
	require.NoError(t, err)
	assert.Contains(t, out, "amma")

	out, err = f.execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Aura version dev")
	assert.Regexp(t, `Handlers: \d+ from built-in \(fallback: smart_search\)`, out)
	assert.Contains(t, out, "Threshold: 0.20\n")
	assert.Contains(t, out, "Config: "+f.cfgPath+"\n")

	out, err = f.execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestAppsReindexEmptyDirs(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.execute(t, "", "apps", "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 applications")

	out, err = f.execute(t, "", "apps", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No applications indexed")
}

func TestDoctorReportsBrokenConfig(t *testing.T) {
	f := newCLIFixture(t, "")
	require.NoError(t, os.WriteFile(f.cfgPath, []byte("preferences:\n  min_confidence: 1.5\n"), 0o600))

	out, err := f.execute(t, "", "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "[ERROR] Config file")
}

func TestCacheCommands(t *testing.T) {
	f := newCLIFixture(t, "")
	_, err := f.execute(t, "", "cache", "list")
	require.Error(t, err)

	f = newCLIFixture(t, "cache:\n  enabled: true\n")
	out, err := f.execute(t, "", "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached answers.")

	out, err = f.execute(t, "", "cache", "size")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(f.dir, ".aura", "cache", "knowledge"))

	out, err = f.execute(t, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")
}
