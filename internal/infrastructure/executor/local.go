// Package executor performs assistant side effects by running host commands.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// Runner executes a command to completion and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Starter launches a command without waiting for it.
type Starter func(name string, args ...string) error

// LocalExecutor maps assistant actions onto host commands for one GOOS.
type LocalExecutor struct {
	goos     string
	lookPath func(string) (string, error)
	run      Runner
	start    Starter
	logger   ports.Logger
}

// Option customises a LocalExecutor.
type Option func(*LocalExecutor)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(e *LocalExecutor) { e.goos = goos }
}

// WithRunner replaces how blocking commands run.
func WithRunner(run Runner) Option {
	return func(e *LocalExecutor) { e.run = run }
}

// WithStarter replaces how detached commands start.
func WithStarter(start Starter) Option {
	return func(e *LocalExecutor) { e.start = start }
}

// WithLookPath replaces binary discovery.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(e *LocalExecutor) { e.lookPath = lookPath }
}

// NewLocalExecutor builds an executor for the running host.
func NewLocalExecutor(logger ports.Logger, opts ...Option) *LocalExecutor {
	e := &LocalExecutor{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
		start:    startCommand,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func startCommand(name string, args ...string) error {
	c := exec.Command(name, args...)
	if err := c.Start(); err != nil {
		return err
	}
	go func() { _ = c.Wait() }()
	return nil
}

// GOOS reports the platform the executor targets.
func (e *LocalExecutor) GOOS() string {
	return e.goos
}

// execFirst runs the first candidate whose binary is installed.
func (e *LocalExecutor) execFirst(ctx context.Context, candidates []command) ([]byte, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrUnsupportedPlatform
	}
	var missing []string
	for _, c := range candidates {
		if _, err := e.lookPath(c.name); err != nil {
			missing = append(missing, c.name)
			continue
		}
		e.debug("run", c)
		return e.run(ctx, c.name, c.args...)
	}
	return nil, fmt.Errorf("%w: install one of %s", domain.ErrUnsupportedPlatform, strings.Join(missing, ", "))
}

func (e *LocalExecutor) startFirst(candidates []command) error {
	if len(candidates) == 0 {
		return domain.ErrUnsupportedPlatform
	}
	for _, c := range candidates {
		if _, err := e.lookPath(c.name); err != nil {
			continue
		}
		e.debug("start", c)
		return e.start(c.name, c.args...)
	}
	return fmt.Errorf("%w: %s not found", domain.ErrUnsupportedPlatform, candidates[0].name)
}

func (e *LocalExecutor) debug(msg string, c command) {
	if e.logger == nil {
		return
	}
	e.logger.Debug(msg, map[string]interface{}{"cmd": c.name, "args": c.args, "goos": e.goos})
}

// OpenURL opens a URL (including tel: and mailto:) with the default handler.
func (e *LocalExecutor) OpenURL(ctx context.Context, url string) error {
	return e.startFirst(openerFor(e.goos, url))
}

// OpenPath opens a file or folder with its associated application.
func (e *LocalExecutor) OpenPath(ctx context.Context, path string) error {
	return e.startFirst(openerFor(e.goos, path))
}

// OpenSettings opens a system settings page; an empty page opens the main window.
func (e *LocalExecutor) OpenSettings(ctx context.Context, page string) error {
	return e.startFirst(settingsFor(e.goos, page))
}

// LaunchApp starts an application by its canonical name.
func (e *LocalExecutor) LaunchApp(ctx context.Context, name string) error {
	switch e.goos {
	case "darwin":
		_, err := e.run(ctx, "open", "-a", name)
		return err
	case "windows":
		return e.start("cmd", "/c", "start", "", name)
	default:
		path, err := e.lookPath(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return e.start(path)
	}
}

// StartProcess launches an executable (or macOS bundle) detached.
func (e *LocalExecutor) StartProcess(ctx context.Context, path string, args ...string) error {
	if e.goos == "darwin" && strings.HasSuffix(path, ".app") {
		return e.start("open", append([]string{"-a", path}, args...)...)
	}
	return e.start(path, args...)
}

// KillProcess terminates processes by image name. It reports false when none ran.
func (e *LocalExecutor) KillProcess(ctx context.Context, name string) (bool, error) {
	c := killerFor(e.goos, name)
	_, err := e.run(ctx, c.name, c.args...)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == notFoundExitCode(e.goos) {
		return false, nil
	}
	return false, err
}

// ToggleSetting flips a named system setting such as wifi_on or dark_mode.
func (e *LocalExecutor) ToggleSetting(ctx context.Context, setting string) error {
	_, err := e.execFirst(ctx, toggleFor(e.goos, setting))
	return err
}

// SetLevel sets brightness or volume to an absolute percentage.
func (e *LocalExecutor) SetLevel(ctx context.Context, control string, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%s level %d out of range", control, percent)
	}
	_, err := e.execFirst(ctx, levelFor(e.goos, control, percent))
	return err
}

// PressKeys sends a key chord (for example "ctrl", "t") or a media key.
func (e *LocalExecutor) PressKeys(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := e.execFirst(ctx, keysFor(e.goos, keys))
	return err
}

// CaptureScreen writes a PNG screenshot to dest.
func (e *LocalExecutor) CaptureScreen(ctx context.Context, dest string) error {
	_, err := e.execFirst(ctx, screenshotFor(e.goos, dest))
	return err
}

// RecognizeText runs OCR over an image and returns the recognised text.
func (e *LocalExecutor) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	out, err := e.execFirst(ctx, []command{{name: "tesseract", args: []string{imagePath, "stdout"}}})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var _ ports.ActionExecutor = (*LocalExecutor)(nil)
