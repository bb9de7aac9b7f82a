// Package speech surfaces asynchronous notifications through a TTS command,
// falling back to printing them.
package speech

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// Runner executes a TTS command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

// Announcer implements ports.Announcer.
type Announcer struct {
	command string
	goos    string
	out     io.Writer
	logger  ports.Logger
	run     Runner

	mu    sync.Mutex
	voice int
}

// New builds an announcer from speech settings. When speech is disabled or no
// TTS program is installed, messages go to out instead.
func New(settings domain.SpeechSettings, out io.Writer, logger ports.Logger) *Announcer {
	a := &Announcer{
		goos:   runtime.GOOS,
		out:    out,
		logger: logger,
		run:    runTTS,
		voice:  settings.Voice,
	}
	if settings.Enabled {
		a.command = settings.Command
		if a.command == "" {
			a.command = detectCommand(a.goos, exec.LookPath)
		}
	}
	return a
}

func runTTS(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func detectCommand(goos string, lookPath func(string) (string, error)) string {
	var candidates []string
	switch goos {
	case "darwin":
		candidates = []string{"say"}
	case "windows":
		candidates = []string{"powershell"}
	default:
		candidates = []string{"espeak-ng", "espeak", "spd-say"}
	}
	for _, c := range candidates {
		if _, err := lookPath(c); err == nil {
			return c
		}
	}
	return ""
}

// Available reports whether a TTS program will be used.
func (a *Announcer) Available() bool {
	return a.command != ""
}

// SetVoice selects a voice by index. Only SAPI on Windows and espeak variants
// expose numbered voices.
func (a *Announcer) SetVoice(index int) error {
	if index < 0 {
		return fmt.Errorf("voice index %d out of range", index)
	}
	if !a.Available() {
		return fmt.Errorf("speech output is disabled: %w", domain.ErrNotConfigured)
	}
	a.mu.Lock()
	a.voice = index
	a.mu.Unlock()
	return nil
}

// Announce speaks message, or prints it when speech is unavailable.
func (a *Announcer) Announce(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if a.logger != nil {
		a.logger.Info("announce", map[string]interface{}{"message": message})
	}
	if !a.Available() {
		if a.out != nil {
			_, err := fmt.Fprintf(a.out, "\n[aura] %s\n", message)
			return err
		}
		return nil
	}
	a.mu.Lock()
	voice := a.voice
	a.mu.Unlock()
	name, args := a.invocation(message, voice)
	if err := a.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (a *Announcer) invocation(message string, voice int) (string, []string) {
	switch a.command {
	case "powershell":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Speech; `+
			`$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; `+
			`$v = $s.GetInstalledVoices(); if (%d -lt $v.Count) { $s.SelectVoice($v[%d].VoiceInfo.Name) }; `+
			`$s.Speak('%s')`, voice, voice, strings.ReplaceAll(message, "'", "''"))
		return "powershell", []string{"-NoProfile", "-Command", script}
	case "espeak", "espeak-ng":
		if voice > 0 {
			return a.command, []string{"-v", fmt.Sprintf("mb-en%d", voice), message}
		}
		return a.command, []string{message}
	default:
		return a.command, []string{message}
	}
}

var _ ports.Announcer = (*Announcer)(nil)
