package speech

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/doeshing/aura-go/internal/domain"
)

func TestAnnounceFallsBackToWriter(t *testing.T) {
	var out bytes.Buffer
	a := New(domain.SpeechSettings{Enabled: false}, &out, nil)
	if a.Available() {
		t.Fatal("disabled speech reported available")
	}
	if err := a.Announce(context.Background(), "Timer for 5 minutes is finished"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Timer for 5 minutes is finished") {
		t.Fatalf("out = %q", out.String())
	}
	if err := a.SetVoice(1); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("SetVoice err = %v", err)
	}
}

func TestAnnounceRunsCommand(t *testing.T) {
	var got []string
	a := New(domain.SpeechSettings{Enabled: true, Command: "espeak-ng"}, nil, nil)
	a.run = func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	if err := a.SetVoice(2); err != nil {
		t.Fatal(err)
	}
	if err := a.Announce(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	want := []string{"espeak-ng", "-v", "mb-en2", "hello"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAnnounceIgnoresBlank(t *testing.T) {
	called := false
	a := New(domain.SpeechSettings{Enabled: true, Command: "say"}, nil, nil)
	a.run = func(context.Context, string, ...string) error { called = true; return nil }
	if err := a.Announce(context.Background(), "   "); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatal("blank message should not be spoken")
	}
}

func TestDetectCommand(t *testing.T) {
	look := func(installed ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, i := range installed {
				if i == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", exec.ErrNotFound
		}
	}
	if got := detectCommand("linux", look("espeak", "spd-say")); got != "espeak" {
		t.Fatalf("linux = %q", got)
	}
	if got := detectCommand("darwin", look("say")); got != "say" {
		t.Fatalf("darwin = %q", got)
	}
	if got := detectCommand("linux", look()); got != "" {
		t.Fatalf("none = %q", got)
	}
}

func TestSetVoiceRejectsNegative(t *testing.T) {
	a := New(domain.SpeechSettings{Enabled: true, Command: "say"}, nil, nil)
	if err := a.SetVoice(-1); err == nil {
		t.Fatal("expected error")
	}
}
