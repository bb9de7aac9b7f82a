package skills

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
)

var (
	openPattern  = regexp.MustCompile(`(?i)\b(?:open|launch|start|run)\s+(.+)$`)
	closePattern = regexp.MustCompile(`(?i)\b(?:close|exit|quit)\s+(.+)$`)
	appNoise     = regexp.MustCompile(`(?i)^(?:the|my)\s+|\s+(?:app|application|please)$`)
)

// processNames maps spoken names to process names, per platform where they differ.
var processNames = map[string]map[string]string{
	"chrome":        {"windows": "chrome.exe", "darwin": "Google Chrome", "linux": "chrome"},
	"google chrome": {"windows": "chrome.exe", "darwin": "Google Chrome", "linux": "chrome"},
	"firefox":       {"windows": "firefox.exe", "darwin": "firefox", "linux": "firefox"},
	"spotify":       {"windows": "spotify.exe", "darwin": "Spotify", "linux": "spotify"},
	"notepad":       {"windows": "notepad.exe"},
	"calculator":    {"windows": "CalculatorApp.exe", "darwin": "Calculator", "linux": "gnome-calculator"},
	"paint":         {"windows": "mspaint.exe"},
	"vscode":        {"windows": "Code.exe", "darwin": "Electron", "linux": "code"},
	"vs code":       {"windows": "Code.exe", "darwin": "Electron", "linux": "code"},
	"word":          {"windows": "WINWORD.EXE", "darwin": "Microsoft Word"},
	"excel":         {"windows": "EXCEL.EXE", "darwin": "Microsoft Excel"},
	"powerpoint":    {"windows": "POWERPNT.EXE", "darwin": "Microsoft PowerPoint"},
}

func cleanAppName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	for {
		trimmed := strings.TrimSpace(appNoise.ReplaceAllString(name, ""))
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

func (s *Skills) openApp(ctx context.Context, req registry.Request) (domain.Result, error) {
	m := openPattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Failure("Which app should I open? Try: open chrome, open notepad, open calculator."), nil
	}
	name := cleanAppName(m[1])
	if name == "" {
		return domain.Failure("Which app should I open?"), nil
	}
	if site := req.Entities.Website; site != "" && name == site && !s.isKnownApp(name) {
		return s.openWebsite(ctx, name), nil
	}
	return s.launch(ctx, name), nil
}

func (s *Skills) openNamedApp(name string) registry.Action {
	return func(ctx context.Context, _ registry.Request) (domain.Result, error) {
		return s.launch(ctx, name), nil
	}
}

func (s *Skills) isKnownApp(name string) bool {
	if _, ok := s.deps.Config.KnownAppPaths(s.deps.Config.ResolveAppAlias(name)); ok {
		return true
	}
	if s.deps.Apps != nil {
		if _, ok := s.deps.Apps.Locate(name); ok {
			return true
		}
	}
	return false
}

// launch walks the known-apps table, the OS launcher and the app index in turn.
func (s *Skills) launch(ctx context.Context, name string) domain.Result {
	canonical := s.deps.Config.ResolveAppAlias(name)

	if paths, ok := s.deps.Config.KnownAppPaths(canonical); ok {
		for _, path := range paths {
			resolved, found := existingPath(path)
			if !found {
				continue
			}
			err := s.deps.Executor.StartProcess(ctx, resolved)
			if err == nil {
				return domain.Success(fmt.Sprintf("Opening %s...", name))
			}
			s.warn("known app failed to start", map[string]interface{}{"app": name, "path": resolved, "error": err.Error()})
		}
	}

	if err := s.deps.Executor.LaunchApp(ctx, canonical); err == nil {
		return domain.Success(fmt.Sprintf("Opening %s...", name))
	}

	if s.deps.Apps != nil {
		if entry, ok := s.deps.Apps.Locate(name); ok {
			var err error
			if entry.Kind == domain.AppKindExecutable || entry.Kind == domain.AppKindDesktop {
				err = s.deps.Executor.StartProcess(ctx, entry.Path)
			} else {
				err = s.deps.Executor.OpenPath(ctx, entry.Path)
			}
			if err != nil {
				return domain.Failure(fmt.Sprintf("Found %s but failed to launch: %v", entry.Display, err))
			}
			return domain.Success(fmt.Sprintf("Opening %s.", entry.Display))
		}
	}
	return domain.Failure("I couldn't find that app. Say 'reindex apps' once and try again.")
}

// existingPath reports whether path exists on disk or resolves on PATH.
func existingPath(path string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	if resolved, err := exec.LookPath(path); err == nil {
		return resolved, true
	}
	return "", false
}

func (s *Skills) closeApp(ctx context.Context, req registry.Request) (domain.Result, error) {
	m := closePattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Warning("Which app should I close?"), nil
	}
	name := cleanAppName(m[1])
	if name == "" {
		return domain.Warning("Which app should I close?"), nil
	}
	proc := name
	if names, ok := processNames[name]; ok {
		if p, ok := names[runtime.GOOS]; ok {
			proc = p
		}
	}
	killed, err := s.deps.Executor.KillProcess(ctx, proc)
	if err != nil {
		return domain.Failure(fmt.Sprintf("Could not close %s: %v", name, err)), nil
	}
	if !killed {
		return domain.Warning(fmt.Sprintf("%s was not running", name)), nil
	}
	return domain.Success("Closed " + name), nil
}

func (s *Skills) reindexApps(ctx context.Context, _ registry.Request) (domain.Result, error) {
	if s.deps.Apps == nil {
		return domain.Failure("App index is not available."), nil
	}
	n, err := s.deps.Apps.Reindex(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("reindex apps: %w", err)
	}
	return domain.Success(fmt.Sprintf("Indexed %d apps. Try: open chrome, open calculator, open visual studio code.", n)), nil
}
