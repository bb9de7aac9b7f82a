package skills

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
)

type toggleSpec struct {
	label string
	reply string
}

// toggles are the catalog actions backed by ActionExecutor.ToggleSetting.
// The action name doubles as the setting key.
var toggles = map[string]toggleSpec{
	"wifi_on":           {label: "Wi-Fi on", reply: "Wi-Fi ON"},
	"wifi_off":          {label: "Wi-Fi off", reply: "Wi-Fi OFF"},
	"bluetooth_on":      {label: "Bluetooth on", reply: "Bluetooth ON"},
	"bluetooth_off":     {label: "Bluetooth off", reply: "Bluetooth OFF"},
	"airplane_on":       {label: "airplane mode on", reply: "Airplane mode ON"},
	"airplane_off":      {label: "airplane mode off", reply: "Airplane mode OFF"},
	"hotspot_on":        {label: "hotspot on", reply: "Hotspot ON"},
	"hotspot_off":       {label: "hotspot off", reply: "Hotspot OFF"},
	"brightness_up":     {label: "brightness up", reply: "Brightness increased"},
	"brightness_down":   {label: "brightness down", reply: "Brightness decreased"},
	"volume_up":         {label: "volume up", reply: "Volume increased"},
	"volume_down":       {label: "volume down", reply: "Volume decreased"},
	"dark_mode":         {label: "dark mode", reply: "Dark mode ON"},
	"light_mode":        {label: "light mode", reply: "Light mode ON"},
	"mic_mute":          {label: "microphone mute", reply: "Microphone muted"},
	"mic_unmute":        {label: "microphone unmute", reply: "Microphone unmuted"},
	"battery_saver_on":  {label: "battery saver on", reply: "Battery saver ON"},
	"battery_saver_off": {label: "battery saver off", reply: "Battery saver OFF"},
	"lock":              {label: "lock", reply: "Locked"},
	"shutdown":          {label: "shutdown", reply: "Shutting down..."},
	"restart":           {label: "restart", reply: "Restarting..."},
	"sleep":             {label: "sleep", reply: "Sleeping..."},
}

// settingsPages maps words in the utterance to settings pages; order matters.
var settingsPages = []struct {
	word string
	page string
}{
	{word: "wifi", page: "wifi"},
	{word: "bluetooth", page: "bluetooth"},
	{word: "display", page: "display"},
	{word: "sound", page: "sound"},
	{word: "camera", page: "camera"},
	{word: "microphone", page: "microphone"},
	{word: "power", page: "power"},
	{word: "update", page: "update"},
}

var levelPattern = regexp.MustCompile(`(\d{1,3})\s*%?`)

func (s *Skills) toggle(setting string, spec toggleSpec) registry.Action {
	return func(ctx context.Context, _ registry.Request) (domain.Result, error) {
		if err := s.deps.Executor.ToggleSetting(ctx, setting); err != nil {
			return domain.Failure(fmt.Sprintf("Could not perform %s: %v", spec.label, err)), nil
		}
		return domain.Success(spec.reply), nil
	}
}

func (s *Skills) setLevel(control string) registry.Action {
	return func(ctx context.Context, req registry.Request) (domain.Result, error) {
		m := levelPattern.FindStringSubmatch(req.Text)
		if m == nil {
			return domain.Failure(fmt.Sprintf("Say: 'set %s to 50'", control)), nil
		}
		percent, _ := strconv.Atoi(m[1])
		if percent > 100 {
			return domain.Failure(fmt.Sprintf("%s must be between 0 and 100.", capitalize(control))), nil
		}
		if err := s.deps.Executor.SetLevel(ctx, control, percent); err != nil {
			return domain.Failure(fmt.Sprintf("Could not perform %s change: %v", control, err)), nil
		}
		return domain.Success(fmt.Sprintf("%s set to %d%%", capitalize(control), percent)), nil
	}
}

func (s *Skills) openSettings(ctx context.Context, req registry.Request) (domain.Result, error) {
	text := lower(req)
	page, label := "", "Settings"
	for _, p := range settingsPages {
		if strings.Contains(text, p.word) {
			page, label = p.page, capitalize(p.word)+" settings"
			break
		}
	}
	if err := s.deps.Executor.OpenSettings(ctx, page); err != nil {
		if errors.Is(err, domain.ErrUnsupportedPlatform) {
			return domain.Failure("Settings pages are not available on this system."), nil
		}
		return domain.Failure(fmt.Sprintf("Cannot open settings: %v", err)), nil
	}
	return domain.Success(label), nil
}

func (s *Skills) pressKeys(reply string, keys ...string) registry.Action {
	return func(ctx context.Context, _ registry.Request) (domain.Result, error) {
		if err := s.deps.Executor.PressKeys(ctx, keys...); err != nil {
			return domain.Failure(fmt.Sprintf("Could not perform %s: %v", strings.Join(keys, "+"), err)), nil
		}
		return domain.Success(reply), nil
	}
}

func (s *Skills) screenshotPath() (string, error) {
	if err := os.MkdirAll(s.deps.ScreenshotDir, domain.DirectoryPermissions); err != nil {
		return "", err
	}
	return filepath.Join(s.deps.ScreenshotDir, "snap_"+s.now().Format("20060102_150405")+".png"), nil
}

func (s *Skills) screenshot(ctx context.Context, _ registry.Request) (domain.Result, error) {
	path, err := s.screenshotPath()
	if err != nil {
		return domain.Failure(fmt.Sprintf("Could not prepare screenshot folder: %v", err)), nil
	}
	if err := s.deps.Executor.CaptureScreen(ctx, path); err != nil {
		return domain.Failure(fmt.Sprintf("Could not take screenshot: %v", err)), nil
	}
	return domain.Success("Screenshot saved: " + path), nil
}

func (s *Skills) readScreen(ctx context.Context, _ registry.Request) (domain.Result, error) {
	path, err := s.screenshotPath()
	if err != nil {
		return domain.Failure(fmt.Sprintf("Could not prepare screenshot folder: %v", err)), nil
	}
	if err := s.deps.Executor.CaptureScreen(ctx, path); err != nil {
		return domain.Failure(fmt.Sprintf("Could not capture the screen: %v", err)), nil
	}
	defer os.Remove(path)

	text, err := s.deps.Executor.RecognizeText(ctx, path)
	if err != nil {
		return domain.Failure(fmt.Sprintf("Could not read the screen: %v", err)), nil
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return domain.Warning("I could not detect any readable text on the screen."), nil
	}
	if s.deps.Announcer != nil && s.deps.Announcer.Available() {
		if err := s.deps.Announcer.Announce(ctx, text); err != nil {
			s.warn("announce screen text", map[string]interface{}{"error": err.Error()})
		}
	}
	return domain.Success("Read text from screen:\n" + shorten(text, 400)), nil
}

func (s *Skills) changeVoice(_ context.Context, req registry.Request) (domain.Result, error) {
	if s.deps.Announcer == nil {
		return domain.Failure("Speech output is not available."), nil
	}
	var digits strings.Builder
	for _, r := range req.Text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	index, _ := strconv.Atoi(digits.String())
	if err := s.deps.Announcer.SetVoice(index); err != nil {
		return domain.Failure(fmt.Sprintf("Could not change voice: %v", err)), nil
	}
	return domain.Success(fmt.Sprintf("Voice changed to number %d", index)), nil
}
