package executor

import (
	"fmt"
	"strings"
)

type command struct {
	name string
	args []string
}

func cmd(name string, args ...string) command {
	return command{name: name, args: args}
}

func openerFor(goos, target string) []command {
	switch goos {
	case "darwin":
		return []command{cmd("open", target)}
	case "windows":
		return []command{cmd("rundll32", "url.dll,FileProtocolHandler", target)}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []command{cmd("xdg-open", target), cmd("gio", "open", target)}
	}
	return nil
}

var windowsSettings = map[string]string{
	"wifi":       "network-wifi",
	"bluetooth":  "bluetooth",
	"display":    "display",
	"sound":      "sound",
	"camera":     "privacy-webcam",
	"microphone": "privacy-microphone",
	"power":      "powersleep",
	"update":     "windowsupdate",
}

var darwinSettings = map[string]string{
	"wifi":       "com.apple.wifi-settings-extension",
	"bluetooth":  "com.apple.BluetoothSettings",
	"display":    "com.apple.Displays-Settings.extension",
	"sound":      "com.apple.Sound-Settings.extension",
	"camera":     "com.apple.settings.PrivacySecurity.extension?Privacy_Camera",
	"microphone": "com.apple.settings.PrivacySecurity.extension?Privacy_Microphone",
	"power":      "com.apple.Battery-Settings.extension",
	"update":     "com.apple.Software-Update-Settings.extension",
}

var gnomeSettings = map[string]string{
	"wifi":       "wifi",
	"bluetooth":  "bluetooth",
	"display":    "display",
	"sound":      "sound",
	"camera":     "camera",
	"microphone": "microphone",
	"power":      "power",
}

func settingsFor(goos, page string) []command {
	switch goos {
	case "windows":
		return openerFor(goos, "ms-settings:"+windowsSettings[page])
	case "darwin":
		if pane, ok := darwinSettings[page]; ok {
			return openerFor(goos, "x-apple.systempreferences:"+pane)
		}
		return []command{cmd("open", "-a", "System Settings")}
	case "linux":
		if panel, ok := gnomeSettings[page]; ok {
			return []command{cmd("gnome-control-center", panel), cmd("systemsettings")}
		}
		return []command{cmd("gnome-control-center"), cmd("systemsettings")}
	}
	return nil
}

func killerFor(goos, name string) command {
	if goos == "windows" {
		return cmd("taskkill", "/f", "/im", name)
	}
	return cmd("pkill", "-x", name)
}

// notFoundExitCode is what the kill command exits with when nothing matched.
func notFoundExitCode(goos string) int {
	if goos == "windows" {
		return 128
	}
	return 1
}

func osascript(script string) command {
	return cmd("osascript", "-e", script)
}

func powershell(script string) command {
	return cmd("powershell", "-NoProfile", "-Command", script)
}

func toggleFor(goos, setting string) []command {
	switch goos {
	case "linux":
		return linuxToggles[setting]
	case "darwin":
		return darwinToggles[setting]
	case "windows":
		return windowsToggles[setting]
	}
	return nil
}

var linuxToggles = map[string][]command{
	"wifi_on":           {cmd("nmcli", "radio", "wifi", "on")},
	"wifi_off":          {cmd("nmcli", "radio", "wifi", "off")},
	"bluetooth_on":      {cmd("rfkill", "unblock", "bluetooth"), cmd("bluetoothctl", "power", "on")},
	"bluetooth_off":     {cmd("rfkill", "block", "bluetooth"), cmd("bluetoothctl", "power", "off")},
	"airplane_on":       {cmd("nmcli", "radio", "all", "off"), cmd("rfkill", "block", "all")},
	"airplane_off":      {cmd("nmcli", "radio", "all", "on"), cmd("rfkill", "unblock", "all")},
	"hotspot_on":        {cmd("nmcli", "device", "wifi", "hotspot")},
	"hotspot_off":       {cmd("nmcli", "connection", "down", "Hotspot")},
	"brightness_up":     {cmd("brightnessctl", "set", "+10%"), cmd("light", "-A", "10")},
	"brightness_down":   {cmd("brightnessctl", "set", "10%-"), cmd("light", "-U", "10")},
	"volume_up":         {cmd("pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"), cmd("amixer", "set", "Master", "10%+")},
	"volume_down":       {cmd("pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"), cmd("amixer", "set", "Master", "10%-")},
	"dark_mode":         {cmd("gsettings", "set", "org.gnome.desktop.interface", "color-scheme", "prefer-dark")},
	"light_mode":        {cmd("gsettings", "set", "org.gnome.desktop.interface", "color-scheme", "default")},
	"mic_mute":          {cmd("pactl", "set-source-mute", "@DEFAULT_SOURCE@", "1"), cmd("amixer", "set", "Capture", "nocap")},
	"mic_unmute":        {cmd("pactl", "set-source-mute", "@DEFAULT_SOURCE@", "0"), cmd("amixer", "set", "Capture", "cap")},
	"battery_saver_on":  {cmd("powerprofilesctl", "set", "power-saver")},
	"battery_saver_off": {cmd("powerprofilesctl", "set", "balanced")},
	"lock":              {cmd("loginctl", "lock-session"), cmd("xdg-screensaver", "lock")},
	"shutdown":          {cmd("systemctl", "poweroff")},
	"restart":           {cmd("systemctl", "reboot")},
	"sleep":             {cmd("systemctl", "suspend")},
}

var darwinToggles = map[string][]command{
	"wifi_on":           {cmd("networksetup", "-setairportpower", "en0", "on")},
	"wifi_off":          {cmd("networksetup", "-setairportpower", "en0", "off")},
	"bluetooth_on":      {cmd("blueutil", "--power", "1")},
	"bluetooth_off":     {cmd("blueutil", "--power", "0")},
	"volume_up":         {osascript("set volume output volume ((output volume of (get volume settings)) + 10)")},
	"volume_down":       {osascript("set volume output volume ((output volume of (get volume settings)) - 10)")},
	"dark_mode":         {osascript(`tell application "System Events" to tell appearance preferences to set dark mode to true`)},
	"light_mode":        {osascript(`tell application "System Events" to tell appearance preferences to set dark mode to false`)},
	"mic_mute":          {osascript("set volume input volume 0")},
	"mic_unmute":        {osascript("set volume input volume 75")},
	"battery_saver_on":  {cmd("pmset", "-a", "lowpowermode", "1")},
	"battery_saver_off": {cmd("pmset", "-a", "lowpowermode", "0")},
	"lock":              {cmd("pmset", "displaysleepnow")},
	"shutdown":          {osascript(`tell application "System Events" to shut down`)},
	"restart":           {osascript(`tell application "System Events" to restart`)},
	"sleep":             {cmd("pmset", "sleepnow")},
}

const personalizeKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`

func windowsTheme(light int) []command {
	value := fmt.Sprint(light)
	return []command{
		cmd("reg", "add", personalizeKey, "/v", "AppsUseLightTheme", "/t", "REG_DWORD", "/d", value, "/f"),
	}
}

func windowsBrightnessStep(delta int) []command {
	script := fmt.Sprintf(`$m = Get-CimInstance -Namespace root/WMI -ClassName WmiMonitorBrightness; `+
		`$v = [Math]::Max(0, [Math]::Min(100, $m.CurrentBrightness + (%d))); `+
		`Get-CimInstance -Namespace root/WMI -ClassName WmiMonitorBrightnessMethods | Invoke-CimMethod -MethodName WmiSetBrightness -Arguments @{Timeout=1; Brightness=$v}`, delta)
	return []command{powershell(script)}
}

func windowsSendKeys(keys string) command {
	return powershell(fmt.Sprintf(`(New-Object -ComObject WScript.Shell).SendKeys(%s)`, keys))
}

var windowsToggles = map[string][]command{
	"wifi_on":           {cmd("netsh", "interface", "set", "interface", "name=Wi-Fi", "admin=enabled")},
	"wifi_off":          {cmd("netsh", "interface", "set", "interface", "name=Wi-Fi", "admin=disabled")},
	"brightness_up":     windowsBrightnessStep(10),
	"brightness_down":   windowsBrightnessStep(-10),
	"volume_up":         {windowsSendKeys("[char]175")},
	"volume_down":       {windowsSendKeys("[char]174")},
	"dark_mode":         windowsTheme(0),
	"light_mode":        windowsTheme(1),
	"battery_saver_on":  {cmd("powercfg", "/setactive", "SCHEME_MAX")},
	"battery_saver_off": {cmd("powercfg", "/setactive", "SCHEME_BALANCED")},
	"lock":              {cmd("rundll32.exe", "user32.dll,LockWorkStation")},
	"shutdown":          {cmd("shutdown", "/s", "/t", "1")},
	"restart":           {cmd("shutdown", "/r", "/t", "1")},
	"sleep":             {cmd("rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0")},
}

func levelFor(goos, control string, percent int) []command {
	switch goos + "/" + control {
	case "linux/volume":
		return []command{
			cmd("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", percent)),
			cmd("amixer", "set", "Master", fmt.Sprintf("%d%%", percent)),
		}
	case "linux/brightness":
		return []command{
			cmd("brightnessctl", "set", fmt.Sprintf("%d%%", percent)),
			cmd("light", "-S", fmt.Sprint(percent)),
		}
	case "darwin/volume":
		return []command{osascript(fmt.Sprintf("set volume output volume %d", percent))}
	case "windows/brightness":
		return []command{powershell(fmt.Sprintf(
			`Get-CimInstance -Namespace root/WMI -ClassName WmiMonitorBrightnessMethods | Invoke-CimMethod -MethodName WmiSetBrightness -Arguments @{Timeout=1; Brightness=%d}`, percent))}
	}
	return nil
}

var xdotoolNames = map[string]string{
	"playpause": "XF86AudioPlay",
	"nexttrack": "XF86AudioNext",
	"prevtrack": "XF86AudioPrev",
	"tab":       "Tab",
}

var sendKeysChars = map[string]string{
	"playpause": "[char]179",
	"nexttrack": "[char]176",
	"prevtrack": "[char]177",
}

func keysFor(goos string, keys []string) []command {
	switch goos {
	case "linux":
		names := make([]string, len(keys))
		for i, k := range keys {
			if mapped, ok := xdotoolNames[k]; ok {
				k = mapped
			}
			names[i] = k
		}
		chord := strings.Join(names, "+")
		return []command{cmd("xdotool", "key", chord), cmd("ydotool", "key", chord)}
	case "windows":
		if len(keys) == 1 {
			if c, ok := sendKeysChars[keys[0]]; ok {
				return []command{windowsSendKeys(c)}
			}
		}
		return []command{windowsSendKeys("'" + sendKeysChord(keys) + "'")}
	case "darwin":
		if script, ok := darwinChord(keys); ok {
			return []command{osascript(script)}
		}
	}
	return nil
}

// sendKeysChord renders ctrl/shift/alt chords in WScript SendKeys notation.
func sendKeysChord(keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		switch k {
		case "ctrl":
			b.WriteString("^")
		case "shift":
			b.WriteString("+")
		case "alt":
			b.WriteString("%")
		case "tab":
			b.WriteString("{TAB}")
		default:
			b.WriteString(k)
		}
	}
	return b.String()
}

// darwinChord maps a ctrl chord to the Command-key equivalent. Media keys have no
// System Events equivalent.
func darwinChord(keys []string) (string, bool) {
	var modifiers []string
	key := ""
	for _, k := range keys {
		switch k {
		case "ctrl":
			modifiers = append(modifiers, "command down")
		case "shift":
			modifiers = append(modifiers, "shift down")
		case "alt":
			modifiers = append(modifiers, "option down")
		case "playpause", "nexttrack", "prevtrack":
			return "", false
		default:
			key = k
		}
	}
	if key == "" {
		return "", false
	}
	using := ""
	if len(modifiers) > 0 {
		using = " using {" + strings.Join(modifiers, ", ") + "}"
	}
	if key == "tab" {
		return `tell application "System Events" to key code 48` + using, true
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke %q%s`, key, using), true
}

func screenshotFor(goos, dest string) []command {
	switch goos {
	case "darwin":
		return []command{cmd("screencapture", "-x", dest)}
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
			`$b = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds; `+
			`$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; `+
			`$g = [System.Drawing.Graphics]::FromImage($bmp); `+
			`$g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); `+
			`$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)`, strings.ReplaceAll(dest, "'", "''"))
		return []command{powershell(script)}
	case "linux":
		return []command{
			cmd("gnome-screenshot", "-f", dest),
			cmd("grim", dest),
			cmd("scrot", dest),
			cmd("import", "-window", "root", dest),
		}
	}
	return nil
}
