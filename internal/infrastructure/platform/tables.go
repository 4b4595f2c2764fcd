package platform

import (
	"fmt"

	"github.com/doeshing/voicectl/internal/domain"
)

// Template is a concrete process invocation with {placeholder} substitution.
type Template struct {
	Program     string
	Args        []string
	Info        bool
	OutputLimit int
}

// Table maps logical action keys to templates for one platform.
type Table map[string]Template

// Class templates used when an action has no exact entry.
const (
	keyOpener = "opener"
	keyLaunch = "launch"
)

func tpl(program string, args ...string) Template {
	return Template{Program: program, Args: args}
}

func info(limit int, program string, args ...string) Template {
	return Template{Program: program, Args: args, Info: true, OutputLimit: limit}
}

const (
	macVolume  = "set volume output volume ((output volume of (get volume settings)) %s 10)"
	macPrefURI = "x-apple.systempreferences:com.apple.preference."
	winKeys    = "(New-Object -ComObject WScript.Shell).SendKeys([char]%d)"
)

// DefaultTables returns the built-in capability tables, keyed by platform.
func DefaultTables() map[domain.Platform]Table {
	return map[domain.Platform]Table{
		domain.PlatformDarwin: {
			keyOpener: tpl("open", "{target}"),
			keyLaunch: tpl("open", "-a", "{Name}"),

			"app:calculator":  tpl("open", "-a", "Calculator"),
			"app:text-editor": tpl("open", "-a", "TextEdit"),
			"app:whatsapp":    tpl("open", "-a", "WhatsApp"),

			"settings:general":   tpl("open", "-b", "com.apple.systempreferences"),
			"settings:network":   tpl("open", macPrefURI+"network"),
			"settings:bluetooth": tpl("open", macPrefURI+"Bluetooth"),
			"settings:display":   tpl("open", macPrefURI+"displays"),
			"settings:sound":     tpl("open", macPrefURI+"sound"),

			"power:shutdown": tpl("shutdown", "-h", "+{minutes}"),
			"power:restart":  tpl("shutdown", "-r", "now"),
			"power:sleep":    tpl("pmset", "sleepnow"),

			"volume:up":   tpl("osascript", "-e", fmt.Sprintf(macVolume, "+")),
			"volume:down": tpl("osascript", "-e", fmt.Sprintf(macVolume, "-")),
			"volume:mute": tpl("osascript", "-e", "set volume output muted true"),

			"info:system":  info(400, "sw_vers"),
			"info:memory":  info(300, "vm_stat"),
			"info:storage": info(400, "df", "-h", "/"),
			"info:cpu":     info(300, "sysctl", "-n", "machdep.cpu.brand_string", "hw.ncpu"),
			"info:network": info(400, "ifconfig", "en0"),
			"info:battery": info(200, "pmset", "-g", "batt"),
		},
		domain.PlatformWindows: {
			keyOpener: tpl("rundll32", "url.dll,FileProtocolHandler", "{target}"),
			keyLaunch: tpl("cmd", "/c", "start", "", "{name}"),

			"app:calculator":  tpl("calc"),
			"app:text-editor": tpl("notepad"),
			"app:whatsapp":    tpl("explorer", "whatsapp:"),

			"settings:general":   tpl("explorer", "ms-settings:"),
			"settings:network":   tpl("explorer", "ms-settings:network"),
			"settings:bluetooth": tpl("explorer", "ms-settings:bluetooth"),
			"settings:display":   tpl("explorer", "ms-settings:display"),
			"settings:sound":     tpl("explorer", "ms-settings:sound"),

			"power:shutdown": tpl("shutdown", "/s", "/t", "{seconds}"),
			"power:restart":  tpl("shutdown", "/r", "/t", "0"),
			"power:sleep":    tpl("rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"),

			"volume:up":   tpl("powershell", "-NoProfile", "-Command", fmt.Sprintf(winKeys, 175)),
			"volume:down": tpl("powershell", "-NoProfile", "-Command", fmt.Sprintf(winKeys, 174)),
			"volume:mute": tpl("powershell", "-NoProfile", "-Command", fmt.Sprintf(winKeys, 173)),

			"info:system":      info(400, "systeminfo"),
			"info:memory":      info(300, "wmic", "OS", "get", "FreePhysicalMemory,TotalVisibleMemorySize", "/Value"),
			"info:storage":     info(400, "wmic", "logicaldisk", "get", "caption,freespace,size"),
			"info:cpu":         info(300, "wmic", "cpu", "get", "name,numberofcores,maxclockspeed"),
			"info:network":     info(400, "ipconfig"),
			"info:battery":     info(200, "wmic", "path", "Win32_Battery", "get", "EstimatedChargeRemaining"),
			"info:temperature": info(200, "wmic", `/namespace:\\root\wmi`, "path", "MSAcpi_ThermalZoneTemperature", "get", "CurrentTemperature"),
		},
		domain.PlatformLinux: {
			keyOpener: tpl("xdg-open", "{target}"),
			keyLaunch: tpl("{name}"),

			"app:calculator":  tpl("gnome-calculator"),
			"app:text-editor": tpl("gedit"),

			"settings:general":   tpl("gnome-control-center"),
			"settings:network":   tpl("gnome-control-center", "network"),
			"settings:bluetooth": tpl("gnome-control-center", "bluetooth"),
			"settings:display":   tpl("gnome-control-center", "display"),
			"settings:sound":     tpl("gnome-control-center", "sound"),

			"power:shutdown": tpl("shutdown", "-h", "+{minutes}"),
			"power:restart":  tpl("shutdown", "-r", "now"),
			"power:sleep":    tpl("systemctl", "suspend"),

			"volume:up":   tpl("pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"),
			"volume:down": tpl("pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"),
			"volume:mute": tpl("pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"),

			"info:system":      info(400, "uname", "-a"),
			"info:memory":      info(300, "free", "-h"),
			"info:storage":     info(400, "df", "-h"),
			"info:cpu":         info(300, "lscpu"),
			"info:network":     info(400, "ip", "-brief", "address"),
			"info:battery":     info(200, "upower", "-i", "/org/freedesktop/UPower/devices/battery_BAT0"),
			"info:temperature": info(200, "sensors"),
		},
		domain.PlatformGeneric: {
			keyOpener: tpl("xdg-open", "{target}"),
			keyLaunch: tpl("{name}"),

			"info:system":  info(400, "uname", "-a"),
			"info:storage": info(400, "df", "-h"),
		},
	}
}

// Folder names under the user's home directory, per platform where they differ.
var folderNames = map[string]string{
	"downloads": "Downloads",
	"documents": "Documents",
	"desktop":   "Desktop",
	"pictures":  "Pictures",
	"music":     "Music",
	"videos":    "Videos",
	"home":      "",
}

var darwinFolderNames = map[string]string{
	"videos": "Movies",
}

// Display names used when an app has no exact table entry.
var appNames = map[string]string{
	"calculator":  "calculator",
	"text-editor": "editor",
	"whatsapp":    "whatsapp",
}
