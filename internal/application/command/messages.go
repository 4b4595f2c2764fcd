package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/voicectl/internal/domain"
)

const (
	successMarker = "✅ "
	errorMarker   = "❌ "
)

const msgGenericError = errorMarker + "Something went wrong while running that command."

// ExampleCommands are suggested to the user when a command is not understood.
var ExampleCommands = []string{
	"open google.com",
	"search for golang tutorials",
	"what time is it",
	"open calculator",
	"open downloads",
	"volume up",
	"shutdown in 5 minutes",
	"system info",
}

func guidanceMessage() string {
	quoted := make([]string, len(ExampleCommands))
	for i, c := range ExampleCommands {
		quoted[i] = strconv.Quote(c)
	}
	return errorMarker + "Sorry, I didn't understand that. Try commands like: " + strings.Join(quoted, ", ")
}

var appDisplayNames = map[string]string{
	"calculator":  "Calculator",
	"text-editor": "the text editor",
	"whatsapp":    "WhatsApp",
}

var infoTitles = map[domain.Intent]string{
	domain.IntentSystemInfo:      "System information",
	domain.IntentMemoryInfo:      "Memory usage",
	domain.IntentStorageInfo:     "Storage usage",
	domain.IntentCPUInfo:         "CPU information",
	domain.IntentNetworkInfo:     "Network information",
	domain.IntentBatteryInfo:     "Battery status",
	domain.IntentTemperatureInfo: "Temperature",
}

func successMessage(intent domain.Intent, params domain.Params, out domain.ExecutionOutput) string {
	return successMarker + describeSuccess(intent, params, out)
}

func describeSuccess(intent domain.Intent, params domain.Params, out domain.ExecutionOutput) string {
	switch intent {
	case domain.IntentOpenURL:
		return "Opening " + params.Get(domain.ParamURL)
	case domain.IntentWebSearch:
		return fmt.Sprintf("Searching the web for %q", params.Get(domain.ParamQuery))
	case domain.IntentVideoSearch:
		if q := params.Get(domain.ParamQuery); q != "" {
			return fmt.Sprintf("Searching YouTube for %q", q)
		}
		return "Opening YouTube"
	case domain.IntentOpenWeather:
		if q := params.Get(domain.ParamQuery); q != "" {
			return "Showing the weather for " + q
		}
		return "Showing the weather"
	case domain.IntentLaunchApp:
		return "Opening " + appDisplayName(params.Get(domain.ParamApp))
	case domain.IntentLaunchNamedApp:
		return "Launching " + params.Get(domain.ParamName)
	case domain.IntentWhatsAppCall:
		return messagingMessage("call", params, out)
	case domain.IntentWhatsAppMessage:
		return messagingMessage("message", params, out)
	case domain.IntentOpenFileLocation:
		return "Opening your " + params.Get(domain.ParamLocation) + " folder"
	case domain.IntentOpenSettings:
		section := params.Get(domain.ParamSection)
		if section == "" || section == "general" {
			return "Opening system settings"
		}
		return "Opening " + section + " settings"
	case domain.IntentShutdown:
		seconds, _ := strconv.Atoi(params.Get(domain.ParamSeconds))
		if seconds <= 0 {
			return "Shutting down now"
		}
		return "Shutting down in " + humanDelay(seconds)
	case domain.IntentRestart:
		return "Restarting the computer"
	case domain.IntentSleep:
		return "Putting the computer to sleep"
	case domain.IntentVolumeUp:
		return "Volume up"
	case domain.IntentVolumeDown:
		return "Volume down"
	case domain.IntentMute:
		return "Audio muted"
	}
	if title, ok := infoTitles[intent]; ok {
		text := strings.TrimSpace(out.Text())
		if text == "" {
			return title + ": no information available"
		}
		return title + ":\n" + text
	}
	return "Done"
}

func messagingMessage(verb string, params domain.Params, out domain.ExecutionOutput) string {
	client := "WhatsApp"
	if out.UsedFallback {
		client = "WhatsApp Web"
	}
	contact := params.Get(domain.ParamContact)
	if contact == "" {
		return "Opening " + client
	}
	return fmt.Sprintf("Opening %s to %s %s", client, verb, contact)
}

func appDisplayName(app string) string {
	if name, ok := appDisplayNames[app]; ok {
		return name
	}
	return app
}

func humanDelay(seconds int) string {
	switch {
	case seconds%3600 == 0:
		return plural(seconds/3600, "hour")
	case seconds%60 == 0:
		return plural(seconds/60, "minute")
	default:
		return plural(seconds, "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// failureMessage maps resolution and execution failures onto the four
// user-facing categories.
func failureMessage(intent domain.Intent, params domain.Params, err error) string {
	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		return fmt.Sprintf("%sThat action is not available on this platform (%s).", errorMarker, resErr.Platform)
	}

	var execErr *domain.ExecutionError
	if !errors.As(err, &execErr) {
		return msgGenericError
	}
	switch execErr.Kind {
	case domain.ExecNotFound:
		if app := launchTarget(intent, params); app != "" {
			return fmt.Sprintf("%sApplication %q was not found on this system.", errorMarker, app)
		}
		return fmt.Sprintf("%sThe command needed for this action (%s) is not available on this system.", errorMarker, execErr.Program)
	case domain.ExecPermissionDenied:
		return errorMarker + "Permission denied: this action is not allowed."
	case domain.ExecTimeout:
		return errorMarker + "Something went wrong while running that command: it timed out."
	default:
		return msgGenericError
	}
}

// launchTarget names the application an intent tried to start, if any.
func launchTarget(intent domain.Intent, params domain.Params) string {
	switch intent {
	case domain.IntentLaunchApp:
		return appDisplayName(params.Get(domain.ParamApp))
	case domain.IntentLaunchNamedApp:
		return params.Get(domain.ParamName)
	case domain.IntentWhatsAppCall, domain.IntentWhatsAppMessage:
		return "WhatsApp"
	default:
		return ""
	}
}
