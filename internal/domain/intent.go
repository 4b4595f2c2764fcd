package domain

// Intent is the classified meaning of a command, drawn from a closed set.
type Intent string

const (
	IntentOpenURL          Intent = "open-url"
	IntentWebSearch        Intent = "web-search"
	IntentVideoSearch      Intent = "video-search"
	IntentGetTime          Intent = "get-time"
	IntentGetDate          Intent = "get-date"
	IntentOpenWeather      Intent = "open-weather"
	IntentLaunchApp        Intent = "launch-app"
	IntentWhatsAppCall     Intent = "whatsapp-call"
	IntentWhatsAppMessage  Intent = "whatsapp-message"
	IntentOpenFileLocation Intent = "open-file-location"
	IntentOpenSettings     Intent = "open-settings"
	IntentLaunchNamedApp   Intent = "launch-named-app"
	IntentShutdown         Intent = "shutdown"
	IntentRestart          Intent = "restart"
	IntentSleep            Intent = "sleep"
	IntentVolumeUp         Intent = "volume-up"
	IntentVolumeDown       Intent = "volume-down"
	IntentMute             Intent = "mute"
	IntentSystemInfo       Intent = "system-info"
	IntentMemoryInfo       Intent = "memory-info"
	IntentStorageInfo      Intent = "storage-info"
	IntentCPUInfo          Intent = "cpu-info"
	IntentNetworkInfo      Intent = "network-info"
	IntentBatteryInfo      Intent = "battery-info"
	IntentTemperatureInfo  Intent = "temperature-info"
	IntentUnrecognized     Intent = "unrecognized"
)

// Parameter keys extracted alongside an intent.
const (
	ParamURL      = "url"
	ParamQuery    = "query"
	ParamApp      = "app"
	ParamContact  = "contact"
	ParamLocation = "location"
	ParamSection  = "section"
	ParamSeconds  = "seconds"
	ParamName     = "name"
)

// Params carries intent-specific arguments.
type Params map[string]string

// Get returns the value for key or "" when absent.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// InfoIntents lists the informational queries, in the order the API exposes them.
var InfoIntents = []Intent{
	IntentSystemInfo,
	IntentMemoryInfo,
	IntentStorageInfo,
	IntentCPUInfo,
	IntentNetworkInfo,
	IntentBatteryInfo,
	IntentTemperatureInfo,
}

// IsInfo reports whether the intent is an informational hardware query.
func (i Intent) IsInfo() bool {
	for _, info := range InfoIntents {
		if i == info {
			return true
		}
	}
	return false
}
