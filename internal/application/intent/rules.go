package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/voicectl/internal/domain"
)

var (
	reDomain      = regexp.MustCompile(`(?:https?://)?((?:[a-z0-9-]+\.)+(?:com|org|net|io|dev|edu|gov|co|in|ai|app|me|tv|uk|us|info|xyz)(?:/\S*)?)`)
	reWebSearch   = regexp.MustCompile(`^(?:search(?: the web)?(?: for)?|google|look up)\s+(.+)$`)
	reTime        = regexp.MustCompile(`\b(?:what(?:'s| is)?(?: the)? time|current time|time (?:is it|now)|tell me the time)\b`)
	reDate        = regexp.MustCompile(`\b(?:what(?:'s| is)?(?: the)? date|today'?s date|what day is (?:it|today)|current date)\b`)
	reWeatherLoc  = regexp.MustCompile(`weather (?:in|for|at) (.+)$`)
	reCallContact = regexp.MustCompile(`call (.+?)(?: (?:on|via|using|in))? whatsapp|whatsapp call (.+)$`)
	reMsgContact  = regexp.MustCompile(`(?:message|text|send (?:a )?message to|send)\s+(.+?)(?: (?:on|via|using|in))? whatsapp|whatsapp (?:message|text) (.+)$`)
	reLaunch      = regexp.MustCompile(`^(?:open|launch|start|run)\s+(?:the\s+)?(.+?)(?:\s+(?:app|application))?$`)
	reShutdown    = regexp.MustCompile(`\b(?:shutdown|shut down|power off|turn off the (?:computer|pc|system))\b`)
	reRestart     = regexp.MustCompile(`\b(?:restart|reboot)\b`)
	reSleep       = regexp.MustCompile(`\b(?:sleep|suspend)\b`)
	reVolumeUp    = regexp.MustCompile(`\b(?:volume up|increase (?:the )?volume|raise (?:the )?volume|turn (?:it |the volume )?up|louder)\b`)
	reVolumeDown  = regexp.MustCompile(`\b(?:volume down|decrease (?:the )?volume|lower (?:the )?volume|turn (?:it |the volume )?down|quieter)\b`)
	reMute        = regexp.MustCompile(`\b(?:mute|silence)\b`)
	reSettings    = regexp.MustCompile(`\b(?:settings|preferences|control panel)\b`)

	isOpenVerb    = words("open", "visit", "go to")
	isWeather     = words("weather", "forecast")
	isCalculator  = words("calculator", "calc")
	isTextEditor  = words("notepad", "text editor", "textedit")
	isCallVerb    = words("call", "ring", "dial")
	isMessageVerb = words("message", "text", "send", "chat")
	isSystemInfo  = words("system info", "system information", "system details", "about this computer", "os version")
)

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	rules := []Rule{
		{
			Name:   "open-url",
			Intent: domain.IntentOpenURL,
			Match: func(t string) bool {
				return isOpenVerb(t) && reDomain.MatchString(t)
			},
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamURL: reDomain.FindStringSubmatch(t)[1]}
			},
		},
		{
			Name:   "web-search",
			Intent: domain.IntentWebSearch,
			Match: func(t string) bool {
				return reWebSearch.MatchString(t) && !strings.Contains(t, "youtube")
			},
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamQuery: reWebSearch.FindStringSubmatch(t)[1]}
			},
		},
		{
			Name:   "video-search",
			Intent: domain.IntentVideoSearch,
			Match: func(t string) bool {
				return strings.Contains(t, "youtube") || strings.HasPrefix(t, "play ")
			},
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamQuery: videoQuery(t)}
			},
		},
		{Name: "get-time", Intent: domain.IntentGetTime, Match: reTime.MatchString},
		{Name: "get-date", Intent: domain.IntentGetDate, Match: reDate.MatchString},
		{
			Name:   "open-weather",
			Intent: domain.IntentOpenWeather,
			Match:  isWeather,
			Extract: func(t string) domain.Params {
				if m := reWeatherLoc.FindStringSubmatch(t); m != nil {
					return domain.Params{domain.ParamQuery: strings.TrimSpace(m[1])}
				}
				return domain.Params{}
			},
		},
		{
			Name:    "calculator",
			Intent:  domain.IntentLaunchApp,
			Match:   isCalculator,
			Extract: constant(domain.ParamApp, "calculator"),
		},
		{
			Name:    "text-editor",
			Intent:  domain.IntentLaunchApp,
			Match:   isTextEditor,
			Extract: constant(domain.ParamApp, "text-editor"),
		},
		{
			Name:   "whatsapp-call",
			Intent: domain.IntentWhatsAppCall,
			Match: func(t string) bool {
				return strings.Contains(t, "whatsapp") && isCallVerb(t)
			},
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamContact: firstGroup(reCallContact, t)}
			},
		},
		{
			Name:   "whatsapp-message",
			Intent: domain.IntentWhatsAppMessage,
			Match: func(t string) bool {
				return strings.Contains(t, "whatsapp") && isMessageVerb(t)
			},
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamContact: firstGroup(reMsgContact, t)}
			},
		},
		{
			Name:    "whatsapp-open",
			Intent:  domain.IntentLaunchApp,
			Match:   func(t string) bool { return strings.Contains(t, "whatsapp") },
			Extract: constant(domain.ParamApp, "whatsapp"),
		},
	}

	rules = append(rules, locationRules()...)
	rules = append(rules, settingsRules()...)

	rules = append(rules,
		Rule{
			Name:   "launch-named-app",
			Intent: domain.IntentLaunchNamedApp,
			Match:  reLaunch.MatchString,
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamName: strings.TrimSpace(reLaunch.FindStringSubmatch(t)[1])}
			},
		},
		Rule{
			Name:   "shutdown",
			Intent: domain.IntentShutdown,
			Match:  reShutdown.MatchString,
			Extract: func(t string) domain.Params {
				return domain.Params{domain.ParamSeconds: itoa(ParseDelaySeconds(t))}
			},
		},
		Rule{Name: "restart", Intent: domain.IntentRestart, Match: reRestart.MatchString},
		Rule{Name: "sleep", Intent: domain.IntentSleep, Match: reSleep.MatchString},
		Rule{Name: "volume-up", Intent: domain.IntentVolumeUp, Match: reVolumeUp.MatchString},
		Rule{Name: "volume-down", Intent: domain.IntentVolumeDown, Match: reVolumeDown.MatchString},
		Rule{Name: "mute", Intent: domain.IntentMute, Match: reMute.MatchString},
		Rule{
			Name:   "system-info",
			Intent: domain.IntentSystemInfo,
			Match:  isSystemInfo,
		},
		Rule{Name: "memory-info", Intent: domain.IntentMemoryInfo, Match: words("memory", "ram")},
		Rule{Name: "storage-info", Intent: domain.IntentStorageInfo, Match: words("storage", "disk", "disk space", "free space")},
		Rule{Name: "cpu-info", Intent: domain.IntentCPUInfo, Match: words("cpu", "processor")},
		Rule{Name: "network-info", Intent: domain.IntentNetworkInfo, Match: words("network", "ip address", "ip", "wifi", "wi-fi", "internet")},
		Rule{Name: "battery-info", Intent: domain.IntentBatteryInfo, Match: words("battery", "charge", "charging")},
		Rule{Name: "temperature-info", Intent: domain.IntentTemperatureInfo, Match: words("temperature", "temp", "how hot", "thermal")},
	)
	return rules
}

type variant struct {
	value    string
	keywords []string
}

var locations = []variant{
	{value: "downloads", keywords: []string{"downloads", "download folder", "downloads folder"}},
	{value: "documents", keywords: []string{"documents", "document folder", "my documents"}},
	{value: "desktop", keywords: []string{"desktop"}},
	{value: "pictures", keywords: []string{"pictures", "photos", "images"}},
	{value: "music", keywords: []string{"music folder", "my music"}},
	{value: "videos", keywords: []string{"videos folder", "my videos", "movies folder"}},
	{value: "home", keywords: []string{"home folder", "home directory", "file explorer", "file manager", "finder", "my files"}},
}

func locationRules() []Rule {
	rules := make([]Rule, 0, len(locations))
	for _, loc := range locations {
		match := words(loc.keywords...)
		rules = append(rules, Rule{
			Name:    "file-location/" + loc.value,
			Intent:  domain.IntentOpenFileLocation,
			Match:   func(t string) bool { return !reSettings.MatchString(t) && match(t) },
			Extract: constant(domain.ParamLocation, loc.value),
		})
	}
	return rules
}

var settingsSections = []variant{
	{value: "network", keywords: []string{"network", "wifi", "wi-fi", "internet"}},
	{value: "bluetooth", keywords: []string{"bluetooth"}},
	{value: "display", keywords: []string{"display", "screen", "brightness"}},
	{value: "sound", keywords: []string{"sound", "audio", "volume"}},
	{value: "general", keywords: nil},
}

func settingsRules() []Rule {
	rules := make([]Rule, 0, len(settingsSections))
	for _, section := range settingsSections {
		match := words(section.keywords...)
		rules = append(rules, Rule{
			Name:   "settings/" + section.value,
			Intent: domain.IntentOpenSettings,
			Match: func(t string) bool {
				return reSettings.MatchString(t) && match(t)
			},
			Extract: constant(domain.ParamSection, section.value),
		})
	}
	return rules
}

// words builds a predicate matching any of the phrases on word boundaries.
// With no phrases the predicate always matches.
func words(phrases ...string) func(string) bool {
	if len(phrases) == 0 {
		return func(string) bool { return true }
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + strings.Join(quoted, "|") + `)(?:$|[^a-z0-9])`)
	return re.MatchString
}

func constant(key, value string) func(string) domain.Params {
	return func(string) domain.Params {
		return domain.Params{key: value}
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, group := range m[1:] {
		if group = strings.TrimSpace(group); group != "" {
			return trimFiller(group)
		}
	}
	return ""
}

func videoQuery(text string) string {
	q := text
	for _, prefix := range []string{"search youtube for ", "search on youtube for ", "youtube search ", "search youtube ", "open youtube and search ", "play ", "youtube "} {
		if strings.HasPrefix(q, prefix) {
			q = strings.TrimPrefix(q, prefix)
			break
		}
	}
	for _, suffix := range []string{" on youtube", " in youtube", " from youtube"} {
		q = strings.TrimSuffix(q, suffix)
	}
	if q == "youtube" || q == "open youtube" {
		return ""
	}
	return strings.TrimSpace(q)
}

func trimFiller(s string) string {
	s = strings.TrimPrefix(s, "to ")
	s = strings.TrimSuffix(s, " now")
	return strings.TrimSpace(s)
}
