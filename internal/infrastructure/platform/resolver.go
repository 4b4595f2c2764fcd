// Package platform resolves abstract intents into concrete host invocations.
//
// Resolution is data driven: every platform owns a Table from logical action
// keys ("app:calculator", "info:cpu", ...) to process templates. An action
// missing from a platform's table falls back to the class template for its
// action family (the platform's URL/file opener or its application launcher),
// and only then fails with NotSupportedOnPlatform.
package platform

import (
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/filesystem"
	"github.com/doeshing/voicectl/internal/ports"
)

// Resolver implements ports.ActionResolver. Its tables are read-only after construction.
type Resolver struct {
	tables      map[domain.Platform]Table
	home        string
	infoTimeout time.Duration
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTables replaces the built-in capability tables.
func WithTables(tables map[domain.Platform]Table) Option {
	return func(r *Resolver) { r.tables = tables }
}

// WithHome sets the home directory used for folder actions.
func WithHome(home string) Option {
	return func(r *Resolver) { r.home = home }
}

// WithInfoTimeout bounds informational queries.
func WithInfoTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.infoTimeout = d
		}
	}
}

// NewResolver builds a resolver over DefaultTables.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		tables:      DefaultTables(),
		home:        filesystem.UserHomeDir(),
		infoTimeout: domain.InfoQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// action is the platform-independent description of what an intent needs.
type action struct {
	key      string
	class    string
	vars     map[string]string
	fallback string
}

// Resolve implements ports.ActionResolver.
func (r *Resolver) Resolve(intent domain.Intent, params domain.Params, platform domain.Platform) (domain.Invocation, error) {
	act, ok := r.actionFor(intent, params, platform)
	if !ok {
		return domain.Invocation{}, &domain.ResolutionError{Kind: domain.UnknownAction, Action: string(intent), Platform: platform}
	}

	tpl, found := r.lookup(platform, act)
	if !found {
		return domain.Invocation{}, &domain.ResolutionError{Kind: domain.NotSupportedOnPlatform, Action: act.key, Platform: platform}
	}

	inv := render(act.key, tpl, act.vars)
	if tpl.Info {
		inv.Timeout = r.infoTimeout
	}

	if act.fallback != "" {
		if opener, ok := r.classTemplate(platform, keyOpener); ok {
			fb := render(act.key+":web", opener, map[string]string{"target": act.fallback})
			inv.Fallback = &fb
		}
	}
	return inv, nil
}

// lookup performs exact lookup, then the class template for the action family.
func (r *Resolver) lookup(platform domain.Platform, act action) (Template, bool) {
	if tpl, ok := r.tables[platform][act.key]; ok {
		return tpl, true
	}
	switch act.class {
	case "url", "folder", "messaging":
		return r.classTemplate(platform, keyOpener)
	case "app", "named":
		return r.classTemplate(platform, keyLaunch)
	default:
		return Template{}, false
	}
}

func (r *Resolver) classTemplate(platform domain.Platform, key string) (Template, bool) {
	if tpl, ok := r.tables[platform][key]; ok {
		return tpl, true
	}
	tpl, ok := r.tables[domain.PlatformGeneric][key]
	return tpl, ok
}

func (r *Resolver) actionFor(intent domain.Intent, params domain.Params, platform domain.Platform) (action, bool) {
	switch intent {
	case domain.IntentOpenURL:
		return urlAction(NormalizeURL(params.Get(domain.ParamURL))), true
	case domain.IntentWebSearch:
		return urlAction(SearchURL(params.Get(domain.ParamQuery))), true
	case domain.IntentVideoSearch:
		return urlAction(VideoURL(params.Get(domain.ParamQuery))), true
	case domain.IntentOpenWeather:
		return urlAction(SearchURL(strings.TrimSpace("weather " + params.Get(domain.ParamQuery)))), true
	case domain.IntentLaunchApp:
		app := params.Get(domain.ParamApp)
		name := appNames[app]
		if name == "" {
			name = app
		}
		return action{key: "app:" + app, class: "app", vars: nameVars(name)}, true
	case domain.IntentLaunchNamedApp:
		name := params.Get(domain.ParamName)
		return action{key: "app:" + name, class: "named", vars: nameVars(name)}, true
	case domain.IntentWhatsAppCall:
		return action{
			key:      "whatsapp:call",
			class:    "messaging",
			vars:     map[string]string{"target": "whatsapp://", "contact": params.Get(domain.ParamContact)},
			fallback: "https://web.whatsapp.com/",
		}, true
	case domain.IntentWhatsAppMessage:
		return action{
			key:      "whatsapp:message",
			class:    "messaging",
			vars:     map[string]string{"target": "whatsapp://send", "contact": params.Get(domain.ParamContact)},
			fallback: "https://web.whatsapp.com/send",
		}, true
	case domain.IntentOpenFileLocation:
		loc := params.Get(domain.ParamLocation)
		return action{key: "folder:" + loc, class: "folder", vars: map[string]string{"target": r.folderPath(loc, platform)}}, true
	case domain.IntentOpenSettings:
		section := params.Get(domain.ParamSection)
		if section == "" {
			section = "general"
		}
		return action{key: "settings:" + section, class: "settings"}, true
	case domain.IntentShutdown:
		seconds, err := strconv.Atoi(params.Get(domain.ParamSeconds))
		if err != nil || seconds < 0 {
			seconds = domain.DefaultShutdownDelaySeconds
		}
		seconds = min(seconds, domain.MaxShutdownDelaySeconds)
		return action{key: "power:shutdown", class: "power", vars: map[string]string{
			"seconds": strconv.Itoa(seconds),
			"minutes": strconv.Itoa((seconds + 59) / 60),
		}}, true
	case domain.IntentRestart:
		return action{key: "power:restart", class: "power"}, true
	case domain.IntentSleep:
		return action{key: "power:sleep", class: "power"}, true
	case domain.IntentVolumeUp:
		return action{key: "volume:up", class: "volume"}, true
	case domain.IntentVolumeDown:
		return action{key: "volume:down", class: "volume"}, true
	case domain.IntentMute:
		return action{key: "volume:mute", class: "volume"}, true
	}
	if key, ok := InfoAction(intent); ok {
		return action{key: key, class: "info"}, true
	}
	return action{}, false
}

func (r *Resolver) folderPath(location string, platform domain.Platform) string {
	name, ok := folderNames[location]
	if !ok {
		return r.home
	}
	if platform == domain.PlatformDarwin {
		if alt, ok := darwinFolderNames[location]; ok {
			name = alt
		}
	}
	if name == "" {
		return r.home
	}
	return filepath.Join(r.home, name)
}

// Actions lists the exact action keys a platform supports, sorted.
func (r *Resolver) Actions(platform domain.Platform) []string {
	table := r.tables[platform]
	keys := make([]string, 0, len(table))
	for k := range table {
		if k == keyOpener || k == keyLaunch {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Programs lists the distinct executables a platform table references, sorted.
func (r *Resolver) Programs(platform domain.Platform) []string {
	seen := map[string]bool{}
	for _, tpl := range r.tables[platform] {
		if strings.Contains(tpl.Program, "{") {
			continue
		}
		seen[tpl.Program] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// InfoAction maps an informational intent onto its table key.
func InfoAction(intent domain.Intent) (string, bool) {
	if !intent.IsInfo() {
		return "", false
	}
	return "info:" + strings.TrimSuffix(string(intent), "-info"), true
}

// NormalizeURL adds an https scheme when the text has none.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// SearchURL builds a web search URL for query.
func SearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// VideoURL builds a video search URL, or the video site home page for an empty query.
func VideoURL(query string) string {
	if strings.TrimSpace(query) == "" {
		return "https://www.youtube.com"
	}
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}

func urlAction(target string) action {
	return action{key: "url:open", class: "url", vars: map[string]string{"target": target}}
}

func nameVars(name string) map[string]string {
	return map[string]string{"name": name, "Name": titleCase(name)}
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + f[size:]
	}
	return strings.Join(fields, " ")
}

func render(key string, tpl Template, vars map[string]string) domain.Invocation {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	rep := strings.NewReplacer(pairs...)

	args := make([]string, len(tpl.Args))
	for i, a := range tpl.Args {
		args[i] = rep.Replace(a)
	}
	return domain.Invocation{
		Action:      key,
		Program:     rep.Replace(tpl.Program),
		Args:        args,
		OutputLimit: tpl.OutputLimit,
	}
}

var _ ports.ActionResolver = (*Resolver)(nil)
