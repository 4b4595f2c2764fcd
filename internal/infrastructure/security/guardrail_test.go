package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/infrastructure/platform"
)

func defaultGuardrail(t *testing.T) *Guardrail {
	t.Helper()
	guardrail, err := NewGuardrailFromPatterns(DefaultPatterns())
	if err != nil {
		t.Fatalf("NewGuardrailFromPatterns error: %v", err)
	}
	return guardrail
}

func TestGuardrailBlocksLauncherMetacharacters(t *testing.T) {
	guardrail := defaultGuardrail(t)

	result, err := guardrail.Evaluate(`cmd /c start  notepad & calc`)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if result.Action != domain.ActionBlock || result.Level != domain.RiskCritical {
		t.Fatalf("expected critical block, got %+v", result)
	}
}

func TestGuardrailAllowsPlainLaunch(t *testing.T) {
	guardrail := defaultGuardrail(t)

	result, err := guardrail.Evaluate(`cmd /c start  spotify`)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if result.Level != domain.RiskSafe || result.Action != domain.ActionAllow {
		t.Fatalf("expected safe, got %+v", result)
	}
}

func TestGuardrailWarnsOnPowerChanges(t *testing.T) {
	guardrail := defaultGuardrail(t)

	result, err := guardrail.Evaluate("shutdown -h +5")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if result.Action != domain.ActionWarn {
		t.Fatalf("expected warn, got %+v", result)
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("expected one reason, got %v", result.Reasons)
	}
}

func TestGuardrailMostSevereRuleWins(t *testing.T) {
	guardrail := defaultGuardrail(t)

	result, err := guardrail.Evaluate("sh -c rm -rf /")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if result.Level != domain.RiskCritical || result.Action != domain.ActionBlock {
		t.Fatalf("expected critical block, got %+v", result)
	}
	if len(result.MatchedRules) != 2 {
		t.Fatalf("expected both rules recorded, got %v", result.MatchedRules)
	}
}

func TestGuardrailAllowsBuiltInTables(t *testing.T) {
	guardrail := defaultGuardrail(t)
	resolver := platform.NewResolver(platform.WithHome("/home/tester"))

	for _, p := range []domain.Platform{domain.PlatformDarwin, domain.PlatformWindows, domain.PlatformLinux} {
		for _, intent := range []domain.Intent{
			domain.IntentOpenURL, domain.IntentLaunchApp, domain.IntentOpenSettings,
			domain.IntentVolumeUp, domain.IntentVolumeDown, domain.IntentMute,
			domain.IntentSystemInfo, domain.IntentCPUInfo, domain.IntentNetworkInfo,
		} {
			inv, err := resolver.Resolve(intent, domain.Params{domain.ParamURL: "example.com", domain.ParamApp: "calculator"}, p)
			if err != nil {
				t.Fatalf("resolve %s on %s: %v", intent, p, err)
			}
			result, err := guardrail.Evaluate(inv.CommandLine())
			if err != nil {
				t.Fatalf("Evaluate error: %v", err)
			}
			if result.Action == domain.ActionBlock {
				t.Fatalf("%s on %s blocked: %+v", intent, p, result)
			}
		}
	}
}

func TestGuardrailLoadsRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardrail.yaml")
	content := `rules:
  danger_patterns:
    - pattern: "spotify"
      level: high
      message: no music at work
      action: block
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	guardrail, err := NewGuardrail(path)
	if err != nil {
		t.Fatalf("NewGuardrail error: %v", err)
	}
	if guardrail.RuleCount() != 1 || guardrail.Source() != path {
		t.Fatalf("unexpected rule set: %d rules from %s", guardrail.RuleCount(), guardrail.Source())
	}
	result, _ := guardrail.Evaluate("open -a Spotify spotify")
	if result.Action != domain.ActionBlock {
		t.Fatalf("expected block, got %+v", result)
	}
}

func TestGuardrailMissingFileUsesDefaults(t *testing.T) {
	guardrail, err := NewGuardrail(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("NewGuardrail error: %v", err)
	}
	if guardrail.Source() != "defaults" || guardrail.RuleCount() != len(DefaultPatterns()) {
		t.Fatalf("expected defaults, got %d rules from %s", guardrail.RuleCount(), guardrail.Source())
	}
}

func TestGuardrailRejectsBadPattern(t *testing.T) {
	if _, err := NewGuardrailFromPatterns([]DangerPattern{{Pattern: "("}}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEmbeddedDefaultsCompile(t *testing.T) {
	patterns := DefaultPatterns()
	if len(patterns) != 8 {
		t.Fatalf("expected 8 embedded rules, got %d", len(patterns))
	}
	for _, p := range patterns {
		if p.Level == "" || p.Action == "" || p.Message == "" {
			t.Fatalf("incomplete embedded rule: %+v", p)
		}
	}
	if _, err := NewGuardrailFromPatterns(patterns); err != nil {
		t.Fatalf("embedded rules do not compile: %v", err)
	}
}
