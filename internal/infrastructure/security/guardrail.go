package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/voicectl/assets"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/filesystem"
	"github.com/doeshing/voicectl/internal/ports"
)

// Guardrail implements the SecurityService port over rendered invocations.
type Guardrail struct {
	patterns []compiledPattern
	source   string
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads guardrail rules from disk, or the defaults when the file is missing.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, source, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return compile(rules.Rules.DangerPatterns, source)
}

// NewGuardrailFromPatterns builds a guardrail over an explicit rule list.
func NewGuardrailFromPatterns(patterns []DangerPattern) (*Guardrail, error) {
	return compile(patterns, "inline")
}

func compile(patterns []DangerPattern, source string) (*Guardrail, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile guardrail pattern %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}
	return &Guardrail{patterns: compiled, source: source}, nil
}

// Evaluate implements ports.SecurityService. The most severe matching rule decides the action.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionAllow,
	}
	highest := domain.RiskSafe
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		ruleLevel := parseRiskLevel(pattern.rule.Level)
		if moreSevere(ruleLevel, highest) {
			highest = ruleLevel
			assessment.Level = ruleLevel
			assessment.Action = parseAction(pattern.rule.Action, ruleLevel)
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

// RuleCount reports how many rules are active.
func (g *Guardrail) RuleCount() int {
	return len(g.patterns)
}

// Source names where the rules came from: a file path, "defaults" or "inline".
func (g *Guardrail) Source() string {
	return g.source
}

func loadRules(path string) (RulesFile, string, error) {
	var rules RulesFile
	path = expandPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		rules.Rules.DangerPatterns = DefaultPatterns()
		return rules, "defaults", nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, "", fmt.Errorf("parse guardrail rules %s: %w", path, err)
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		rules.Rules.DangerPatterns = DefaultPatterns()
		return rules, "defaults", nil
	}
	return rules, path, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "allow":
		return domain.ActionAllow
	case "warn":
		return domain.ActionWarn
	case "block":
		return domain.ActionBlock
	default:
		if fallback == domain.RiskSafe {
			return domain.ActionAllow
		}
		return domain.ActionWarn
	}
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	order := map[domain.RiskLevel]int{
		domain.RiskSafe:     0,
		domain.RiskLow:      1,
		domain.RiskMedium:   2,
		domain.RiskHigh:     3,
		domain.RiskCritical: 4,
	}
	return order[next] > order[current]
}

func expandPath(path string) string {
	if path == "" {
		return filesystem.DataPath("guardrail.yaml")
	}
	path = filesystem.ExpandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filesystem.UserHomeDir(), path)
}

// DefaultPatterns returns the built-in rules embedded from assets/defaults/guardrail.yaml.
func DefaultPatterns() []DangerPattern {
	var rules RulesFile
	if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
		panic(fmt.Sprintf("embedded guardrail rules are invalid: %v", err))
	}
	return rules.Rules.DangerPatterns
}

var _ ports.SecurityService = (*Guardrail)(nil)
