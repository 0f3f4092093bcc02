// Package rules holds the diagnostic rule catalog and the evaluator that runs
// it over one log.
//
// Each rule is an independent pure check on the extracted facts and the raw
// log text, producing at most one message. Rules never see each other's
// output, and message order is the registry order.
package rules

import (
	"fmt"

	"github.com/mskrss/background-pingu/internal/catalog"
	"github.com/mskrss/background-pingu/internal/facts"
	"github.com/mskrss/background-pingu/internal/logging"
)

// Input is the read-only view every rule receives.
type Input struct {
	Facts   *facts.Bundle
	Log     string
	Catalog *catalog.Catalog
}

// Rule is a named diagnostic check. Check returns nil when the rule has no
// opinion, including when a fact it depends on is unknown.
type Rule struct {
	Name  string
	Check func(in *Input) *Message
}

// Result pairs a rule with the message it produced.
type Result struct {
	Rule    string
	Message Message
}

// Registry is an ordered, immutable rule catalog.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from rules in the given order.
// Rule names must be unique.
func NewRegistry(rules ...Rule) (*Registry, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.Check == nil {
			return nil, fmt.Errorf("rule %q is incomplete", r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
	}
	return &Registry{rules: append([]Rule(nil), rules...)}, nil
}

// defaultRules is the production catalog. New rules are appended; the
// relative order of existing rules is part of the output contract.
var defaultRules = []Rule{
	{"not-using-fabric", notUsingFabric},
	{"should-use-prism", shouldUsePrism},
	{"java-requirements", javaRequirements},
	{"srigt-loader-incompatibility", speedRunIGTLoaderIncompatibility},
	{"outdated-fabric-loader", outdatedFabricLoader},
	{"memory-allocation", memoryAllocation},
	{"onedrive", oneDrive},
	{"jvm-fatal-error", jvmFatalError},
	{"phosphor", usingPhosphor},
	{"assets-download", failedToDownloadAssets},
	{"id-range", idRangeExceeded},
	{"program-files", inProgramFiles},
	{"macos-too-new-java", macOSTooNewJava},
	{"forge-too-new-java", forgeTooNewJava},
	{"m1-service-port", m1FailedToFindServicePort},
	{"pixel-format", pixelFormatNotAccelerated},
	{"shadermod-optifine", shadersModOptifineConflict},
	{"system-glfw-openal", systemGLFWOrOpenAL},
	{"sodium-config", sodiumConfig},
	{"ssrng-down", usingServerSideRNG},
	{"log-spam", randomLogSpam},
	{"need-fabric-api", needFabricAPI},
	{"disallowed-fabric-api", disallowedFabricAPI},
	{"native-jar-locked", nativeJarLocked},
	{"launch-as-admin", launchAsAdmin},
	{"masker-crash", maskerCrash},
	{"lithium-crash", lithiumCrash},
	{"old-antiresourcereload", oldAntiResourceReload},
	{"intel-hd-graphics", limitedGraphicsCapability},
	{"exitcode-1073741819", exitCodeAccessViolation},
	{"options-zero-or-old-ssrng", optionsZeroOrOldServerSideRNG},
	{"ranked-whitelist", rankedNonWhitelistedMods},
	{"autoreset", usingAutoReset},
	{"outdated-ranked", outdatedRanked},
	{"launch-online", needToLaunchOnline},
	{"java-compatibility-check", javaCompatibilityCheck},
	{"log4j-missing", log4jClassNotFound},
	{"forge-installer", randomForgeCrashes},
}

// Default returns the production registry.
func Default() *Registry {
	return &Registry{rules: append([]Rule(nil), defaultRules...)}
}

// Len returns the number of rules.
func (r *Registry) Len() int { return len(r.rules) }

// Names returns the rule names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Without returns a copy of the registry minus the named rule.
func (r *Registry) Without(name string) *Registry {
	out := &Registry{rules: make([]Rule, 0, len(r.rules))}
	for _, rule := range r.rules {
		if rule.Name != name {
			out.rules = append(out.rules, rule)
		}
	}
	return out
}

// Results runs every rule in order and returns the non-empty outcomes.
// Rules do not short-circuit one another.
func (r *Registry) Results(in *Input) []Result {
	var results []Result
	for _, rule := range r.rules {
		if msg := runRule(rule, in); msg != nil {
			results = append(results, Result{Rule: rule.Name, Message: *msg})
		}
	}
	return results
}

// Evaluate runs every rule and returns the messages in registry order. The
// result is empty, never an error, when nothing is recognized.
func (r *Registry) Evaluate(in *Input) []Message {
	results := r.Results(in)
	messages := make([]Message, 0, len(results))
	for _, res := range results {
		messages = append(messages, res.Message)
	}
	return messages
}

// runRule reports a panicking rule as having no message.
func runRule(rule Rule, in *Input) (msg *Message) {
	defer func() {
		if p := recover(); p != nil {
			logging.Error("rule panicked", "rule", rule.Name, "panic", fmt.Sprint(p))
			msg = nil
		}
	}()
	return rule.Check(in)
}
