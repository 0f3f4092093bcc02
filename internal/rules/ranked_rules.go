package rules

import (
	"regexp"
	"strings"

	"github.com/mskrss/background-pingu/internal/catalog"
)

var (
	notWhitelistedPattern = regexp.MustCompile(`The Fabric Mod "(.*?)" is not whitelisted!`)
	oldServerSideRNG      = regexp.MustCompile(`^serverSideRNG-[1-8]\.0\.0\.jar$`)
)

const autoResetMixinConflict = "java.lang.RuntimeException: Non-unique Mixin config name autoreset.mixins.json used by the mods atum and autoreset"

func usingServerSideRNG(in *Input) *Message {
	f := in.Facts
	if !f.HasMod("serverSideRNG-9.0.0.jar") {
		return nil
	}
	action := "delete"
	if f.IsMultiMCFork {
		action = "disable"
	}
	return warning("You are using serverSideRNG. The server for it is currently down, "+
		"so the mod is useless and it's recommended to %s it.", action)
}

func oldAntiResourceReload(in *Input) *Message {
	f := in.Facts
	if !f.HasMod("antiresourcereload-1.16.1-1.0.0.jar") || f.MinecraftVersion == nil || *f.MinecraftVersion != "1.16.1" {
		return nil
	}
	return critical("You're using an old version of AntiResourceReload, which can cause Minecraft to crash when entering practice maps. " +
		"You should update it: <https://github.com/Minecraft-Java-Edition-Speedrunning/mcsr-antiresourcereload-1.16.1/releases/tag/latest>")
}

// optionsZeroOrOldServerSideRNG reports illegal serverSideRNG builds first,
// then the crash signatures of a zeroed options.txt value.
func optionsZeroOrOldServerSideRNG(in *Input) *Message {
	for _, m := range in.Facts.Mods {
		if oldServerSideRNG.MatchString(m) {
			return critical("You're using an old version of serverSideRNG, which is now illegal and can often cause problems. " +
				"The server for it is currently down, so the mod is useless regardless and you should delete it.")
		}
	}
	if containsAnyOf(in.Log, exitCode805306369, "java.lang.ArithmeticException: / by zero") ||
		containsAll(in.Log, "########## GL ERROR ##########", "@ Render") {
		return major("Check your options.txt file for any values that are set to 0 and are not supposed to be 0 (such as `maxFps:0`). " +
			"If you find any, change them to the values you want and save the file.")
	}
	return nil
}

// rankedNonWhitelistedMods checks MCSR Ranked instances against the mod
// whitelist. When Ranked itself complains, the offending set is reported as
// either practice-only mods or other mods; when it does not complain despite
// non-whitelisted mods, the message asks a maintainer to check the whitelist.
func rankedNonWhitelistedMods(in *Input) *Message {
	f := in.Facts
	if !f.HasModContaining("mcsrranked") {
		return nil
	}
	sets := in.Catalog.Mods

	var offending []string
	for _, m := range f.Mods {
		if !catalog.ContainsAny(m, sets.RankedWhitelist) {
			offending = append(offending, m)
		}
	}
	if len(offending) == 0 {
		return nil
	}

	if !notWhitelistedPattern.MatchString(in.Log) {
		return escalate(in.Catalog, "%s (%s) whitelisted?",
			plural(len(offending), "is", "are"), strings.Join(offending, ", "))
	}

	var parts []*Message
	if catalog.AnyContains(offending, "fabric-api") {
		parts = append(parts, critical("You're using Fabric API. It is a mod separate to Fabric Loader, and it isn't allowed for speedrunning. "+
			"Delete it from your `mods` folder."))
	}

	var practice []string
	for _, m := range offending {
		if catalog.ContainsAny(m, sets.Practice) {
			practice = append(practice, m)
		}
	}

	if len(practice) != len(offending) {
		n := len(offending)
		parts = append(parts, critical("You are using %s (%s) that %sn't whitelisted for MCSR Ranked. Delete %s from your `mods` folder.",
			plural(n, "a mod", "mods"), strings.Join(offending, ", "), plural(n, "is", "are"), plural(n, "it", "them")))
		return combine(parts)
	}

	n := len(practice)
	msg := critical("You are using %s (%s) that %sn't allowed to be used when playing Ranked.",
		plural(n, "a practice mod", "practice mods"), strings.Join(practice, ", "), plural(n, "is", "are"))
	if f.IsMultiMCFork {
		them := plural(n, "it", "them")
		msg.Text += " You should either create a separate practice instance for " + them + " or disable " + them + "."
	}
	parts = append(parts, msg)
	return combine(parts)
}

func usingAutoReset(in *Input) *Message {
	if !in.Facts.HasMod("autoreset-1.2.0+MC1.16.1.jar") && !strings.Contains(in.Log, autoResetMixinConflict) {
		return nil
	}
	return critical("You're using AutoReset. It's a really old mod that is no longer allowed, and Atum is a better version of it. " +
		"You can download Atum here: <https://modrinth.com/mod/atum/versions>.")
}

func outdatedRanked(in *Input) *Message {
	if !in.Facts.HasMod("mcsrranked-1.2.2.jar") {
		return nil
	}
	return critical("You're using an old version of the MCSR Ranked mod, which no longer works. " +
		"You should delete it from your mods folder and download the latest one from <https://modrinth.com/mod/mcsr-ranked/versions/>.")
}
