package rules

import (
	"strings"

	"github.com/mskrss/background-pingu/internal/facts"
)

const (
	outOfMemorySignature  = "OutOfMemoryError"
	exitCode805306369     = "Process crashed with exitcode -805306369"
	shenandoahArgFragment = "shenandoah"
)

// leakySodiumBuilds leak memory on macOS.
var leakySodiumBuilds = []string{"sodium-1.16.1-v1.jar", "sodium-1.16.1-v2.jar"}

// memoryAllocation grades -Xmx against the catalog thresholds and flags the
// macOS Sodium leak. A bare OutOfMemoryError is reported only when neither
// produced anything more specific.
func memoryAllocation(in *Input) *Message {
	f := in.Facts
	var parts []*Message

	if f.MaxMemoryMB != nil && *f.MaxMemoryMB > 0 {
		if msg := tooLittleRAM(in, *f.MaxMemoryMB); msg != nil {
			parts = append(parts, msg)
		}
		if msg := tooMuchRAM(in, *f.MaxMemoryMB); msg != nil {
			parts = append(parts, msg)
		}
	}
	if f.OSIs(facts.MacOS) && (f.HasMod(leakySodiumBuilds[0]) || f.HasMod(leakySodiumBuilds[1])) {
		parts = append(parts, critical("You seem to be using a version of Sodium that has a memory leak on MacOS. "+
			"Delete the one you have and download <https://github.com/Minecraft-Java-Edition-Speedrunning/mcsr-sodium-mac-1.16.1/releases/tag/latest> instead."))
	}
	if len(parts) > 0 {
		return combine(parts)
	}

	if strings.Contains(in.Log, outOfMemorySignature) {
		links := in.Catalog.Links
		return critical("You likely either have too little RAM allocated, or experienced a memory leak. "+
			"Check out <%s> and <%s>.", links.LowRAMGuide, links.MemoryLeakGuide)
	}
	return nil
}

// tooLittleRAM applies the three ascending "too little" tiers. The most
// severe one also needs the log to show a memory crash.
func tooLittleRAM(in *Input, mb int) *Message {
	shenandoah := strings.Contains(strings.ToLower(facts.Str(in.Facts.JavaArguments)), shenandoahArgFragment)
	crashBelow, likelyBelow, maybeBelow := in.Catalog.Memory.LowThresholds(shenandoah)
	crashed := strings.Contains(in.Log, outOfMemorySignature) || strings.Contains(in.Log, exitCode805306369)
	guide := in.Catalog.Links.LowRAMGuide

	switch {
	case mb < crashBelow && crashed:
		return critical("You have too little RAM allocated. Check out <%s> for a guide on how to fix it.", guide)
	case mb < likelyBelow:
		return major("You likely have too little RAM allocated. Check out <%s> for a guide on how to fix it.", guide)
	case mb < maybeBelow:
		return warning("You likely have too little RAM allocated. Check out <%s> for a guide on how to fix it.", guide)
	}
	return nil
}

// tooMuchRAM applies the descending "too much" tiers; only competitive
// instances are graded.
func tooMuchRAM(in *Input, mb int) *Message {
	if in.Facts.ModsTier != facts.CompetitiveMods {
		return nil
	}
	limits := in.Catalog.Memory
	guide := in.Catalog.Links.HighRAMGuide

	switch {
	case mb > limits.WayTooMuchAbove:
		return critical("You have way too much RAM allocated, which can cause lag spikes. Check out <%s> for a guide on how to fix it.", guide)
	case mb > limits.TooMuchAbove:
		return major("You have too much RAM allocated, which can cause lag spikes. Check out <%s> for a guide on how to fix it.", guide)
	case mb > limits.MaybeTooMuchAbove:
		return warning("You likely have too much RAM allocated, which can cause lag spikes. Check out <%s> for a guide on how to fix it.", guide)
	}
	return nil
}
