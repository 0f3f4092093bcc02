package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mskrss/background-pingu/internal/facts"
)

var (
	classFileVersionPattern   = regexp.MustCompile(`class file version (\d+\.\d+)`)
	compatibilityLevelPattern = regexp.MustCompile(`The requested compatibility level JAVA_(\d+) could not be set.`)
	javaCheckPattern          = regexp.MustCompile(`This instance is not compatible with Java version (\d+)\.\nPlease switch to one of the following Java versions for this instance:\nJava version (\d+)`)
)

const (
	java17RequiredSignature = "Minecraft 1.18 Pre Release 2 and above require the use of Java 17"
	java32BitSignature      = "Your Java architecture is not matching your system architecture. You might want to install a 64bit Java version."
	brokenJavaSignature     = `Exception in thread "main" java.lang.ClassFormatError: Incompatible magic value 0 in class file sun/security/provider/SunEntries`

	// classFileVersionOffset converts a class file major version to a Java release.
	classFileVersionOffset = 44

	worldPreviewReleases = "https://github.com/Minecraft-Java-Edition-Speedrunning/mcsr-worldpreview-1.16.1/releases/latest"
)

// javaRequirements reports the highest-priority Java problem. The tiers are
// tried in order and only the first that applies produces a message:
// mods needing Java 17, a game version needing Java 17, a class file version
// mismatch, a mixin compatibility level, 32-bit Java, a broken install.
func javaRequirements(in *Input) *Message {
	tiers := []func(*Input) *Message{
		java17Mods,
		java17GameVersion,
		javaClassFileVersion,
		javaCompatibilityLevel,
		java32Bit,
		javaBrokenInstall,
	}
	for _, tier := range tiers {
		if msg := tier(in); msg != nil {
			return msg
		}
	}
	return nil
}

func java17Mods(in *Input) *Message {
	f := in.Facts
	if f.MajorJavaVersion == nil || *f.MajorJavaVersion >= 17 {
		return nil
	}
	var needy []string
	for _, m := range f.Mods {
		for _, frag := range in.Catalog.Mods.Java17 {
			if strings.Contains(m, frag) {
				needy = append(needy, m)
				break
			}
		}
	}
	if len(needy) == 0 {
		return nil
	}

	n := len(needy)
	msg := critical("You are using %s (`%s`) that require%s using Java 17+.",
		plural(n, "a mod", "mods"), strings.Join(needy, "`, `"), plural(n, "s", ""))
	guide := in.Catalog.Links.JavaGuide

	switch {
	case f.HasModContaining("mcsrranked"):
		msg.Text += deleteJava17Mods(n, f.IsMultiMCFork, guide)
	case anyContainsAny(needy, "antiresourcereload", "peepopractice", "setspawnmod"):
		msg.Text += "\nUse this guide to update your Java version: <" + guide + ">."
	case anyContainsAny(needy, "worldpreview-2.", "worldpreview-1.0"):
		msg.Text += " Delete it and download the latest version that doesn't require Java 17 from <" + worldPreviewReleases + ">."
	default:
		msg.Text += deleteJava17Mods(n, f.IsMultiMCFork, guide)
	}
	return msg
}

func deleteJava17Mods(n int, multiMC bool, guide string) string {
	s := " Delete " + plural(n, "it", "them") + " from your `mods` folder."
	if multiMC {
		s += "\n*(you can use this guide to update your Java version, which is better for performance:* <" + guide + ">)"
	}
	return s
}

func anyContainsAny(names []string, fragments ...string) bool {
	for _, n := range names {
		for _, frag := range fragments {
			if strings.Contains(n, frag) {
				return true
			}
		}
	}
	return false
}

func java17GameVersion(in *Input) *Message {
	if !strings.Contains(in.Log, java17RequiredSignature) {
		return nil
	}
	return critical("You are playing on a Minecraft version that requires using Java 17+.\n"+
		"Use this guide to update your Java version: <%s>.", in.Catalog.Links.JavaGuide)
}

func javaClassFileVersion(in *Input) *Message {
	if !strings.Contains(in.Log, "java.lang.UnsupportedClassVersionError") {
		return nil
	}
	m := classFileVersionPattern.FindStringSubmatch(in.Log)
	if m == nil {
		return nil
	}
	classVersion, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	needed := int(math.RoundToEven(classVersion)) - classFileVersionOffset
	if needed <= 0 {
		return nil
	}
	return needJava(in, strconv.Itoa(needed))
}

func javaCompatibilityLevel(in *Input) *Message {
	m := compatibilityLevelPattern.FindStringSubmatch(in.Log)
	if m == nil {
		return nil
	}
	return needJava(in, m[1])
}

func needJava(in *Input, version string) *Message {
	return critical("You need to use Java %s+. Use this guide to update your Java version: <%s>.",
		version, in.Catalog.Links.JavaGuide)
}

func java32Bit(in *Input) *Message {
	if !strings.Contains(in.Log, java32BitSignature) {
		return nil
	}
	return critical("You're using 32-bit Java. See here for help installing the correct version: <%s>.",
		in.Catalog.Links.JavaGuide)
}

func javaBrokenInstall(in *Input) *Message {
	if !strings.Contains(in.Log, brokenJavaSignature) {
		return nil
	}
	guide := in.Catalog.Links.PrismJavaGuide
	if in.Facts.ModsTier == facts.CompetitiveMods {
		guide = in.Catalog.Links.JavaGuide
	}
	return critical("Your Java installation seems to be broken. "+
		"Follow this guide to install and select the recommended Java version: <%s>.", guide)
}

func macOSTooNewJava(in *Input) *Message {
	if !strings.Contains(in.Log, "Terminating app due to uncaught exception 'NSInternalInconsistencyException', "+
		"reason: 'NSWindow drag regions should only be invalidated on the Main Thread!'") {
		return nil
	}
	return critical("You are using too new of a Java version. Please follow the steps on this wiki page to install 8u241: " +
		"<https://github.com/MultiMC/MultiMC5/wiki/Java-on-macOS>. You don't need to uninstall the other Java version.")
}

func forgeTooNewJava(in *Input) *Message {
	if !strings.Contains(in.Log, "java.lang.ClassCastException: class jdk.internal.loader.ClassLoaders$AppClassLoader "+
		"cannot be cast to class java.net.URLClassLoader") {
		return nil
	}
	return critical("You need to use Java **8** to use Forge on this Minecraft version. "+
		"Use this guide to install it, but make sure to install Java **8** instead of Java 17: <%s>.", in.Catalog.Links.JavaGuide)
}

// javaCompatibilityCheck handles Prism refusing to launch with the selected
// Java. Whether to switch Java or disable the check depends on the game.
func javaCompatibilityCheck(in *Input) *Message {
	m := javaCheckPattern.FindStringSubmatch(in.Log)
	if m == nil {
		return nil
	}
	current, compatible := m[1], m[2]
	f := in.Facts

	switch {
	case f.ModloaderIs(facts.Forge) || needsModernJava(f.MinecraftVersion):
		download := ""
		switch {
		case f.OSIs(facts.Windows):
			download = " (download the .msi file)"
		case f.OSIs(facts.MacOS):
			download = " (download the .pkg file)"
		}
		return critical("You're using Java %s, while you need to use Java %s for this instance. "+
			"You can download Java %s from <https://adoptium.net/temurin/releases/>%s. "+
			"Then make sure to select Java %s either globally or in instance settings.",
			current, compatible, compatible, download, compatible)
	case f.MinecraftVersion != nil && versionPrefix(*f.MinecraftVersion) == "1.16":
		// 1.16 speedrunning mods run fine on newer Java; only the check is wrong.
		return critical("Disable the Java compatibility check in `Settings > Java` either in instance settings or in global settings.")
	default:
		return critical("Either use Java %s for this instance or disable the Java compatibility check in `Settings > Java` "+
			"either in instance settings or in global settings.", compatible)
	}
}

// needsModernJava reports game versions from 1.18 on, which really do need
// the Java version the launcher asks for.
func needsModernJava(version *string) bool {
	if version == nil {
		return false
	}
	switch versionPrefix(*version) {
	case "1.18", "1.19", "1.20", "1.21", "1.22", "1.23":
		return true
	}
	return false
}

// versionPrefix returns the first four bytes of a game version ("1.16.1" → "1.16").
func versionPrefix(v string) string {
	if len(v) < 4 {
		return v
	}
	return v[:4]
}
