package rules

import (
	"regexp"
	"strings"

	"github.com/mskrss/background-pingu/internal/facts"
)

var directoryNotCreatedPattern = regexp.MustCompile(`java\.io\.IOException: Directory '(.+?)' could not be created`)

// signature is a single substring check mapped to one fixed message.
func signature(needle string, build func(in *Input) *Message) func(*Input) *Message {
	return func(in *Input) *Message {
		if !strings.Contains(in.Log, needle) {
			return nil
		}
		return build(in)
	}
}

// containsAll reports whether log contains every needle.
func containsAll(log string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(log, n) {
			return false
		}
	}
	return true
}

// containsAnyOf reports whether log contains at least one needle.
func containsAnyOf(log string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(log, n) {
			return true
		}
	}
	return false
}

func oneDrive(in *Input) *Message {
	f := in.Facts
	if !strings.Contains(facts.Str(f.MinecraftFolder), "OneDrive") {
		return nil
	}
	return warning("Your %s folder is located in OneDrive. OneDrive can mess with your game files to save space, "+
		"and this often leads to crashes. You should move it out to a different folder, and may need to reinstall %s.",
		f.LauncherName("launcher"), f.LauncherName("the launcher"))
}

func inProgramFiles(in *Input) *Message {
	f := in.Facts
	if !strings.Contains(facts.Str(f.MinecraftFolder), "C:/Program Files") {
		return nil
	}
	return warning("Your %s installation is in `Program Files`. It is generally not recommended, and could cause issues. "+
		"Consider moving it to a different location.", f.LauncherName("launcher"))
}

// jvmFatalError lists the usual causes of a native JVM crash.
func jvmFatalError(in *Input) *Message {
	if !containsAnyOf(in.Log, "A fatal error has been detected by the Java Runtime Environment", "EXCEPTION_ACCESS_VIOLATION") {
		return nil
	}
	lines := []string{
		"This crash may be caused by one of the following:",
		"- Concurrently running programs, such as OBS and Discord, that use the same graphics card as the game.",
		" - Try using window capture instead of game capture in OBS.",
		" - Try disabling hardware acceleration in Discord.",
	}
	if in.Facts.HasModContaining("SpeedRunIGT") {
		lines = append(lines, "- A compatibility issue between SpeedrunIGT, Intel Graphics and OpenGL. "+
			"Enable “Safe Font Mode” in SpeedrunIGT options. If the game crashes before you can access that menu, delete .minecraft/speedrunigt.")
	}
	lines = append(lines, "- Driver issues. Check if your drivers are updated, and update them or downgrade them if they're already updated.")
	return major("%s", strings.Join(lines, "\n"))
}

// usingPhosphor recommends Starlight, linking the build for the game version.
func usingPhosphor(in *Input) *Message {
	f := in.Facts
	if !f.HasModContaining("phosphor") {
		return nil
	}
	if f.HasModContaining("starlight") {
		return critical("Phosphor and Starlight are incompatible. You should delete Phosphor from your mods folder.")
	}
	if f.MinecraftVersion == nil {
		return nil
	}
	v := *f.MinecraftVersion
	if v == "1.12.2" {
		return nil
	}

	const advice = "You're using Phosphor. Starlight is much better than Phosphor, you should use it instead. "
	var link string
	switch {
	case v == "1.16.1":
		link = "https://github.com/PaperMC/Starlight/releases/download/1.0.0-RC2/starlight-fabric-1.0.0-RC2-1.16.x.jar"
	case v == "1.16.5":
		link = "https://github.com/PaperMC/Starlight/releases/download/1.0.0-RC2/starlight-forge-1.0.0-RC2-1.16.5.jar"
	case len(v) < 4:
		return escalate(in.Catalog, "unrecognized Minecraft version `%s` while recommending Starlight", v)
	case versionPrefix(v) == "1.15":
		link = "https://github.com/dariasc/Starlight/releases/tag/1.15%2F1.0.0-alpha"
	default:
		minor, ok := minecraftMinor(v)
		if !ok || minor <= 16 {
			return escalate(in.Catalog, "no Starlight build known for Minecraft `%s`", v)
		}
		link = "https://modrinth.com/mod/starlight/versions"
	}
	return warning("%sYou can download it here: <%s>", advice, link)
}

var failedToDownloadAssets = signature("Instance update failed because: Failed to download the assets index:",
	func(*Input) *Message {
		return critical("Try restarting your PC and then launching the instance again.")
	})

var idRangeExceeded = signature("java.lang.RuntimeException: Invalid id 4096 - maximum id range exceeded.",
	func(*Input) *Message {
		return critical("You've exceeded the hardcoded ID Limit. Remove some mods, or install [JustEnoughIDs](<https://www.curseforge.com/minecraft/mc-mods/jeid>)")
	})

var m1FailedToFindServicePort = signature("java.lang.IllegalStateException: GLFW error before init: [0x10008]Cocoa: Failed to find service port for display",
	func(*Input) *Message {
		return critical("You seem to be using an Apple M1 Mac with an incompatible version of Forge. " +
			"Add the following to your launch arguments as a workaround: `-Dfml.earlyprogresswindow=false`")
	})

var pixelFormatNotAccelerated = signature("org.lwjgl.LWJGLException: Pixel format not accelerated",
	func(*Input) *Message {
		return critical("You seem to be using an Intel GPU that is not supported on Windows 10. " +
			"You will need to install an older version of Java, see here for help: <https://github.com/MultiMC/MultiMC5/wiki/Unsupported-Intel-GPUs>.")
	})

var shadersModOptifineConflict = signature("java.lang.RuntimeException: Shaders Mod detected. Please remove it, OptiFine has built-in support for shaders.",
	func(*Input) *Message {
		return critical("You've installed a Shaders Mod alongside OptiFine. OptiFine has built-in shader support, so you should remove Shaders Mod.")
	})

// systemGLFWOrOpenAL flags the "use system libraries" workaround, as the
// crash cause when the launcher also failed to load that library.
func systemGLFWOrOpenAL(in *Input) *Message {
	var using []string
	for _, lib := range []string{"GLFW", "OpenAL"} {
		if strings.Contains(in.Log, "Using system "+lib) {
			using = append(using, lib)
		}
	}
	if len(using) == 0 {
		return nil
	}
	what := using[0] + " installation"
	if len(using) == 2 {
		what = "GLFW and OpenAL installations"
	}

	f := in.Facts
	if containsAnyOf(in.Log, "Failed to locate library: glfw", "Failed to locate library: OpenAL") {
		tweaks := ""
		if f.LauncherIs(facts.Prism) {
			tweaks = " → Tweaks"
		}
		return critical("You're using your system's %s, which is causing the crash. "+
			"Disable it either in %s's global settings in `Settings → Minecraft%s` or in instance settings in `Settings → Workarounds`.",
			what, f.LauncherName("your launcher"), tweaks)
	}
	return warning("You seem to be using your system's %s. This can cause the instance to crash if not properly setup. "+
		"In case of a crash, make sure this isn't the cause of it.", what)
}

var sodiumConfig = signature("me.jellysquid.mods.sodium.client",
	func(in *Input) *Message {
		return critical("If your game crashes when you open the video settings menu or load into a world, " +
			"delete `.minecraft/config/sodium-options.json`.").notify(in.Catalog)
	})

func randomLogSpam(in *Input) *Message {
	if !containsAnyOf(in.Log,
		"Using missing texture, unable to load",
		"Exception loading blockstate definition",
		"Unable to load model",
		`java.lang.NullPointerException: Cannot invoke "com.mojang.authlib.minecraft.MinecraftProfileTexture.getHash()" because "?" is null`,
	) {
		return nil
	}
	return info("Your log seems to have lines with random spam. It shouldn't cause any problems, " +
		"and there aren't any known fixes.").notify(in.Catalog)
}

var nativeJarLocked = signature("Couldn't extract native jar",
	func(*Input) *Message {
		return critical("Another process appears to be locking your native library JARs. To solve this, please reboot your PC.")
	})

func launchAsAdmin(in *Input) *Message {
	if !directoryNotCreatedPattern.MatchString(in.Log) {
		return nil
	}
	return major("Try opening %s as administrator.", in.Facts.LauncherName("the launcher"))
}

func maskerCrash(in *Input) *Message {
	if !containsAll(in.Log,
		"java.lang.RuntimeException: We are asking a region for a chunk out of bound",
		"Encountered an unexpected exception",
		"net.minecraft.class_148: Feature placement",
		"net.minecraft.server.MinecraftServer.method_3813(MinecraftServer.java:876)",
		"at net.minecraft.server.MinecraftServer.method_3748(MinecraftServer.java:813)",
	) {
		return nil
	}
	return info("This seems to be a rare crash that you can't do anything about. " +
		"So far we only know of one case when it happened.").notify(in.Catalog)
}

func lithiumCrash(in *Input) *Message {
	if !containsAll(in.Log,
		"java.lang.IllegalStateException: Adding Entity listener a second time",
		"me.jellysquid.mods.lithium.common.entity.tracker.nearby",
	) {
		return nil
	}
	return info("This seems to be a rare crash caused by Lithium that you can't do anything about. " +
		"It happens really rarely, so far we only know about 4 times of when it happened to someone, " +
		"so it's not worth it to not use Lithium because of it.")
}

var limitedGraphicsCapability = signature("GLFW error 65543: WGL: OpenGL profile requested but WGL_ARB_create_context_profile is unavailable",
	func(*Input) *Message {
		return critical("Your issue stems from using Intel HD2000 integrated graphics, which only supports up to OpenGL 3.1. " +
			"Unfortunately, there are no dedicated Windows 10 drivers available for this graphics card. " +
			"As a result, you will not be easily able to run Minecraft 1.17+, as 21w10a and later require improved graphics capabilities beyond OpenGL 3.1. " +
			"You should still be able to play Minecraft versions 1.16 and earlier.\n" +
			"For more information about this issue and possible solutions, please refer to the following link: " +
			"<https://prismlauncher.org/wiki/getting-started/installing-java/#a-note-about-intel-hd-20003000-on-windows-10>")
	})

func exitCodeAccessViolation(in *Input) *Message {
	if !containsAnyOf(in.Log,
		"Process crashed with exitcode -1073741819 (0xffffffffc0000005).",
		"The instruction at 0x%p referenced memory at 0x%p. The memory could not be %s.",
	) {
		return nil
	}
	return critical("%s", strings.Join([]string{
		"Your game crashed with exitcode `-1073741819`. Here are some possible solutions:",
		"- Check if you have a controller plugged in. If you do, unplug it.",
		"- Reboot your pc.",
		"- Some mods may cause this crash for currently unknown reasons. So far, this has happened with Sodium, SleepBackground, and LazyDFU. " +
			"Try removing these mods/other mods one by one and testing if the game still crashes.",
		"- Make sure you have the latest graphics driver.",
	}, "\n"))
}

var needToLaunchOnline = signature("Failed to find Minecraft main class:",
	func(*Input) *Message {
		return critical("You need to launch your instance online at least once for the launcher to download assets.")
	})

var log4jClassNotFound = signature("Caused by: java.lang.ClassNotFoundException: org.apache.logging.log4j.spi.AbstractLogger",
	func(*Input) *Message {
		return critical("Try deleting the folder `.../MultiMC/libraries/org/apache/logging/log4j` and then launching the instance again.")
	})

// randomForgeCrashes checks two unrelated Forge start-up failures; the
// installer one wins when both appear.
func randomForgeCrashes(in *Input) *Message {
	if strings.Contains(in.Log, "java.lang.RuntimeException: Unable to detect the forge installer!") {
		return critical("Try launching your instance online if you aren't. Also, try using a different version of Forge.")
	}
	if strings.Contains(in.Log, "java.lang.NoClassDefFoundError: cpw/mods/modlauncher/Launcher") {
		return critical("Try restarting the launcher, creating an instance without Forge and then installing Forge on this instance.")
	}
	return nil
}
