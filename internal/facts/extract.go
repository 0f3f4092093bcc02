package facts

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// windowsNativesMarker appears in the library list of Windows instances.
	windowsNativesMarker = "-natives-windows.jar"

	// vanillaMainClass is the entry point of an unmodded client.
	vanillaMainClass = "net.minecraft.client.main.Main"
)

var (
	// modLinePattern matches "[✔️] name.jar" and "[✔] free text" mod lines.
	// The first form carries U+FE0F after the check mark.
	modLinePattern = regexp.MustCompile(`\[✔️\]\s+([^\[\]\n]+\.jar)|\[✔\]\s+([^\[\]\n]+)\n`)

	javaVersionPattern         = regexp.MustCompile(`Java is version (\S+),`)
	minecraftVersionPattern    = regexp.MustCompile(`--version (\S+)`)
	fabricLoaderVersionPattern = regexp.MustCompile(`Loading Minecraft \S+ with Fabric Loader (\S+)`)
	maxMemoryPattern           = regexp.MustCompile(`-Xmx(\d+)m`)
)

// lineAfter returns the line that follows the first occurrence of header.
// The following line must be newline-terminated to count.
func lineAfter(log, header string) (string, bool) {
	_, rest, ok := strings.Cut(log, header+"\n")
	if !ok {
		return "", false
	}
	line, _, ok := strings.Cut(rest, "\n")
	if !ok {
		return "", false
	}
	return line, true
}

// Mods returns the mod file names listed in the log, in order of appearance.
// Free-text names have spaces replaced with '+' and ".jar" appended so both
// forms share the file-name convention.
func Mods(log string) []string {
	var mods []string
	for _, m := range modLinePattern.FindAllStringSubmatch(log, -1) {
		if m[1] != "" {
			mods = append(mods, m[1])
			continue
		}
		mods = append(mods, strings.ReplaceAll(m[2], " ", "+")+".jar")
	}
	return mods
}

// JavaVersion returns the version reported by the launcher's Java check,
// such as "19.0.2" or "1.8.0_351".
func JavaVersion(log string) (string, bool) {
	line, ok := lineAfter(log, "Checking Java version...")
	if !ok {
		return "", false
	}
	m := javaVersionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MajorJavaVersion maps a dotted Java version to its major number.
// Legacy "1.x" versions map to x.
func MajorJavaVersion(version string) (int, bool) {
	parts := strings.Split(version, ".")
	part := parts[0]
	if part == "1" {
		if len(parts) < 2 {
			return 0, false
		}
		part = parts[1]
	}
	major, err := strconv.Atoi(part)
	if err != nil {
		return 0, false
	}
	return major, true
}

// MinecraftFolder returns the instance folder path as printed by the launcher.
func MinecraftFolder(log string) (string, bool) {
	line, ok := lineAfter(log, "Minecraft folder is:")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// OperatingSystem infers the OS from the instance folder. Without a folder it
// only recognizes Windows, by its native library jars.
func OperatingSystem(folder *string, log string) (OS, bool) {
	if folder == nil {
		if strings.Contains(log, windowsNativesMarker) {
			return Windows, true
		}
		return "", false
	}
	path := *folder
	if strings.HasPrefix(path, "/") {
		// macOS home volumes are capitalized (/Users), Linux roots are not.
		r, _ := utf8.DecodeRuneInString(path[1:])
		if r != utf8.RuneError && unicode.IsUpper(r) {
			return MacOS, true
		}
		return Linux, true
	}
	return Windows, true
}

// MinecraftVersion returns the --version game argument.
func MinecraftVersion(log string) (string, bool) {
	line, ok := lineAfter(log, "Params:")
	if !ok {
		return "", false
	}
	m := minecraftVersionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FabricLoaderVersion returns the Fabric Loader version from its startup line.
func FabricLoaderVersion(log string) (string, bool) {
	m := fabricLoaderVersionPattern.FindStringSubmatch(log)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DetectLauncher identifies the launcher by the first characters of the log.
func DetectLauncher(log string) (Launcher, bool) {
	for _, l := range launchers {
		if strings.HasPrefix(log, string(l)) {
			return l, true
		}
	}
	return "", false
}

// IsMultiMCFork reports whether l is MultiMC or one of its forks.
func IsMultiMCFork(l Launcher) bool {
	for _, known := range launchers {
		if l == known {
			return true
		}
	}
	return false
}

// DetectModloader derives the modloader from the main class line, falling back
// to the library list for Forge and to the vanilla entry point.
func DetectModloader(log string) (Modloader, bool) {
	mainClass, ok := lineAfter(log, "Main Class:")
	if !ok {
		return "", false
	}
	for _, m := range []Modloader{Quilt, Forge, Fabric} {
		if strings.Contains(mainClass, string(m)) {
			return m, true
		}
	}
	if libs, ok := librariesBlock(log); ok && strings.Contains(libs, string(Forge)) {
		return Forge, true
	}
	if strings.Contains(mainClass, vanillaMainClass) {
		return Vanilla, true
	}
	return "", false
}

// librariesBlock returns the text between "Libraries:" and "Native libraries:".
// Without a closing header the block runs to the end of the log.
func librariesBlock(log string) (string, bool) {
	_, after, ok := strings.Cut(log, "\nLibraries:\n")
	if !ok {
		return "", false
	}
	block, _, _ := strings.Cut(after, "\nNative libraries:\n")
	return block, true
}

// JavaArguments returns the JVM argument line. It may be empty.
func JavaArguments(log string) (string, bool) {
	return lineAfter(log, "Java Arguments:")
}

// MaxMemoryMB returns the -Xmx value, in megabytes, from the JVM arguments.
func MaxMemoryMB(log string) (int, bool) {
	args, ok := JavaArguments(log)
	if !ok {
		return 0, false
	}
	m := maxMemoryPattern.FindStringSubmatch(args)
	if m == nil {
		return 0, false
	}
	mb, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return mb, true
}
