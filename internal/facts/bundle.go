// Package facts derives structured facts from raw launcher log text.
//
// Every extractor is an independent pure function over the log. A pattern
// that does not match yields "unknown" (ok == false or a nil pointer), never a
// default guess, and no extractor relies on another one having succeeded.
package facts

import "github.com/mskrss/background-pingu/internal/catalog"

// OS is the operating system the game ran on.
type OS string

const (
	Windows OS = "Windows"
	MacOS   OS = "MacOS"
	Linux   OS = "Linux"
)

// Launcher is the MultiMC-family application that wrote the log.
type Launcher string

const (
	MultiMC Launcher = "MultiMC"
	Prism   Launcher = "Prism"
	PolyMC  Launcher = "PolyMC"
	ManyMC  Launcher = "ManyMC"
	UltimMC Launcher = "UltimMC"
)

// launchers is ordered; the first prefix that matches wins.
var launchers = []Launcher{MultiMC, Prism, PolyMC, ManyMC, UltimMC}

// Modloader is the mod-loading framework of the instance.
type Modloader string

const (
	Quilt   Modloader = "quilt"
	Forge   Modloader = "forge"
	Fabric  Modloader = "fabric"
	Vanilla Modloader = "vanilla"
)

// Bundle is the set of facts extracted from one log. It is built once by
// Extract and must be treated as read-only afterwards.
type Bundle struct {
	Mods     []string
	ModsTier ModsTier

	JavaVersion         *string
	MajorJavaVersion    *int
	MinecraftFolder     *string
	OS                  *OS
	MinecraftVersion    *string
	FabricLoaderVersion *string
	Launcher            *Launcher
	IsMultiMCFork       bool
	Modloader           *Modloader
	JavaArguments       *string
	MaxMemoryMB         *int
}

// Extract runs every extractor over log. The log must not contain carriage
// returns; callers normalize line endings first.
func Extract(log string, cat *catalog.Catalog) *Bundle {
	b := &Bundle{}

	b.Mods = Mods(log)
	b.ModsTier = ClassifyMods(b.Mods, cat)

	if v, ok := JavaVersion(log); ok {
		b.JavaVersion = &v
		if major, ok := MajorJavaVersion(v); ok {
			b.MajorJavaVersion = &major
		}
	}
	if folder, ok := MinecraftFolder(log); ok {
		b.MinecraftFolder = &folder
	}
	if sys, ok := OperatingSystem(b.MinecraftFolder, log); ok {
		b.OS = &sys
	}
	if v, ok := MinecraftVersion(log); ok {
		b.MinecraftVersion = &v
	}
	if v, ok := FabricLoaderVersion(log); ok {
		b.FabricLoaderVersion = &v
	}
	if l, ok := DetectLauncher(log); ok {
		b.Launcher = &l
	}
	b.IsMultiMCFork = b.Launcher != nil && IsMultiMCFork(*b.Launcher)
	if m, ok := DetectModloader(log); ok {
		b.Modloader = &m
	}
	if args, ok := JavaArguments(log); ok {
		b.JavaArguments = &args
	}
	if mb, ok := MaxMemoryMB(log); ok {
		b.MaxMemoryMB = &mb
	}
	return b
}

// Str returns the value of an optional string, or "" when it is unknown.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// LauncherIs reports whether the detected launcher is l.
func (b *Bundle) LauncherIs(l Launcher) bool {
	return b.Launcher != nil && *b.Launcher == l
}

// OSIs reports whether the detected operating system is sys.
func (b *Bundle) OSIs(sys OS) bool {
	return b.OS != nil && *b.OS == sys
}

// ModloaderIs reports whether the detected modloader is m.
func (b *Bundle) ModloaderIs(m Modloader) bool {
	return b.Modloader != nil && *b.Modloader == m
}

// LauncherName returns the launcher name, or fallback when it is unknown.
func (b *Bundle) LauncherName(fallback string) string {
	if b.Launcher == nil {
		return fallback
	}
	return string(*b.Launcher)
}

// HasMod reports whether the mod list contains exactly the file name.
func (b *Bundle) HasMod(name string) bool {
	for _, m := range b.Mods {
		if m == name {
			return true
		}
	}
	return false
}

// HasModContaining reports whether any mod file name contains fragment.
func (b *Bundle) HasModContaining(fragment string) bool {
	return catalog.AnyContains(b.Mods, fragment)
}
