package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskrss/background-pingu/internal/facts"
)

// corpus covers most rules so independence and ordering are checked on
// logs where several rules fire together.
var corpus = []string{
	"",
	"\x00\x01 binary garbage \xff",
	newLog("MultiMC").java("1.8.0_351").folder("/Users/me/MultiMC/OneDrive").
		mainClass("net.minecraft.client.main.Main").
		mods("worldpreview-2.3.jar", "sodium-1.16.1-v1.jar", "SpeedRunIGT-12.0+1.16.1.jar", "phosphor.jar").
		version("1.16.1").javaArgs("[-Xmx1000m]").fabric("1.16.1", "0.14.15").
		line("java.lang.OutOfMemoryError: Java heap space").String(),
	newLog("Prism").java("17.0.6").folder("C:/Program Files/Prism").
		mainClass("net.fabricmc.loader.impl.launch.knot.KnotClient").
		mods("mcsrranked-1.2.2.jar", "fabric-api-0.42.jar", "peepopractice-1.0.jar").
		javaArgs("[-Xmx12000m]").fabric("1.16.1", "0.13.3").
		line(`The Fabric Mod "fabric-api" is not whitelisted!`).
		line("Using system GLFW").line("Failed to locate library: glfw").
		line("me.jellysquid.mods.sodium.client.gui").
		line("Couldn't extract native jar").
		line("Failed to find Minecraft main class:").String(),
	newLog("").mainClass("net.minecraftforge.bootstrap.ForgeBootstrap").
		mods("optifine.jar", "phosphor.jar", "starlight.jar").
		line("java.lang.UnsupportedClassVersionError: class file version 61.0").
		line("A fatal error has been detected by the Java Runtime Environment").
		line("java.lang.RuntimeException: Unable to detect the forge installer!").
		line("Exception loading blockstate definition").String(),
	newLog("MultiMC").mods("autoreset-1.2.0+MC1.16.1.jar").
		line("Instance update failed because: Failed to download the assets index:").
		line("java.lang.RuntimeException: Invalid id 4096 - maximum id range exceeded.").
		line("java.lang.IllegalStateException: GLFW error before init: [0x10008]Cocoa: Failed to find service port for display").
		line("org.lwjgl.LWJGLException: Pixel format not accelerated").
		line("java.lang.RuntimeException: Shaders Mod detected. Please remove it, OptiFine has built-in support for shaders.").
		line("GLFW error 65543: WGL: OpenGL profile requested but WGL_ARB_create_context_profile is unavailable").
		line("Process crashed with exitcode -1073741819 (0xffffffffc0000005).").
		line("Caused by: java.lang.ClassNotFoundException: org.apache.logging.log4j.spi.AbstractLogger").
		line("java.io.IOException: Directory 'C:/x/.minecraft' could not be created").
		line("Mod 'x' (x) requires any version of fabric, which is missing!").
		line("This instance is not compatible with Java version 8.").
		line("Please switch to one of the following Java versions for this instance:").
		line("Java version 17").String(),
}

func TestDefaultRegistryShape(t *testing.T) {
	r := Default()
	require.Equal(t, 38, r.Len())

	names := r.Names()
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate rule name %s", n)
		seen[n] = true
	}
	assert.Equal(t, "not-using-fabric", names[0])
	assert.Equal(t, "forge-installer", names[len(names)-1])

	_, err := NewRegistry(defaultRules...)
	require.NoError(t, err)
}

func TestNewRegistryRejectsBadRules(t *testing.T) {
	noop := func(*Input) *Message { return nil }

	_, err := NewRegistry(Rule{"a", noop}, Rule{"a", noop})
	require.Error(t, err)

	_, err = NewRegistry(Rule{Name: "missing-check"})
	require.Error(t, err)

	_, err = NewRegistry(Rule{Check: noop})
	require.Error(t, err)
}

func TestEvaluate_NothingRecognized(t *testing.T) {
	for _, log := range []string{"", "hello world\n", "\xff\xfe\x00", strings.Repeat("line\n", 10000)} {
		msgs := Default().Evaluate(newInput(log))
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	}
}

func TestEvaluate_OrderIsRegistryOrderAndStable(t *testing.T) {
	reg := Default()
	position := map[string]int{}
	for i, n := range reg.Names() {
		position[n] = i
	}

	for _, log := range corpus {
		first := reg.Results(newInput(log))
		for i := 1; i < len(first); i++ {
			assert.Less(t, position[first[i-1].Rule], position[first[i].Rule])
		}
		for run := 0; run < 3; run++ {
			assert.Equal(t, first, reg.Results(newInput(log)))
		}
	}
}

func TestEvaluate_RulesAreIndependent(t *testing.T) {
	full := Default()
	for _, log := range corpus {
		in := newInput(log)
		all := full.Results(in)
		for _, name := range full.Names() {
			var expected []Result
			for _, r := range all {
				if r.Rule != name {
					expected = append(expected, r)
				}
			}
			assert.Equal(t, expected, full.Without(name).Results(in), "removing %s changed other rules", name)
		}
	}
}

func TestEvaluate_CorpusFiresKnownRules(t *testing.T) {
	var fired []string
	for _, log := range corpus {
		for _, r := range Default().Results(newInput(log)) {
			fired = append(fired, r.Rule)
		}
	}

	// Each of these has a signature line or mod in the corpus that triggers it.
	want := []string{
		"jvm-fatal-error", "system-glfw-openal", "native-jar-locked", "outdated-ranked",
		"launch-online", "forge-installer",
		"assets-download", "id-range", "m1-service-port", "pixel-format", "shadermod-optifine",
		"intel-hd-graphics", "exitcode-1073741819", "log4j-missing", "launch-as-admin",
		"need-fabric-api", "autoreset", "java-compatibility-check",
	}
	assert.Subset(t, fired, want)
}

func TestEvaluate_PanickingRuleIsDropped(t *testing.T) {
	reg, err := NewRegistry(
		Rule{"before", func(*Input) *Message { return info("before") }},
		Rule{"boom", func(*Input) *Message { panic("boom") }},
		Rule{"after", func(*Input) *Message { return info("after") }},
	)
	require.NoError(t, err)

	msgs := reg.Evaluate(newInput(""))
	require.Len(t, msgs, 2)
	assert.Equal(t, "before", msgs[0].Text)
	assert.Equal(t, "after", msgs[1].Text)
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "🔴 x", critical("x").String())
	assert.Equal(t, "🟠 x", major("x").String())
	assert.Equal(t, "🟡 x", warning("x").String())
	assert.Equal(t, "🟢 x", info("x").String())
	assert.Equal(t, "critical", Critical.String())
}

func TestCombine(t *testing.T) {
	assert.Nil(t, combine(nil))

	m := combine([]*Message{warning("low"), critical("leak")})
	assert.Equal(t, Warning, m.Severity)
	assert.Equal(t, "🟡 low\n🔴 leak", m.String())
}

func TestScenario_VanillaJava8(t *testing.T) {
	log := newLog("MultiMC").java("1.8.0_351").mainClass("net.minecraft.client.main.Main").String()
	in := newInput(log)

	require.NotNil(t, in.Facts.Modloader)
	assert.Equal(t, facts.Vanilla, *in.Facts.Modloader)
	assert.Equal(t, facts.NoMods, in.Facts.ModsTier)
	require.NotNil(t, in.Facts.MajorJavaVersion)
	assert.Equal(t, 8, *in.Facts.MajorJavaVersion)

	got := results(t, log)
	assert.NotContains(t, got, "java-requirements")
	assert.NotContains(t, got, "not-using-fabric")
}

func TestScenario_MacOSSodiumLeak(t *testing.T) {
	log := newLog("Prism").folder("/Users/me/Library/Application Support/PrismLauncher/instances/a/.minecraft").
		mods("sodium-1.16.1-v1.jar", "sodium-1.16.1-v1.jar").String()

	got := results(t, log)
	require.Contains(t, got, "memory-allocation")
	assert.Equal(t, Critical, got["memory-allocation"].Severity)
	assert.Contains(t, got["memory-allocation"].Text, "memory leak on MacOS")
}

func TestScenario_OutdatedLoaderWithSpeedRunIGT(t *testing.T) {
	// The SpeedRunIGT incompatibility only applies to loaders above 0.14.14,
	// so on 0.14.10 the old SpeedRunIGT is reported through the loader rule alone.
	log := newLog("MultiMC").fabric("1.16.1", "0.14.10").line("[✔] SpeedRunIGT 13.0").String()

	got := results(t, log)
	require.Contains(t, got, "outdated-fabric-loader")
	assert.Equal(t, Warning, got["outdated-fabric-loader"].Severity)

	// On a loader past the compatibility boundary both rules fire, in order.
	log = newLog("MultiMC").fabric("1.16.1", "0.14.15").line("[✔] SpeedRunIGT 13.0").String()
	res := Default().Results(newInput(log))
	var names []string
	for _, r := range res {
		names = append(names, r.Rule)
	}
	assert.Equal(t, []string{"srigt-loader-incompatibility", "outdated-fabric-loader"}, names)
}

func TestScenario_TooMuchRAMMiddleBand(t *testing.T) {
	log := newLog("MultiMC").mods("atum-1.1.3.jar").javaArgs("[-Xms512m, -Xmx6000m]").String()

	got := results(t, log)
	require.Contains(t, got, "memory-allocation")
	msg := got["memory-allocation"]
	assert.Equal(t, Major, msg.Severity)
	assert.True(t, strings.HasPrefix(msg.Text, "You have too much RAM allocated"))
	assert.NotContains(t, msg.Text, "\n", "only one memory tier applies")
}
