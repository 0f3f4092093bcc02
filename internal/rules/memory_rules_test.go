package rules

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryLog(xmx string, tier string, extra ...string) string {
	b := newLog("MultiMC")
	if tier != "" {
		b.mods(tier)
	}
	b.javaArgs(xmx)
	for _, l := range extra {
		b.line(l)
	}
	return b.String()
}

func TestMemoryAllocation_TooLittle(t *testing.T) {
	tests := []struct {
		name     string
		log      string
		severity Severity
		prefix   string
	}{
		{"crash tier needs a crash", memoryLog("[-Xmx1000m]", "", "java.lang.OutOfMemoryError: Java heap space"), Critical, "You have too little RAM"},
		{"crash tier by exit code", memoryLog("[-Xmx1500m]", "", exitCode805306369), Critical, "You have too little RAM"},
		{"likely tier without crash", memoryLog("[-Xmx1000m]", ""), Major, "You likely have too little RAM"},
		{"maybe tier", memoryLog("[-Xmx1500m]", ""), Warning, "You likely have too little RAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := check(memoryAllocation, tt.log)
			require.NotNil(t, msg)
			assert.Equal(t, tt.severity, msg.Severity)
			assert.True(t, strings.HasPrefix(msg.Text, tt.prefix), msg.Text)
		})
	}
}

func TestMemoryAllocation_Shenandoah(t *testing.T) {
	msg := check(memoryAllocation, memoryLog("[-XX:+UseShenandoahGC, -Xmx1000m]", ""))
	require.NotNil(t, msg)
	assert.Equal(t, Warning, msg.Severity, "1000 is only in the shenandoah maybe band")

	msg = check(memoryAllocation, memoryLog("[-XX:+UseShenandoahGC, -Xmx800m]", ""))
	require.NotNil(t, msg)
	assert.Equal(t, Major, msg.Severity)

	assert.Nil(t, check(memoryAllocation, memoryLog("[-XX:+UseShenandoahGC, -Xmx1300m]", "")))
}

func TestMemoryAllocation_TooMuch(t *testing.T) {
	const competitive = "atum-1.1.3.jar"
	tests := []struct {
		mb       int
		severity Severity
		fires    bool
	}{
		{2048, 0, false},
		{3500, 0, false},
		{3501, Warning, true},
		{4800, Warning, true},
		{4801, Major, true},
		{10000, Major, true},
		{10001, Critical, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.mb), func(t *testing.T) {
			msg := check(memoryAllocation, memoryLog(fmt.Sprintf("[-Xmx%dm]", tt.mb), competitive))
			if !tt.fires {
				assert.Nil(t, msg)
				return
			}
			require.NotNil(t, msg)
			assert.Equal(t, tt.severity, msg.Severity)
			assert.Contains(t, msg.Text, "too much RAM")
		})
	}

	assert.Nil(t, check(memoryAllocation, memoryLog("[-Xmx12000m]", "optifine.jar")), "only competitive instances are graded")
}

func TestMemoryAllocation_OutOfMemoryFallback(t *testing.T) {
	log := newLog("MultiMC").line("java.lang.OutOfMemoryError: Java heap space").String()
	msg := check(memoryAllocation, log)
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "too little RAM allocated, or experienced a memory leak")

	// A specific tier replaces the generic fallback.
	msg = check(memoryAllocation, memoryLog("[-Xmx1000m]", "", "java.lang.OutOfMemoryError: Java heap space"))
	require.NotNil(t, msg)
	assert.NotContains(t, msg.Text, "memory leak")
}

func TestMemoryAllocation_CombinesParts(t *testing.T) {
	log := newLog("MultiMC").folder("/Users/me/MultiMC").mods("sodium-1.16.1-v2.jar").javaArgs("[-Xmx1500m]").String()
	msg := check(memoryAllocation, log)
	require.NotNil(t, msg)
	assert.Equal(t, Warning, msg.Severity)

	lines := strings.Split(msg.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "🟡 "))
	assert.True(t, strings.HasPrefix(lines[1], "🔴 "))
	assert.Contains(t, lines[1], "memory leak on MacOS")
}

func TestMemoryAllocation_NoFacts(t *testing.T) {
	assert.Nil(t, check(memoryAllocation, ""))
	assert.Nil(t, check(memoryAllocation, memoryLog("[-Xms512m]", "")))
	assert.Nil(t, check(memoryAllocation, newLog("Prism").folder("C:/prism").mods("sodium-1.16.1-v1.jar").String()))
}
