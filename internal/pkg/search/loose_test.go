package search

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileForTest swaps the POSIX word-start anchor for RE2's \b so the
// pattern can be exercised with the standard regexp package.
func compileForTest(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re2 := strings.Replace(pattern, `\m`, `\b`, 1)
	re, err := regexp.Compile(`(?i)` + re2)
	require.NoError(t, err)
	return re
}

func TestBuildLoosePattern_TShirtVariants(t *testing.T) {
	re := compileForTest(t, BuildLoosePattern("T-Shirt"))

	assert.True(t, re.MatchString("tshirt"))
	assert.True(t, re.MatchString("t shirt"))
	assert.True(t, re.MatchString("t-shirt"))
	assert.True(t, re.MatchString("tshirts"))
	assert.True(t, re.MatchString("t-shirt's"))
	assert.True(t, re.MatchString("TSHIRT"))
}

func TestBuildLoosePattern_WordBoundary(t *testing.T) {
	re := compileForTest(t, BuildLoosePattern("tshirt"))

	// Matches at the leading boundary of a later token.
	assert.True(t, re.MatchString("a tshirt"))
	assert.True(t, re.MatchString("blue t-shirt deluxe"))

	// No match inside a word.
	assert.False(t, re.MatchString("sweatshirt"))
	assert.False(t, re.MatchString("atshirt"))
}

func TestBuildLoosePattern_StripsNoise(t *testing.T) {
	assert.Equal(t, BuildLoosePattern("tshirt"), BuildLoosePattern("t-shirt"))
	assert.Equal(t, BuildLoosePattern("tshirt"), BuildLoosePattern("  t's hirt!  "))
}

func TestBuildLoosePattern_EmptyTermMatchesEverything(t *testing.T) {
	assert.Equal(t, "", BuildLoosePattern(""))
	assert.Equal(t, "", BuildLoosePattern("!!! ---"))

	re, err := regexp.Compile("(?i)" + BuildLoosePattern(""))
	require.NoError(t, err)
	assert.True(t, re.MatchString("anything at all"))
}

func TestBuildLoosePattern_DigitsKept(t *testing.T) {
	re := compileForTest(t, BuildLoosePattern("Air 90"))

	assert.True(t, re.MatchString("air90"))
	assert.True(t, re.MatchString("air 90"))
	assert.False(t, re.MatchString("air 91"))
}
