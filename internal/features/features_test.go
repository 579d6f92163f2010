package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestLength(t *testing.T) {
	assert.Len(t, FeatureNames, 95)
}

func TestManifestHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool, len(FeatureNames))
	for _, name := range FeatureNames {
		assert.False(t, seen[name], "duplicate feature %q", name)
		seen[name] = true
	}
}

func TestExtractCoversManifest(t *testing.T) {
	for _, raw := range []string{
		"https://google.com/",
		"http://paypa1.com/wallet?id=1",
		"https://user@192.168.1.1:8080/a//b",
		"bit.ly/abc",
	} {
		feats := Extract(raw)
		for _, name := range FeatureNames {
			_, ok := feats[name]
			require.True(t, ok, "url %q missing feature %q", raw, name)
		}
	}
}

func TestExtractStructuralFlags(t *testing.T) {
	f := Extract("https://google.com/search?q=x")
	assert.Equal(t, 1.0, f["is_https"])
	assert.Equal(t, 0.0, f["has_ip_address"])
	assert.Equal(t, 0.0, f["has_at_symbol"])
	assert.Equal(t, 1.0, f["tld_is_com"])

	f = Extract("http://user@10.0.0.1/x")
	assert.Equal(t, 0.0, f["is_https"])
	assert.Equal(t, 1.0, f["has_ip_address"])
	assert.Equal(t, 1.0, f["has_at_symbol"])
}

func TestExtractShortener(t *testing.T) {
	f := Extract("https://bit.ly/abc123")
	assert.Equal(t, 1.0, f["is_url_shortener"])

	f = Extract("https://example.com/abc123")
	assert.Equal(t, 0.0, f["is_url_shortener"])
}

func TestEntropy(t *testing.T) {
	assert.Zero(t, Entropy(""))
	assert.Zero(t, Entropy("aaaa"))
	// Two symbols, equal frequency: exactly one bit per rune.
	assert.InDelta(t, 1.0, Entropy("abab"), 1e-9)
	assert.InDelta(t, 2.0, Entropy("abcd"), 1e-9)
	assert.True(t, Entropy("x9k2q7vz") > Entropy("aaaaaaab"))
}

func TestBigramScore(t *testing.T) {
	// Common English text scores high, keyboard mash scores low.
	common := BigramScore("theandhouse")
	random := BigramScore("xqzkvjwq")
	assert.Greater(t, common, random)
	assert.True(t, common >= 0 && common <= 1)
	assert.True(t, random >= 0 && random <= 1)
}

func TestExtractRatiosBounded(t *testing.T) {
	f := Extract("https://a1b2c3.example.com/p?q=%2F%2E")
	for _, name := range []string{"digit_ratio", "letter_ratio", "special_char_ratio"} {
		v := f[name]
		assert.False(t, math.IsNaN(v), name)
		assert.True(t, v >= 0 && v <= 1, "%s = %v", name, v)
	}
}

func TestExtractPunycode(t *testing.T) {
	f := Extract("https://xn--pple-43d.com/")
	assert.Equal(t, 1.0, f["has_punycode"])
}
