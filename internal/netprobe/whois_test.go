package netprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWhoisDate(t *testing.T) {
	for _, s := range []string{
		"1997-09-15T04:00:00Z",
		"1997-09-15 04:00:00",
		"1997-09-15",
		"15-Sep-1997",
		"1997.09.15",
	} {
		got := parseWhoisDate(s)
		assert.False(t, got.IsZero(), s)
		assert.Equal(t, 1997, got.Year(), s)
	}

	assert.True(t, parseWhoisDate("").IsZero())
	assert.True(t, parseWhoisDate("not a date").IsZero())
	assert.True(t, parseWhoisDate("  ").IsZero())
}
