package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(0, 10)
	assert.True(t, strings.HasPrefix(bar, strings.Repeat("░", 10)))
	assert.Contains(t, bar, "0%")

	bar = ProgressBar(100, 10)
	assert.True(t, strings.HasPrefix(bar, strings.Repeat("█", 10)))
	assert.Contains(t, bar, "100%")

	bar = ProgressBar(50, 10)
	assert.Contains(t, bar, "50%")
	assert.Equal(t, 5, strings.Count(bar, "█"))
}

func TestProgressBarClamps(t *testing.T) {
	assert.Contains(t, ProgressBar(-20, 10), "0%")
	assert.Contains(t, ProgressBar(250, 10), "100%")
}
