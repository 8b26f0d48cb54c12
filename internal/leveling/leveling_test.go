package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		total int64
		want  int
	}{
		{total: 0, want: 1},
		{total: 199, want: 1},
		{total: 200, want: 2},
		{total: 499, want: 2},
		{total: 500, want: 3},
		{total: 899, want: 3},
		{total: 900, want: 4},
		{total: 1250, want: 4},
		{total: 1400, want: 5},
		{total: -10, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, For(tt.total), "For(%d)", tt.total)
	}
}

func TestThresholdMatchesFor(t *testing.T) {
	for lvl := 1; lvl <= 30; lvl++ {
		th := Threshold(lvl)
		assert.Equal(t, lvl, For(th), "level at threshold %d", th)
		if th > 0 {
			assert.Equal(t, lvl-1, For(th-1), "level just below threshold %d", th)
		}
	}
}

func TestExperienceForNextLevel(t *testing.T) {
	assert.Equal(t, int64(200), ExperienceForNextLevel(1))
	assert.Equal(t, int64(300), ExperienceForNextLevel(2))
	assert.Equal(t, Threshold(5)-Threshold(4), ExperienceForNextLevel(4))
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(215)

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, int64(500), p.NextLevelAt)
	assert.Equal(t, int64(285), p.ToNextLevel)
}
