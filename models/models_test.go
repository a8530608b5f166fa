package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLimit(t *testing.T) {
	t.Run("zero means unlimited", func(t *testing.T) {
		l := NewLimit(0)
		_, bounded := l.Bounded()
		assert.False(t, bounded)
		assert.False(t, l.Reached(1000000))
		assert.Equal(t, -1, l.Remaining(5))
	})

	t.Run("negative means unlimited", func(t *testing.T) {
		l := NewLimit(-3)
		_, bounded := l.Bounded()
		assert.False(t, bounded)
	})

	t.Run("positive is a hard ceiling", func(t *testing.T) {
		l := NewLimit(3)
		n, bounded := l.Bounded()
		assert.True(t, bounded)
		assert.Equal(t, 3, n)

		assert.False(t, l.Reached(2))
		assert.True(t, l.Reached(3))
		assert.True(t, l.Reached(4))

		assert.Equal(t, 1, l.Remaining(2))
		assert.Equal(t, 0, l.Remaining(3))
		assert.Equal(t, 0, l.Remaining(7))
	})
}

func TestArticleDraftWordCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \t\n ", 0},
		{"single word", "hello", 1},
		{"mixed whitespace", "one  two\tthree\nfour", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ArticleDraft{Content: tt.content}
			assert.Equal(t, tt.want, a.WordCount())
		})
	}
}

func TestActionValid(t *testing.T) {
	for _, action := range KnownActions {
		assert.True(t, action.Valid(), string(action))
	}
	assert.False(t, Action("delete_site").Valid())
	assert.False(t, Action("").Valid())
}

func TestQuotaLimitsAccessors(t *testing.T) {
	q := QuotaLimits{DailyArticles: 5, MonthlyArticles: 0}

	daily, bounded := q.Daily().Bounded()
	assert.True(t, bounded)
	assert.Equal(t, 5, daily)

	_, bounded = q.Monthly().Bounded()
	assert.False(t, bounded)
}

func TestAgentIsActive(t *testing.T) {
	agent := NewAgent("writer-01", nil)
	assert.True(t, agent.IsActive())

	agent.Status = AgentStatusLocked
	assert.False(t, agent.IsActive())
}
