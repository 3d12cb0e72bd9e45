package search_test

import (
	"testing"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
)

func TestLimitsBudgetInfinite(t *testing.T) {
	l := search.Limits{Infinite: true, WhiteTime: time.Minute}
	_, _, ok := l.Budget(board.White)
	assert.False(t, ok)
}

func TestLimitsBudgetNoClock(t *testing.T) {
	l := search.Limits{Depth: lang.Some(uint(10))}
	_, _, ok := l.Budget(board.White)
	assert.False(t, ok)
}

func TestLimitsBudgetMoveTime(t *testing.T) {
	l := search.Limits{MoveTime: lang.Some(500 * time.Millisecond)}
	soft, hard, ok := l.Budget(board.White)
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, soft)
	assert.Equal(t, 500*time.Millisecond, hard)
}

func TestLimitsBudgetClock(t *testing.T) {
	l := search.Limits{WhiteTime: 60 * time.Second, WhiteInc: time.Second, MovesToGo: 20}
	soft, hard, ok := l.Budget(board.White)
	assert.True(t, ok)
	assert.Greater(t, soft, time.Duration(0))
	assert.Greater(t, hard, soft)
	assert.Less(t, hard, l.WhiteTime)
}

func TestLimitsBudgetPicksSideToMove(t *testing.T) {
	l := search.Limits{WhiteTime: 60 * time.Second, BlackTime: 10 * time.Second}
	wSoft, _, _ := l.Budget(board.White)
	bSoft, _, _ := l.Budget(board.Black)
	assert.Greater(t, wSoft, bSoft)
}

func TestLimitsBudgetLowTimeNeverNegative(t *testing.T) {
	l := search.Limits{WhiteTime: 10 * time.Millisecond}
	soft, hard, ok := l.Budget(board.White)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, soft, time.Duration(0))
	assert.GreaterOrEqual(t, hard, time.Duration(0))
	assert.GreaterOrEqual(t, hard, soft)
}
