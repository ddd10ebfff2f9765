package progression

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

const (
	// levelTableSize is how many level thresholds are precomputed at startup (~4e11 EXP).
	levelTableSize = 10_000
	// MaxLevel is the top of the curve (~4.5e16 EXP); the table grows on demand up to it.
	MaxLevel = 1 << 20
)

// levelCurve holds cumulative thresholds: thresholds[i] is the minimum EXP of level i+1.
// Published slices are never mutated, readers load them without locking.
type levelCurve struct {
	thresholds atomic.Pointer[[]float64]
	growMu     sync.Mutex
}

var curve = newLevelCurve(levelTableSize)

func newLevelCurve(size int) *levelCurve {
	c := &levelCurve{}
	thresholds := extendThresholds(nil, size)
	c.thresholds.Store(&thresholds)
	return c
}

// LevelInfo describes where a cumulative EXP amount sits on the level curve.
// Invariant: 0 <= ExpIntoLevel < ExpRequiredForNext.
type LevelInfo struct {
	Level              int     `json:"level"`
	ExpIntoLevel       float64 `json:"expIntoLevel"`
	ExpRequiredForNext float64 `json:"expRequiredForNext"`
}

// ExpToAdvance returns the EXP needed to go from level to level+1: floor(100 * level^1.5).
func ExpToAdvance(level int) float64 {
	return math.Floor(100 * math.Pow(float64(level), 1.5))
}

func extendThresholds(prev []float64, size int) []float64 {
	thresholds := make([]float64, size)
	copy(thresholds, prev)
	for i := max(len(prev), 1); i < size; i++ {
		thresholds[i] = thresholds[i-1] + ExpToAdvance(i)
	}
	return thresholds
}

func (c *levelCurve) load() []float64 {
	return *c.thresholds.Load()
}

// covering returns a table that contains level size, or whose last threshold exceeds exp.
// The table doubles until either holds, capped at MaxLevel+1 entries.
func (c *levelCurve) covering(size int, exp float64) []float64 {
	covered := func(t []float64) bool {
		return (len(t) >= size && t[len(t)-1] > exp) || len(t) > MaxLevel
	}
	if t := c.load(); covered(t) {
		return t
	}

	c.growMu.Lock()
	defer c.growMu.Unlock()
	t := c.load()
	for !covered(t) {
		t = extendThresholds(t, min(2*len(t), MaxLevel+1))
	}
	c.thresholds.Store(&t)
	return t
}

// MinExpForLevel returns the smallest cumulative EXP that yields the given level,
// +Inf past MaxLevel.
func MinExpForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		return math.Inf(1)
	}
	return curve.covering(level, math.Inf(-1))[level-1]
}

// LevelFor maps cumulative EXP to a level. EXP exactly at a threshold belongs to the higher level.
func LevelFor(exp float64) (LevelInfo, error) {
	if exp < 0 || math.IsNaN(exp) || math.IsInf(exp, 0) {
		return LevelInfo{}, newValidationError("exp", "must be a finite non-negative number, got %v", exp)
	}

	thresholds := curve.covering(0, exp)
	last := len(thresholds) - 1
	if exp >= thresholds[last] {
		return LevelInfo{}, newValidationError("exp", "%v is past the top of the level curve (level %d)", exp, MaxLevel)
	}

	// first threshold strictly above exp, the level is its index
	level := sort.Search(len(thresholds), func(i int) bool {
		return thresholds[i] > exp
	})
	return LevelInfo{
		Level:        level,
		ExpIntoLevel: exp - thresholds[level-1],
		// the threshold difference equals ExpToAdvance while sums are exact, and keeps
		// ExpIntoLevel below it once float rounding kicks in
		ExpRequiredForNext: thresholds[level] - thresholds[level-1],
	}, nil
}
