package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkKillSurge          BookmarkType = "kill_surge"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkFoodShortage       BookmarkType = "food_shortage"
	BookmarkStableEcology      BookmarkType = "stable_ecology"
)

// Bookmark marks a window worth looking at later.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        uint64       `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// stableWindows is how many consecutive calm windows make a stable ecology.
const stableWindows = 5

// BookmarkDetector watches window stats for notable population swings.
type BookmarkDetector struct {
	history     []WindowStats // ring buffer
	historyIdx  int
	historyFull bool

	recentBlobMin  int
	recentBlobPeak int
	stableCount    int
}

// NewBookmarkDetector creates a detector remembering historySize windows.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	historySize = max(historySize, 5)
	return &BookmarkDetector{
		history:       make([]WindowStats, historySize),
		recentBlobMin: -1,
	}
}

// Check compares a window against recent history and returns the bookmarks it triggers.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	if len(bd.window()) > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkKillSurge,
			bd.checkPopulationCrash,
			bd.checkPopulationRecovery,
			bd.checkFoodShortage,
			bd.checkStableEcology,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}

	if bd.recentBlobMin < 0 || stats.Blobs < bd.recentBlobMin {
		bd.recentBlobMin = stats.Blobs
	}
	bd.recentBlobPeak = max(bd.recentBlobPeak, stats.Blobs)
	return bookmarks
}

// window returns the remembered windows, oldest first.
func (bd *BookmarkDetector) window() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, len(bd.history))
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkKillSurge(stats WindowStats) *Bookmark {
	history := bd.window()
	if len(history) < 3 {
		return nil
	}
	kills := make([]float64, len(history))
	for i, h := range history {
		kills[i] = float64(h.Kills + h.Swallows)
	}
	avg := stat.Mean(kills, nil)
	current := float64(stats.Kills + stats.Swallows)
	if avg > 0 && current > 2*avg && current >= 3 {
		return &Bookmark{
			Type:        BookmarkKillSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%.0f kills is %.1fx the recent average (%.1f)", current, current/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentBlobPeak == 0 {
		return nil
	}
	drop := 1 - float64(stats.Blobs)/float64(bd.recentBlobPeak)
	if drop > 0.30 && stats.Blobs < bd.recentBlobPeak-10 {
		peak := bd.recentBlobPeak
		bd.recentBlobPeak = stats.Blobs
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Blobs fell %.0f%% from peak %d to %d", drop*100, peak, stats.Blobs),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationRecovery(stats WindowStats) *Bookmark {
	if bd.recentBlobMin < 0 || bd.recentBlobMin > 3 {
		return nil
	}
	if stats.Blobs >= 6 && stats.Blobs >= 3*bd.recentBlobMin {
		low := bd.recentBlobMin
		bd.recentBlobMin = stats.Blobs
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Blobs recovered from %d to %d", low, stats.Blobs),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFoodShortage(stats WindowStats) *Bookmark {
	history := bd.window()
	if len(history) < 3 || stats.Blobs == 0 {
		return nil
	}
	food := make([]float64, len(history))
	for i, h := range history {
		food[i] = float64(h.Food)
	}
	avg := stat.Mean(food, nil)
	prev := history[len(history)-1].Food
	// Fires on the first window below the threshold only.
	if avg >= 20 && float64(stats.Food) < 0.25*avg && float64(prev) >= 0.25*avg {
		return &Bookmark{
			Type:        BookmarkFoodShortage,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Food down to %d against a recent average of %.0f", stats.Food, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcology(stats WindowStats) *Bookmark {
	if stats.Blobs < 10 || stats.Food < 10 {
		bd.stableCount = 0
		return nil
	}
	history := bd.window()
	if len(history) < 4 {
		return nil
	}
	recent := history[len(history)-4:]
	blobs := make([]float64, len(recent))
	food := make([]float64, len(recent))
	for i, h := range recent {
		blobs[i] = float64(h.Blobs)
		food[i] = float64(h.Food)
	}

	if coefficientOfVariation(blobs) < 0.2 && coefficientOfVariation(food) < 0.2 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}
	if bd.stableCount == stableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcology,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable with %d blobs and %d food over %d windows", stats.Blobs, stats.Food, stableWindows),
		}
	}
	return nil
}

func coefficientOfVariation(xs []float64) float64 {
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
