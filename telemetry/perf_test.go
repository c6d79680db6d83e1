package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBroadPhase)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseResolve)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseBroadPhase] <= 0 {
		t.Error("expected broad_phase to be tracked")
	}
	if stats.PhaseAvg[PhaseResolve] <= 0 {
		t.Error("expected resolve to be tracked")
	}
	if stats.PhaseAvg[PhaseSpawn] != 0 {
		t.Error("untouched phase should stay zero")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMotion)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseCommands)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseNarrowPhase)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fast := stats.PhasePct[PhaseCommands]
	slow := stats.PhasePct[PhaseNarrowPhase]
	if slow <= fast {
		t.Errorf("expected narrow_phase (%v%%) > commands (%v%%)", slow, fast)
	}
	if slow > 100.0001 {
		t.Errorf("phase percentage %v exceeds 100", slow)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.TicksPerSecond != 0 {
		t.Error("expected zero throughput for empty collector")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 80 {
		t.Errorf("expected FPS in (0, 80] with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPhaseNames(t *testing.T) {
	seen := make(map[string]bool)
	for ph := Phase(0); ph < NumPhases; ph++ {
		name := ph.String()
		if name == "" || name == "unknown" || seen[name] {
			t.Errorf("phase %d has bad or duplicate name %q", ph, name)
		}
		seen[name] = true
	}
	if NumPhases.String() != "unknown" {
		t.Error("out of range phase should be unknown")
	}
}
