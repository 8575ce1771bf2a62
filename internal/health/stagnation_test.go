package health

import (
	"testing"
	"time"
)

func TestStagnationEscalation(t *testing.T) {
	m := NewStagnationMonitor(3*time.Minute, 10*time.Minute)
	start := time.Now()

	if got := m.Observe(100, start); got != ActionNone {
		t.Fatalf("first observation should seed, got %v", got)
	}
	if got := m.Observe(100, start.Add(2*time.Minute)); got != ActionNone {
		t.Errorf("inside grace period, got %v", got)
	}
	if got := m.Observe(100, start.Add(4*time.Minute)); got != ActionRetry {
		t.Errorf("past retry threshold, got %v", got)
	}
	if got := m.Observe(100, start.Add(6*time.Minute)); got != ActionNone {
		t.Errorf("only one retry per episode, got %v", got)
	}
	if got := m.Observe(100, start.Add(11*time.Minute)); got != ActionAbandon {
		t.Errorf("past abandon threshold, got %v", got)
	}
}

func TestStagnationLevelGainResets(t *testing.T) {
	m := NewStagnationMonitor(3*time.Minute, 10*time.Minute)
	start := time.Now()

	m.Observe(100, start)
	if got := m.Observe(100, start.Add(5*time.Minute)); got != ActionRetry {
		t.Fatalf("expected retry, got %v", got)
	}

	// A level gain starts a fresh episode with a fresh retry budget.
	if got := m.Observe(101, start.Add(6*time.Minute)); got != ActionNone {
		t.Errorf("level gain should reset, got %v", got)
	}
	if got := m.Observe(101, start.Add(10*time.Minute)); got != ActionRetry {
		t.Errorf("new episode should allow another retry, got %v", got)
	}
}

func TestStagnationResetForgetsBaseline(t *testing.T) {
	m := NewStagnationMonitor(3*time.Minute, 10*time.Minute)
	start := time.Now()

	m.Observe(100, start)
	m.Reset()

	if got := m.Observe(100, start.Add(20*time.Minute)); got != ActionNone {
		t.Errorf("after Reset the first observation seeds again, got %v", got)
	}
}
