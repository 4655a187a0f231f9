package tools

import (
	"testing"
	"time"
)

func TestHealthSuppressionAfterThreshold(t *testing.T) {
	m := NewHealthMonitor(time.Minute, 2, 10*time.Minute)

	m.RecordFailure("flaky")
	if m.Suppressed("flaky") {
		t.Fatal("suppressed below threshold")
	}
	m.RecordFailure("flaky")
	if !m.Suppressed("flaky") {
		t.Fatal("not suppressed at threshold")
	}
	if !m.SuppressedSet()["flaky"] {
		t.Fatal("suppressed set missing tool")
	}
}

func TestHealthSuccessClearsPressure(t *testing.T) {
	m := NewHealthMonitor(time.Minute, 2, 10*time.Minute)
	m.RecordFailure("flaky")
	m.RecordFailure("flaky")
	m.RecordSuccess("flaky")
	if m.Suppressed("flaky") {
		t.Fatal("success did not clear suppression")
	}
	m.RecordFailure("flaky")
	if m.Suppressed("flaky") {
		t.Fatal("old failures counted after success")
	}
}

func TestHealthSuppressionExpires(t *testing.T) {
	m := NewHealthMonitor(time.Minute, 2, 10*time.Minute)
	current := time.Now()
	m.now = func() time.Time { return current }

	m.RecordFailure("flaky")
	m.RecordFailure("flaky")
	if !m.Suppressed("flaky") {
		t.Fatal("not suppressed")
	}

	current = current.Add(11 * time.Minute)
	if m.Suppressed("flaky") {
		t.Fatal("suppression did not expire")
	}
}

func TestHealthWindowDropsStaleFailures(t *testing.T) {
	m := NewHealthMonitor(time.Minute, 2, 10*time.Minute)
	current := time.Now()
	m.now = func() time.Time { return current }

	m.RecordFailure("flaky")
	current = current.Add(2 * time.Minute)
	m.RecordFailure("flaky")
	if m.Suppressed("flaky") {
		t.Fatal("stale failure counted toward threshold")
	}
}
