package jobs

import (
	"errors"
	"testing"
	"time"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunnerSingleFlight(t *testing.T) {
	r := NewRunner()

	release := make(chan struct{})
	started := make(chan struct{})

	id, err := r.Start("importar", func(report func(current, total int)) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == "" {
		t.Error("expected a job ID")
	}
	<-started

	if !r.Busy() {
		t.Error("Busy() = false while a job is running")
	}

	// A second job must be rejected while the first is in flight.
	if _, err := r.Start("exportar", func(func(int, int)) (any, error) { return nil, nil }); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start = %v, want ErrBusy", err)
	}

	close(release)
	waitUntil(t, func() bool { return !r.Busy() })

	// Once idle, a new job is admitted again.
	done := make(chan struct{})
	if _, err := r.Start("exportar", func(func(int, int)) (any, error) {
		close(done)
		return nil, nil
	}); err != nil {
		t.Fatalf("Start after completion failed: %v", err)
	}
	<-done
}

func TestRunnerProgressAndResult(t *testing.T) {
	r := NewRunner()

	step := make(chan struct{})
	if _, err := r.Start("importar", func(report func(current, total int)) (any, error) {
		for i := 1; i <= 3; i++ {
			report(i, 3)
			step <- struct{}{}
		}
		return "hecho", nil
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		<-step
		snap := r.Snapshot()
		if snap.Current != i || snap.Total != 3 {
			t.Errorf("snapshot after step %d = (%d, %d), want (%d, 3)", i, snap.Current, snap.Total, i)
		}
		if !snap.Running {
			t.Errorf("snapshot after step %d reports not running", i)
		}
	}

	waitUntil(t, func() bool { return r.Snapshot().Done })

	snap := r.Snapshot()
	if snap.Running {
		t.Error("finished job still reports running")
	}
	if snap.Result != "hecho" {
		t.Errorf("Result = %v, want %q", snap.Result, "hecho")
	}
	if snap.Error != "" {
		t.Errorf("Error = %q, want empty", snap.Error)
	}
}

func TestRunnerCapturesError(t *testing.T) {
	r := NewRunner()

	if _, err := r.Start("exportar", func(func(int, int)) (any, error) {
		return nil, errors.New("sin registros")
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitUntil(t, func() bool { return r.Snapshot().Done })

	snap := r.Snapshot()
	if snap.Error != "sin registros" {
		t.Errorf("Error = %q, want %q", snap.Error, "sin registros")
	}
	if snap.Result != nil {
		t.Errorf("Result = %v, want nil on failure", snap.Result)
	}
}
