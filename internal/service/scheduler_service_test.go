package service

import (
	"testing"
	"time"
)

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Error("expected an error for a zero interval")
	}
	if _, err := s.ScheduleInterval(-time.Minute, func() {}); err == nil {
		t.Error("expected an error for a negative interval")
	}
}

func TestScheduleIntervalRuns(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	ran := make(chan struct{}, 1)
	if _, err := s.ScheduleInterval(time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
