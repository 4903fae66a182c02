package service

import (
	"context"
	"log/slog"
	"time"

	"task-manager/internal/model"
)

// NextRecurrence computes the occurrence after from for the given pattern.
// Monthly advancement uses calendar arithmetic, so month-end overflow
// normalizes forward (Jan 31 + 1 month lands in early March). Patterns
// without a cadence return from unchanged.
func NextRecurrence(from time.Time, pattern model.RecurrencePattern) time.Time {
	switch pattern {
	case model.RecurrenceDaily:
		return from.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from
	}
}

// ProcessRecurring runs one sweep: every recurring task whose next occurrence
// is due spawns a fresh not-done copy, then has its own schedule advanced.
// The spawn and the schedule update are two separate writes; if the second
// fails the task will spawn again on the next sweep. Failures are logged and
// never propagated, the periodic trigger has no caller to report to. A
// failing task does not stop the rest of the sweep.
func (s *TaskService) ProcessRecurring(ctx context.Context) {
	now := time.Now().UTC()

	due, err := s.repo.FindDueRecurring(ctx, now)
	if err != nil {
		slog.Error("recurrence sweep: fetch due tasks", "err", err)
		return
	}

	for i := range due {
		task := &due[i]

		spawn := model.Task{
			UserID:            task.UserID,
			Title:             task.Title,
			Description:       task.Description,
			Status:            model.TaskStatusNotDone,
			Priority:          task.Priority,
			IsRecurring:       task.IsRecurring,
			RecurrencePattern: task.RecurrencePattern,
			Dependencies:      task.Dependencies,
		}
		if err := s.repo.Create(ctx, &spawn); err != nil {
			slog.Error("recurrence sweep: spawn task", "task", task.ID, "err", err)
			continue
		}

		next := NextRecurrence(now, task.RecurrencePattern)
		task.LastRecurrence = &now
		task.NextRecurrence = &next
		if err := s.repo.Update(ctx, task); err != nil {
			slog.Error("recurrence sweep: advance schedule", "task", task.ID, "err", err)
		}
	}

	if len(due) > 0 {
		slog.Info("recurrence sweep finished", "processed", len(due))
	}
}
