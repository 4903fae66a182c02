package model

import "time"

type TaskStatus string

const (
	TaskStatusNotDone    TaskStatus = "not_done"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func IsValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskStatusNotDone, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func IsValidTaskPriority(s string) bool {
	switch TaskPriority(s) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from least to most urgent. Unknown values sort first.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	}
	return 0
}

type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

func IsValidRecurrencePattern(s string) bool {
	switch RecurrencePattern(s) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Task represents a single item owned by a user. Dependencies holds ids of
// tasks that must be done before this one can be marked done.
type Task struct {
	ID                string            `gorm:"primaryKey" json:"id"`
	UserID            string            `gorm:"index" json:"userId"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Status            TaskStatus        `gorm:"index;default:'not_done'" json:"status"`
	Priority          TaskPriority      `gorm:"index;default:'medium'" json:"priority"`
	DueDate           *time.Time        `gorm:"index" json:"dueDate,omitempty"`
	IsRecurring       bool              `gorm:"index;default:false" json:"isRecurring"`
	RecurrencePattern RecurrencePattern `gorm:"default:'none'" json:"recurrencePattern"`
	LastRecurrence    *time.Time        `json:"lastRecurrence,omitempty"`
	NextRecurrence    *time.Time        `json:"nextRecurrence,omitempty"`
	Dependencies      []string          `gorm:"serializer:json" json:"dependencies"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// TaskSummary is the short form a dependency is resolved to in responses.
type TaskSummary struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter narrows and orders a task listing. Zero values mean "no filter";
// an empty SortBy falls back to createdAt descending.
type TaskFilter struct {
	Status   TaskStatus
	Priority TaskPriority
	Search   string
	SortBy   string
	Order    SortOrder
}
