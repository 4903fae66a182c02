package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-manager/internal/model"
)

// TaskRepository handles storage for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns the task owned by userID, or nil when no such row exists.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// Filter lists a user's tasks matching the given filter. The title search is
// a case-insensitive substring match.
func (r *TaskRepository) Filter(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", string(filter.Priority))
	}
	if filter.Search != "" {
		q = q.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var tasks []model.Task
	if err := q.Order(orderClause(filter.SortBy, filter.Order)).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("filter tasks: %w", err)
	}
	return tasks, nil
}

// orderClause maps an API sort field onto a column. Priority sorts by rank
// (low < medium < high), not by the raw string. Unknown fields fall back to
// creation time.
func orderClause(sortBy string, order model.SortOrder) string {
	dir := "DESC"
	if order == model.SortAsc {
		dir = "ASC"
	}

	switch sortBy {
	case "priority":
		return "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END " + dir
	case "title":
		return "title " + dir
	case "status":
		return "status " + dir
	case "dueDate":
		return "due_date " + dir
	case "updatedAt":
		return "updated_at " + dir
	default:
		return "created_at " + dir
	}
}

// FindByIDs fetches tasks by id, in no particular order.
func (r *TaskRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find tasks by ids: %w", err)
	}
	return tasks, nil
}

// FindUnfinished returns the subset of the given tasks that are not done yet.
func (r *TaskRepository) FindUnfinished(ctx context.Context, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND status <> ?", ids, string(model.TaskStatusDone)).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find unfinished tasks: %w", err)
	}
	return tasks, nil
}

// FindDependents returns every task that lists taskID as a dependency.
// The lookup is not owner-scoped. Dependency ids are stored as a JSON array
// of UUIDs, so matching the quoted id cannot produce false positives.
func (r *TaskRepository) FindDependents(ctx context.Context, taskID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("dependencies LIKE ?", `%"`+taskID+`"%`).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find dependent tasks: %w", err)
	}
	return tasks, nil
}

// FindDueRecurring returns recurring tasks whose next occurrence is at or
// before now.
func (r *TaskRepository) FindDueRecurring(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND next_recurrence IS NOT NULL AND next_recurrence <= ?", true, now).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find due recurring tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes a task for the given user. It reports whether a row was
// actually deleted.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
