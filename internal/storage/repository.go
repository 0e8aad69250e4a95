package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/bossmode/internal/model"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate")
)

// Repository persists tasks, categories and completion records. Category
// inserts and renames that collide case-insensitively with an existing name
// for the same owner return ErrDuplicate; a second completion for the same
// (task, instance date) returns model.ErrDuplicateCompletion.
type Repository interface {
	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)

	CreateCategory(ctx context.Context, in model.Category) error
	GetCategory(ctx context.Context, id string) (model.Category, error)
	UpdateCategory(ctx context.Context, in model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, filter CategoryListFilter) ([]model.Category, error)

	CreateCompletion(ctx context.Context, in model.CompletionRecord) (model.CompletionRecord, error)
	DeleteCompletion(ctx context.Context, id string) error
	FindCompletion(ctx context.Context, taskID, instanceDate string) (model.CompletionRecord, error)
	ListCompletions(ctx context.Context, filter CompletionListFilter) ([]model.CompletionRecord, error)
}
