package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/bossmode/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewSQLiteRepository pins the pool to one connection so the foreign key
// pragma holds for every statement.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{
		db: sqlx.NewDb(db, "sqlite3"),
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// DB exposes the underlying handle for migrations.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db.DB
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	query, args, err := r.sb.Insert("tasks").Columns(taskColumns...).Values(taskValues(in)...).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s", ErrDuplicate, in.ID)
		}
		return err
	}
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	query, args, err := r.sb.Select(taskColumns...).From("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Task{}, err
	}
	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return row.toModel()
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	values := taskValues(in)
	set := make(map[string]any, len(taskColumns))
	for i, col := range taskColumns {
		switch col {
		case "id", "owner_id", "created_at":
			continue
		}
		set[col] = values[i]
	}
	query, args, err := r.sb.Update("tasks").SetMap(set).Where(squirrel.Eq{"id": in.ID}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// DeleteTask removes the task and its completion records in one
// transaction.
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sb.Delete("completions").Where(squirrel.Eq{"task_id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
		query, args, err = r.sb.Delete("tasks").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	q := r.sb.Select(taskColumns...).From("tasks").OrderBy("created_at ASC", "id ASC")
	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.CategoryID != "" {
		q = q.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if filter.Completed != nil {
		q = q.Where(squirrel.Eq{"completed": boolInt(*filter.Completed)})
	}
	if filter.Recurring != nil {
		if *filter.Recurring {
			q = q.Where(squirrel.NotEq{"recurrence": nil})
		} else {
			q = q.Where(squirrel.Eq{"recurrence": nil})
		}
	}
	query, args, err := applyPagination(q, filter.Limit, filter.Offset).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, convErr := row.toModel()
		if convErr != nil {
			return nil, fmt.Errorf("task %s: %w", row.ID, convErr)
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in model.Category) error {
	query, args, err := r.sb.Insert("categories").Columns(categoryColumns...).
		Values(in.ID, in.OwnerID, in.Name, in.Color, mustTime(in.CreatedAt)).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", ErrDuplicate, in.Name)
		}
		return err
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (model.Category, error) {
	query, args, err := r.sb.Select(categoryColumns...).From("categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Category{}, err
	}
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, err
	}
	return row.toModel()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, in model.Category) error {
	query, args, err := r.sb.Update("categories").
		Set("name", in.Name).
		Set("color", in.Color).
		Where(squirrel.Eq{"id": in.ID}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", ErrDuplicate, in.Name)
		}
		return err
	}
	return checkRowsAffected(res)
}

// DeleteCategory detaches the category's tasks before removing it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sb.Update("tasks").Set("category_id", nil).Where(squirrel.Eq{"category_id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		query, args, err = r.sb.Delete("categories").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, filter CategoryListFilter) ([]model.Category, error) {
	q := r.sb.Select(categoryColumns...).From("categories").OrderBy("name COLLATE NOCASE ASC", "id ASC")
	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	query, args, err := applyPagination(q, filter.Limit, filter.Offset).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		item, convErr := row.toModel()
		if convErr != nil {
			return nil, fmt.Errorf("category %s: %w", row.ID, convErr)
		}
		out = append(out, item)
	}
	return out, nil
}

// CreateCompletion returns the stored record. A second record for the same
// (task, instance date) fails with model.ErrDuplicateCompletion.
func (r *SQLiteRepository) CreateCompletion(ctx context.Context, in model.CompletionRecord) (model.CompletionRecord, error) {
	query, args, err := r.sb.Insert("completions").Columns(completionColumns...).
		Values(in.ID, in.TaskID, in.OwnerID, in.InstanceDate, mustTime(in.CompletedAt)).ToSql()
	if err != nil {
		return model.CompletionRecord{}, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.CompletionRecord{}, fmt.Errorf("%w: task %s on %s", model.ErrDuplicateCompletion, in.TaskID, in.InstanceDate)
		}
		return model.CompletionRecord{}, err
	}
	in.CompletedAt = in.CompletedAt.UTC()
	return in, nil
}

func (r *SQLiteRepository) DeleteCompletion(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("completions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) FindCompletion(ctx context.Context, taskID, instanceDate string) (model.CompletionRecord, error) {
	query, args, err := r.sb.Select(completionColumns...).From("completions").
		Where(squirrel.Eq{"task_id": taskID, "instance_date": instanceDate}).ToSql()
	if err != nil {
		return model.CompletionRecord{}, err
	}
	var row completionRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CompletionRecord{}, ErrNotFound
		}
		return model.CompletionRecord{}, err
	}
	return row.toModel()
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]model.CompletionRecord, error) {
	q := r.sb.Select(completionColumns...).From("completions").OrderBy("instance_date ASC", "task_id ASC")
	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.TaskID != "" {
		q = q.Where(squirrel.Eq{"task_id": filter.TaskID})
	}
	if filter.From != "" {
		q = q.Where(squirrel.GtOrEq{"instance_date": filter.From})
	}
	if filter.To != "" {
		q = q.Where(squirrel.LtOrEq{"instance_date": filter.To})
	}
	query, args, err := applyPagination(q, filter.Limit, filter.Offset).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []completionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.CompletionRecord, 0, len(rows))
	for _, row := range rows {
		rec, convErr := row.toModel()
		if convErr != nil {
			return nil, fmt.Errorf("completion %s: %w", row.ID, convErr)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// applyPagination adds LIMIT/OFFSET. SQLite rejects OFFSET without LIMIT, so
// an offset alone gets an unbounded limit.
func applyPagination(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	} else if offset > 0 {
		q = q.Limit(math.MaxInt64)
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
