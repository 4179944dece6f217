package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/robofleet/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Insert(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, name, description, status, robot_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		task.ID, task.Name, task.Description, task.Status, task.RobotID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT id, name, description, status, robot_id, created_at, updated_at
		FROM tasks WHERE id = $1`

	task := &domain.Task{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID, &task.Name, &task.Description, &task.Status, &task.RobotID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Возвращаем nil для 404 в хендлере
		}
		return nil, err
	}
	return task, nil
}

func (r *TaskRepo) List(ctx context.Context, opts domain.ListOptions) ([]domain.Task, error) {
	query := `
		SELECT id, name, description, status, robot_id, created_at, updated_at
		FROM tasks
		ORDER BY created_at
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, opts.Limit, opts.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByRobot возвращает страницу задач конкретного робота.
// Направление сортировки нельзя передать плейсхолдером, поэтому
// opts.Order предварительно нормализован до asc/desc.
func (r *TaskRepo) ListByRobot(ctx context.Context, robotID string, opts domain.ListOptions) ([]domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, status, robot_id, created_at, updated_at
		FROM tasks
		WHERE robot_id = $1
		ORDER BY created_at %s
		LIMIT $2 OFFSET $3`, opts.Order)

	rows, err := r.pool.Query(ctx, query, robotID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var results []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID, &task.Name, &task.Description, &task.Status, &task.RobotID,
			&task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, task)
	}
	return results, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks SET name = $1, description = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		task.Name, task.Description, task.Status, task.ID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("postgres: failed to update task: %w", err)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
