package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/robofleet/internal/domain"
)

type RobotRepo struct {
	pool *pgxpool.Pool
}

// NewRobotRepo создает репозиторий роботов поверх общего пула
func NewRobotRepo(pool *pgxpool.Pool) *RobotRepo {
	return &RobotRepo{pool: pool}
}

// Insert сохраняет нового робота. Таймстемпы проставляет база,
// чтобы все инстансы жили по одним часам. Владелец опционален:
// пустой UserID превращается в NULL, а не в битый FK.
func (r *RobotRepo) Insert(ctx context.Context, robot *domain.Robot) error {
	query := `
		INSERT INTO robots (id, name, email, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		robot.ID, robot.Name, robot.Email, robot.UserID,
	).Scan(&robot.CreatedAt, &robot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert robot: %w", err)
	}
	return nil
}

func (r *RobotRepo) GetByID(ctx context.Context, id string) (*domain.Robot, error) {
	query := `
		SELECT id, name, email, COALESCE(user_id, ''), created_at, updated_at
		FROM robots WHERE id = $1`

	robot := &domain.Robot{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&robot.ID, &robot.Name, &robot.Email, &robot.UserID, &robot.CreatedAt, &robot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Возвращаем nil для 404 в хендлере
		}
		return nil, err
	}
	return robot, nil
}

// List возвращает страницу роботов, упорядоченную по времени создания.
func (r *RobotRepo) List(ctx context.Context, opts domain.ListOptions) ([]domain.Robot, error) {
	query := `
		SELECT id, name, email, COALESCE(user_id, ''), created_at, updated_at
		FROM robots
		ORDER BY created_at
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, opts.Limit, opts.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Robot
	for rows.Next() {
		var robot domain.Robot
		if err := rows.Scan(
			&robot.ID, &robot.Name, &robot.Email, &robot.UserID, &robot.CreatedAt, &robot.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, robot)
	}
	return results, rows.Err()
}

// Update перезаписывает изменяемые поля. Слияние patch с текущим
// состоянием делает сервис, сюда приходит уже полная строка.
func (r *RobotRepo) Update(ctx context.Context, robot *domain.Robot) error {
	query := `
		UPDATE robots SET name = $1, email = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, robot.Name, robot.Email, robot.ID).Scan(&robot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("postgres: failed to update robot: %w", err)
	}
	return nil
}

func (r *RobotRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM robots WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete robot: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Exists отвечает, есть ли робот с данным ID (для FK-проверки перед вставкой задачи).
func (r *RobotRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM robots WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailExists проверяет занятость адреса (точное совпадение хранимого значения).
func (r *RobotRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM robots WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RandomID выбирает ID равномерно случайно из всей таблицы.
// Пустая таблица — не ошибка: возвращаем "", nil, генератор пропустит цикл.
func (r *RobotRepo) RandomID(ctx context.Context) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM robots ORDER BY random() LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}
