package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/fleet/service"
)

// OwnerSampler выбирает случайного владельца для нового робота.
type OwnerSampler interface {
	RandomID(ctx context.Context) (string, error)
}

// RobotSampler выбирает случайного робота-исполнителя для новой задачи.
type RobotSampler interface {
	RandomID(ctx context.Context) (string, error)
}

// RobotSource раз в цикл регистрирует синтетического робота
// через тот же сервисный слой, что и HTTP API — так мутация
// проходит валидацию, журнал и broadcast без спец-путей.
type RobotSource struct {
	robots *service.RobotService
	owners OwnerSampler
}

func NewRobotSource(robots *service.RobotService, owners OwnerSampler) *RobotSource {
	return &RobotSource{robots: robots, owners: owners}
}

func (s *RobotSource) Kind() string { return domain.KindRobot }

func (s *RobotSource) Emit(ctx context.Context) error {
	ownerID, err := s.owners.RandomID(ctx)
	if err != nil {
		return fmt.Errorf("sample owner: %w", err)
	}
	if ownerID == "" {
		return domain.ErrEmptyPopulation
	}

	id := uuid.New().String()
	_, err = s.robots.Create(ctx, &domain.Robot{
		ID:     id,
		Name:   "Robot-" + id,
		Email:  id + "@gmail.com",
		UserID: ownerID,
	})
	return err
}

// TaskSource раз в цикл ставит синтетическую задачу случайному роботу.
type TaskSource struct {
	tasks  *service.TaskService
	robots RobotSampler
}

func NewTaskSource(tasks *service.TaskService, robots RobotSampler) *TaskSource {
	return &TaskSource{tasks: tasks, robots: robots}
}

func (s *TaskSource) Kind() string { return domain.KindTask }

func (s *TaskSource) Emit(ctx context.Context) error {
	robotID, err := s.robots.RandomID(ctx)
	if err != nil {
		return fmt.Errorf("sample robot: %w", err)
	}
	if robotID == "" {
		return domain.ErrEmptyPopulation
	}

	id := uuid.New().String()
	_, err = s.tasks.Create(ctx, &domain.Task{
		ID:          id,
		Name:        "Task-" + id,
		Description: "Description-" + id,
		Status:      domain.TaskStatusPending,
		RobotID:     robotID,
	})
	return err
}
