package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/robofleet/internal/domain"
	"go.uber.org/zap"
)

// TaskRepository описывает требования к хранилищу задач
type TaskRepository interface {
	Insert(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Task, error)
	ListByRobot(ctx context.Context, robotID string, opts domain.ListOptions) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// RobotChecker — кусочек репозитория роботов, нужный для FK-проверки.
type RobotChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type TaskService struct {
	repo   TaskRepository
	robots RobotChecker
	pub    Publisher
	logger *zap.Logger
}

func NewTaskService(repo TaskRepository, robots RobotChecker, pub Publisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		robots: robots,
		pub:    pub,
		logger: logger.Named("task-service"),
	}
}

// Create валидирует ссылку на робота и коммитит задачу.
// FK-проверка — check-then-act: робот может быть удален между проверкой
// и вставкой. Окно принято, см. DESIGN.md.
func (s *TaskService) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	// 1. Referential Validator: назначенный робот должен существовать
	exists, err := s.robots.Exists(ctx, task.RobotID)
	if err != nil {
		return nil, fmt.Errorf("robot check failed: %w", err)
	}
	if !exists {
		return nil, domain.ErrRobotMissing
	}

	// 2. Persistence Layer
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if err := s.repo.Insert(ctx, task); err != nil {
		s.logger.Error("failed to insert task", zap.String("robot_id", task.RobotID), zap.Error(err))
		return nil, err
	}

	// 3. Real-time fan-out
	s.pub.Publish(domain.KindTask, domain.ActionCreated, task)

	s.logger.Info("task created",
		zap.String("id", task.ID),
		zap.String("robot_id", task.RobotID))
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch task", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, opts domain.ListOptions) ([]domain.Task, error) {
	return s.repo.List(ctx, opts.Normalize())
}

// ListByRobot возвращает страницу задач робота, упорядоченную по времени
// создания в заданном направлении. Отсутствие робота — NotFound.
func (s *TaskService) ListByRobot(ctx context.Context, robotID string, opts domain.ListOptions) ([]domain.Task, error) {
	exists, err := s.robots.Exists(ctx, robotID)
	if err != nil {
		return nil, fmt.Errorf("robot check failed: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return s.repo.ListByRobot(ctx, robotID, opts.Normalize())
}

func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return nil, domain.ErrNothingToUpdate
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	if patch.Name != nil {
		task.Name = *patch.Name
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.pub.Publish(domain.KindTask, domain.ActionUpdated, task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.pub.Publish(domain.KindTask, domain.ActionDeleted, task)

	s.logger.Info("task deleted", zap.String("id", id))
	return nil
}
