package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/robofleet/internal/domain"
	"go.uber.org/zap"
)

// RobotRepository описывает требования к хранилищу роботов
type RobotRepository interface {
	Insert(ctx context.Context, robot *domain.Robot) error
	GetByID(ctx context.Context, id string) (*domain.Robot, error)
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Robot, error)
	Update(ctx context.Context, robot *domain.Robot) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RandomID(ctx context.Context) (string, error)
}

type RobotService struct {
	repo   RobotRepository
	pub    Publisher
	logger *zap.Logger
}

func NewRobotService(repo RobotRepository, pub Publisher, logger *zap.Logger) *RobotService {
	return &RobotService{
		repo:   repo,
		pub:    pub,
		logger: logger.Named("robot-service"),
	}
}

// Create валидирует и коммитит нового робота, затем транслирует событие.
// Проверка уникальности email — check-then-act: между проверкой и вставкой
// конкурентный писатель может вклиниться. Окно принято осознанно, страховка —
// уникальный индекс в самой базе.
func (s *RobotService) Create(ctx context.Context, robot *domain.Robot) (*domain.Robot, error) {
	// 1. Referential Validator: занят ли email (точное совпадение)
	taken, err := s.repo.EmailExists(ctx, robot.Email)
	if err != nil {
		return nil, fmt.Errorf("email check failed: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	// 2. Persistence Layer
	if robot.ID == "" {
		robot.ID = uuid.New().String()
	}
	if err := s.repo.Insert(ctx, robot); err != nil {
		s.logger.Error("failed to insert robot", zap.String("email", robot.Email), zap.Error(err))
		return nil, err
	}

	// 3. Real-time fan-out (fire-and-forget)
	s.pub.Publish(domain.KindRobot, domain.ActionCreated, robot)

	s.logger.Info("robot created",
		zap.String("id", robot.ID),
		zap.String("name", robot.Name))
	return robot, nil
}

func (s *RobotService) Get(ctx context.Context, id string) (*domain.Robot, error) {
	robot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch robot", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if robot == nil {
		return nil, domain.ErrNotFound
	}
	return robot, nil
}

// List возвращает страницу роботов. Чтения ничего не публикуют.
func (s *RobotService) List(ctx context.Context, opts domain.ListOptions) ([]domain.Robot, error) {
	return s.repo.List(ctx, opts.Normalize())
}

// Update сливает patch с текущим состоянием: отсутствующее поле
// означает «оставить прежнее значение».
func (s *RobotService) Update(ctx context.Context, id string, patch domain.RobotPatch) (*domain.Robot, error) {
	if patch.Empty() {
		return nil, domain.ErrNothingToUpdate
	}

	robot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if robot == nil {
		return nil, domain.ErrNotFound
	}

	if patch.Name != nil {
		robot.Name = *patch.Name
	}
	if patch.Email != nil && *patch.Email != robot.Email {
		taken, err := s.repo.EmailExists(ctx, *patch.Email)
		if err != nil {
			return nil, fmt.Errorf("email check failed: %w", err)
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
		robot.Email = *patch.Email
	}

	if err := s.repo.Update(ctx, robot); err != nil {
		return nil, err
	}

	s.pub.Publish(domain.KindRobot, domain.ActionUpdated, robot)
	return robot, nil
}

// Delete удаляет робота. Задачи робота не каскадируются: осиротевшие
// ссылки — принятая неконсистентность (см. DESIGN.md).
func (s *RobotService) Delete(ctx context.Context, id string) error {
	robot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if robot == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Событие несет последнее известное состояние удаленной сущности
	s.pub.Publish(domain.KindRobot, domain.ActionDeleted, robot)

	s.logger.Info("robot deleted", zap.String("id", id))
	return nil
}
