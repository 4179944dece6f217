package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/robofleet/internal/domain"
)

// memRobotRepo — потокобезопасное in-memory хранилище для тестов сервисов.
type memRobotRepo struct {
	mu     sync.Mutex
	robots map[string]domain.Robot
}

func newMemRobotRepo() *memRobotRepo {
	return &memRobotRepo{robots: make(map[string]domain.Robot)}
}

func (r *memRobotRepo) Insert(_ context.Context, robot *domain.Robot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	robot.CreatedAt = now
	robot.UpdatedAt = now
	r.robots[robot.ID] = *robot
	return nil
}

func (r *memRobotRepo) GetByID(_ context.Context, id string) (*domain.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	robot, ok := r.robots[id]
	if !ok {
		return nil, nil
	}
	return &robot, nil
}

func (r *memRobotRepo) List(_ context.Context, opts domain.ListOptions) ([]domain.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Robot, 0, len(r.robots))
	for _, robot := range r.robots {
		out = append(out, robot)
	}
	return out, nil
}

func (r *memRobotRepo) Update(_ context.Context, robot *domain.Robot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.robots[robot.ID]; !ok {
		return domain.ErrNotFound
	}
	robot.UpdatedAt = time.Now()
	r.robots[robot.ID] = *robot
	return nil
}

func (r *memRobotRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.robots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.robots, id)
	return nil
}

func (r *memRobotRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.robots[id]
	return ok, nil
}

func (r *memRobotRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, robot := range r.robots {
		if robot.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRobotRepo) RandomID(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.robots {
		return id, nil
	}
	return "", nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *memTaskRepo) Insert(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (r *memTaskRepo) List(_ context.Context, opts domain.ListOptions) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (r *memTaskRepo) ListByRobot(_ context.Context, robotID string, opts domain.ListOptions) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, task := range r.tasks {
		if task.RobotID == robotID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// capturePublisher копит опубликованные события для проверок.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Kind   string
	Action string
	Entity interface{}
}

func (p *capturePublisher) Publish(kind, action string, entity interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Kind: kind, Action: action, Entity: entity})
}

func (p *capturePublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
