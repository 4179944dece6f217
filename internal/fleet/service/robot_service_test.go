package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/fleet/service"
	"go.uber.org/zap"
)

func newRobotService(repo *memRobotRepo, pub *capturePublisher) *service.RobotService {
	return service.NewRobotService(repo, pub, zap.NewNop())
}

func TestRobotCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and publishes created event", func(t *testing.T) {
		repo := newMemRobotRepo()
		pub := &capturePublisher{}
		svc := newRobotService(repo, pub)

		robot, err := svc.Create(ctx, &domain.Robot{Name: "R2D2", Email: "r2d2@example.com"})
		assert.NoError(t, err)
		assert.NotEmpty(t, robot.ID)

		events := pub.all()
		assert.Len(t, events, 1)
		assert.Equal(t, domain.KindRobot, events[0].Kind)
		assert.Equal(t, domain.ActionCreated, events[0].Action)
	})

	t.Run("rejects duplicate email without inserting", func(t *testing.T) {
		repo := newMemRobotRepo()
		pub := &capturePublisher{}
		svc := newRobotService(repo, pub)

		_, err := svc.Create(ctx, &domain.Robot{Name: "A", Email: "same@example.com"})
		assert.NoError(t, err)

		_, err = svc.Create(ctx, &domain.Robot{Name: "B", Email: "same@example.com"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)

		// Второй робот не должен был попасть ни в хранилище, ни в эфир
		robots, _ := repo.List(ctx, domain.ListOptions{})
		assert.Len(t, robots, 1)
		assert.Len(t, pub.all(), 1)
	})
}

func TestRobotGet(t *testing.T) {
	ctx := context.Background()
	repo := newMemRobotRepo()
	svc := newRobotService(repo, &capturePublisher{})

	created, err := svc.Create(ctx, &domain.Robot{Name: "C3PO", Email: "c3po@example.com"})
	assert.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "C3PO", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRobotUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("merges partial patch", func(t *testing.T) {
		repo := newMemRobotRepo()
		pub := &capturePublisher{}
		svc := newRobotService(repo, pub)

		created, _ := svc.Create(ctx, &domain.Robot{Name: "Old", Email: "old@example.com"})

		name := "New"
		updated, err := svc.Update(ctx, created.ID, domain.RobotPatch{Name: &name})
		assert.NoError(t, err)
		assert.Equal(t, "New", updated.Name)
		// Email не трогали — остается прежним
		assert.Equal(t, "old@example.com", updated.Email)

		events := pub.all()
		assert.Equal(t, domain.ActionUpdated, events[len(events)-1].Action)
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		repo := newMemRobotRepo()
		svc := newRobotService(repo, &capturePublisher{})

		created, _ := svc.Create(ctx, &domain.Robot{Name: "X", Email: "x@example.com"})
		_, err := svc.Update(ctx, created.ID, domain.RobotPatch{})
		assert.ErrorIs(t, err, domain.ErrNothingToUpdate)
	})

	t.Run("email change rechecks uniqueness", func(t *testing.T) {
		repo := newMemRobotRepo()
		svc := newRobotService(repo, &capturePublisher{})

		svc.Create(ctx, &domain.Robot{Name: "A", Email: "a@example.com"})
		b, _ := svc.Create(ctx, &domain.Robot{Name: "B", Email: "b@example.com"})

		email := "a@example.com"
		_, err := svc.Update(ctx, b.ID, domain.RobotPatch{Email: &email})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("missing robot", func(t *testing.T) {
		svc := newRobotService(newMemRobotRepo(), &capturePublisher{})
		name := "Any"
		_, err := svc.Update(ctx, "nope", domain.RobotPatch{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRobotDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRobotRepo()
	pub := &capturePublisher{}
	svc := newRobotService(repo, pub)

	created, _ := svc.Create(ctx, &domain.Robot{Name: "Doomed", Email: "doomed@example.com"})

	err := svc.Delete(ctx, created.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Событие удаления несет последнее состояние сущности
	events := pub.all()
	last := events[len(events)-1]
	assert.Equal(t, domain.ActionDeleted, last.Action)
	deleted, ok := last.Entity.(*domain.Robot)
	assert.True(t, ok)
	assert.Equal(t, "Doomed", deleted.Name)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
