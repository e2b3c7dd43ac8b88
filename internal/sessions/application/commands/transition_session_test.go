package commands

import (
	"context"
	"testing"
	"time"

	schedulingDomain "github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduledAt = time.Date(2026, 9, 8, 18, 0, 0, 0, time.UTC)

type fakeRepo struct {
	appointments map[uuid.UUID]*domain.SessionAppointment
	saved        []*domain.SessionAppointment
	updateErrs   []error
	updates      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appointments: make(map[uuid.UUID]*domain.SessionAppointment)}
}

func (r *fakeRepo) Save(ctx context.Context, a *domain.SessionAppointment) error {
	r.appointments[a.ID()] = a
	r.saved = append(r.saved, a)
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.SessionAppointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	return a, nil
}

func (r *fakeRepo) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.SessionAppointment, error) {
	var out []*domain.SessionAppointment
	for _, a := range r.appointments {
		if a.OrganizerID() == userID || a.ParticipantID() == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, a *domain.SessionAppointment) error {
	r.updates++
	if len(r.updateErrs) > 0 {
		err := r.updateErrs[0]
		r.updateErrs = r.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	r.appointments[a.ID()] = a
	return nil
}

type recordingCache struct {
	invalidated []uuid.UUID
}

func (c *recordingCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.invalidated = append(c.invalidated, userID)
}

type capturingPublisher struct {
	routingKeys []string
}

func (p *capturingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func storedAppointment(t *testing.T, repo *fakeRepo) *domain.SessionAppointment {
	t.Helper()
	a, err := domain.NewSessionAppointment(uuid.New(), uuid.New(), scheduledAt, time.Hour, 1, false)
	require.NoError(t, err)
	a.ClearDomainEvents()
	repo.appointments[a.ID()] = a
	return a
}

func TestTransitionSessionHandler(t *testing.T) {
	clock := sharedDomain.FixedClock{Instant: scheduledAt.Add(-24 * time.Hour)}

	t.Run("commits a legal transition and publishes the event", func(t *testing.T) {
		repo := newFakeRepo()
		publisher := &capturingPublisher{}
		a := storedAppointment(t, repo)
		handler := NewTransitionSessionHandler(repo, publisher, clock, nil, nil)

		result, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, result.From)
		assert.Equal(t, domain.StatusConfirmed, result.To)
		assert.Equal(t, domain.StatusConfirmed, a.Status())
		assert.Equal(t, []string{domain.RoutingKeySessionStatusChanged}, publisher.routingKeys)
	})

	t.Run("rejects an illegal transition without touching the repo", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, nil, nil)

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusCompleted,
		})
		var rejection *domain.TransitionRejection
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, 0, repo.updates)
		assert.Equal(t, domain.StatusPending, a.Status())
	})

	t.Run("cancellation records the actor", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, nil, nil)
		actor := a.OrganizerID()

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusCancelled,
			ActorID:       actor,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, a.Status())
		assert.Equal(t, actor, a.CancelledBy())
	})

	t.Run("reschedule requires reason and proposed time", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		require.NoError(t, a.TransitionTo(domain.StatusConfirmed, clock.Now()))
		a.ClearDomainEvents()
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, nil, nil)

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusRescheduleRequested,
		})
		var rejection *domain.TransitionRejection
		require.ErrorAs(t, err, &rejection)
		assert.True(t, rejection.PreconditionFailed)

		proposed := scheduledAt.AddDate(0, 0, 7)
		_, err = handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID:    a.ID(),
			To:               domain.StatusRescheduleRequested,
			RescheduleReason: "travel that week",
			ProposedTime:     &proposed,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRescheduleRequested, a.Status())
	})

	t.Run("retries after a version conflict and succeeds", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		repo.updateErrs = []error{domain.ErrVersionConflict}
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, nil, nil)

		result, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, result.To)
		assert.Equal(t, 2, repo.updates)
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		repo.updateErrs = []error{domain.ErrVersionConflict, domain.ErrVersionConflict, domain.ErrVersionConflict}
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, nil, nil)

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
		assert.Equal(t, 3, repo.updates)
	})

	t.Run("invalidates both participants' cached busy windows", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		cache := &recordingCache{}
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, cache, nil)

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusConfirmed,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{a.OrganizerID(), a.ParticipantID()}, cache.invalidated)
	})

	t.Run("rejected transitions leave the cache alone", func(t *testing.T) {
		repo := newFakeRepo()
		a := storedAppointment(t, repo)
		cache := &recordingCache{}
		handler := NewTransitionSessionHandler(repo, &capturingPublisher{}, clock, cache, nil)

		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: a.ID(),
			To:            domain.StatusCompleted,
		})
		require.Error(t, err)
		assert.Empty(t, cache.invalidated)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		handler := NewTransitionSessionHandler(newFakeRepo(), &capturingPublisher{}, clock, nil, nil)
		_, err := handler.Handle(context.Background(), TransitionSessionCommand{
			AppointmentID: uuid.New(),
			To:            domain.StatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
	})
}

type fakeScheduler struct {
	proposals []schedulingDomain.ProposedAppointment
	err       error
}

func (f *fakeScheduler) GenerateAppointmentSlots(ctx context.Context, req schedulingDomain.SchedulingRequest) ([]schedulingDomain.ProposedAppointment, error) {
	return f.proposals, f.err
}

func TestProposeSessionsHandler(t *testing.T) {
	requester, target := uuid.New(), uuid.New()

	proposals := []schedulingDomain.ProposedAppointment{
		{ScheduledAt: scheduledAt, Duration: time.Hour, SessionNumber: 1, OrganizerID: requester, ParticipantID: target, Confidence: 1.0},
		{ScheduledAt: scheduledAt.AddDate(0, 0, 2), Duration: time.Hour, SessionNumber: 2, OrganizerID: requester, ParticipantID: target, Confidence: 1.0},
	}

	t.Run("without persist only returns proposals", func(t *testing.T) {
		repo := newFakeRepo()
		handler := NewProposeSessionsHandler(&fakeScheduler{proposals: proposals}, repo, &capturingPublisher{}, nil, nil)

		result, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target},
		})
		require.NoError(t, err)
		assert.Len(t, result.Proposals, 2)
		assert.Empty(t, result.CreatedIDs)
		assert.Empty(t, repo.saved)
	})

	t.Run("persist creates non-monetary appointments for skill exchanges", func(t *testing.T) {
		repo := newFakeRepo()
		publisher := &capturingPublisher{}
		handler := NewProposeSessionsHandler(&fakeScheduler{proposals: proposals}, repo, publisher, nil, nil)

		result, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target, SkillExchange: true},
			Persist: true,
		})
		require.NoError(t, err)
		require.Len(t, result.CreatedIDs, 2)
		require.Len(t, repo.saved, 2)
		for _, a := range repo.saved {
			assert.False(t, a.IsMonetary())
			assert.Equal(t, domain.StatusPending, a.Status())
		}
		assert.Equal(t, []string{domain.RoutingKeySessionScheduled, domain.RoutingKeySessionScheduled}, publisher.routingKeys)
	})

	t.Run("persist creates monetary appointments gated on payment", func(t *testing.T) {
		repo := newFakeRepo()
		handler := NewProposeSessionsHandler(&fakeScheduler{proposals: proposals[:1]}, repo, &capturingPublisher{}, nil, nil)

		_, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target},
			Persist: true,
		})
		require.NoError(t, err)
		require.Len(t, repo.saved, 1)
		assert.True(t, repo.saved[0].IsMonetary())
		assert.Equal(t, domain.StatusWaitingForPayment, repo.saved[0].Status())
	})

	t.Run("persist invalidates both users' cached busy windows", func(t *testing.T) {
		repo := newFakeRepo()
		cache := &recordingCache{}
		handler := NewProposeSessionsHandler(&fakeScheduler{proposals: proposals}, repo, &capturingPublisher{}, cache, nil)

		_, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target},
			Persist: true,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{requester, target}, cache.invalidated)
	})

	t.Run("a dry run leaves the cache alone", func(t *testing.T) {
		cache := &recordingCache{}
		handler := NewProposeSessionsHandler(&fakeScheduler{proposals: proposals}, newFakeRepo(), &capturingPublisher{}, cache, nil)

		_, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target},
		})
		require.NoError(t, err)
		assert.Empty(t, cache.invalidated)
	})

	t.Run("scheduler error passes partial proposals through", func(t *testing.T) {
		handler := NewProposeSessionsHandler(
			&fakeScheduler{proposals: proposals[:1], err: context.Canceled},
			newFakeRepo(), &capturingPublisher{}, nil, nil)

		result, err := handler.Handle(context.Background(), ProposeSessionsCommand{
			Request: schedulingDomain.SchedulingRequest{RequesterID: requester, TargetID: target},
			Persist: true,
		})
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, result)
		assert.Len(t, result.Proposals, 1)
		assert.Empty(t, result.CreatedIDs)
	})
}
