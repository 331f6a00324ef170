package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published participations
type recordingPublisher struct {
	mu        sync.Mutex
	created   []*domain.Participation
	cancelled []*domain.Participation
	err       error
}

func (p *recordingPublisher) PublishParticipationCreated(ctx context.Context, participation *domain.Participation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, participation)
	return p.err
}

func (p *recordingPublisher) PublishParticipationCancelled(ctx context.Context, participation *domain.Participation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, participation)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type participationEnv struct {
	store     *fakeStore
	publisher *recordingPublisher
	clock     *testClock
	svc       ParticipationService
}

func newParticipationEnv(t *testing.T) *participationEnv {
	t.Helper()
	store := newFakeStore()
	publisher := &recordingPublisher{}
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewParticipationService(store.repos(), publisher, &ParticipationServiceConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Clock:           clock.Now,
	})
	return &participationEnv{store: store, publisher: publisher, clock: clock, svc: svc}
}

func (e *participationEnv) user(vetted bool) *domain.User {
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		Name:      "Member",
		IsVetted:  vetted,
		IsActive:  true,
		CreatedAt: e.clock.Now(),
	}
	e.store.addUser(u)
	return u
}

func (e *participationEnv) event(eventType domain.EventType, capacity int) *domain.Event {
	start := e.clock.Now().Add(24 * time.Hour)
	ev := &domain.Event{
		ID:          uuid.NewString(),
		Title:       "Community " + string(eventType),
		Type:        eventType,
		Capacity:    capacity,
		IsPublished: true,
		StartDate:   start,
		EndDate:     start.Add(3 * time.Hour),
		CreatedAt:   e.clock.Now(),
		UpdatedAt:   e.clock.Now(),
	}
	e.store.addEvent(ev)
	return ev
}

func (e *participationEnv) session(eventID, identifier string, capacity int, startHour int) *domain.Session {
	s := &domain.Session{
		ID:         uuid.NewString(),
		EventID:    eventID,
		Identifier: identifier,
		Name:       identifier,
		Date:       domain.DateOnly(e.clock.Now().Add(24 * time.Hour)),
		StartTime:  time.Duration(startHour) * time.Hour,
		EndTime:    time.Duration(startHour+1) * time.Hour,
		Capacity:   capacity,
		CreatedAt:  e.clock.Now(),
		UpdatedAt:  e.clock.Now(),
	}
	e.store.addSession(s)
	return s
}

func (e *participationEnv) ticketType(eventID string, identifiers ...string) *domain.TicketType {
	tt := &domain.TicketType{
		ID:                 uuid.NewString(),
		EventID:            eventID,
		Name:               "Pass",
		Pricing:            domain.PricingFixed,
		Price:              25,
		SessionIdentifiers: identifiers,
		IsActive:           true,
	}
	e.store.addTicketType(tt)
	return tt
}

func purchase(ticketTypeID string) *dto.CreateTicketPurchaseRequest {
	return &dto.CreateTicketPurchaseRequest{TicketTypeID: &ticketTypeID}
}

func TestCreateRSVP_Success(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	user := env.user(true)
	event := env.event(domain.EventTypeSocial, 10)

	view, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, &dto.CreateRSVPRequest{Notes: "bringing snacks"})
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.Equal(t, domain.ParticipationStatusActive, view.Participation.Status)
	assert.Equal(t, domain.ParticipationTypeRSVP, view.Participation.Type)
	assert.Equal(t, "bringing snacks", view.Participation.Notes)
	assert.True(t, view.CanCancel)
	assert.Equal(t, 1, env.store.activeCount(event.ID))

	history := env.store.historyFor(view.Participation.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryActionCreated, history[0].Action)
	assert.Nil(t, history[0].OldValue)
	assert.Contains(t, string(history[0].NewValue), `"status":"active"`)

	require.Len(t, env.publisher.created, 1)
	assert.Equal(t, view.Participation.ID, env.publisher.created[0].ID)
}

func TestCreateRSVP_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *participationEnv) (eventID, userID string)
		wantErr error
		kind    domain.ErrorKind
	}{
		{
			name: "not vetted",
			setup: func(env *participationEnv) (string, string) {
				return env.event(domain.EventTypeSocial, 10).ID, env.user(false).ID
			},
			wantErr: domain.ErrNotVetted,
			kind:    domain.KindForbidden,
		},
		{
			name: "inactive user",
			setup: func(env *participationEnv) (string, string) {
				u := env.user(true)
				u.IsActive = false
				env.store.addUser(u)
				return env.event(domain.EventTypeSocial, 10).ID, u.ID
			},
			wantErr: domain.ErrUserInactive,
			kind:    domain.KindForbidden,
		},
		{
			name: "unknown user",
			setup: func(env *participationEnv) (string, string) {
				return env.event(domain.EventTypeSocial, 10).ID, uuid.NewString()
			},
			wantErr: domain.ErrUserNotFound,
			kind:    domain.KindNotFound,
		},
		{
			name: "unknown event",
			setup: func(env *participationEnv) (string, string) {
				return uuid.NewString(), env.user(true).ID
			},
			wantErr: domain.ErrEventNotFound,
			kind:    domain.KindNotFound,
		},
		{
			name: "class event",
			setup: func(env *participationEnv) (string, string) {
				return env.event(domain.EventTypeClass, 10).ID, env.user(true).ID
			},
			wantErr: domain.ErrWrongEventType,
			kind:    domain.KindInvalidState,
		},
		{
			name: "member only event",
			setup: func(env *participationEnv) (string, string) {
				return env.event(domain.EventTypeMemberOnly, 10).ID, env.user(true).ID
			},
			wantErr: domain.ErrWrongEventType,
			kind:    domain.KindInvalidState,
		},
		{
			name: "unpublished",
			setup: func(env *participationEnv) (string, string) {
				ev := env.event(domain.EventTypeSocial, 10)
				ev.IsPublished = false
				env.store.addEvent(ev)
				return ev.ID, env.user(true).ID
			},
			wantErr: domain.ErrEventNotPublished,
			kind:    domain.KindInvalidState,
		},
		{
			name: "concluded",
			setup: func(env *participationEnv) (string, string) {
				ev := env.event(domain.EventTypeSocial, 10)
				ev.StartDate = env.clock.Now().Add(-4 * time.Hour)
				ev.EndDate = env.clock.Now().Add(-time.Hour)
				env.store.addEvent(ev)
				return ev.ID, env.user(true).ID
			},
			wantErr: domain.ErrEventConcluded,
			kind:    domain.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newParticipationEnv(t)
			eventID, userID := tt.setup(env)

			view, err := env.svc.CreateRSVP(context.Background(), eventID, userID, nil)
			require.Error(t, err)
			assert.Nil(t, view)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			assert.Equal(t, 0, env.store.activeCount(eventID))
			assert.Empty(t, env.publisher.created)
		})
	}
}

func TestCreateTicketPurchase_SocialEventRejected(t *testing.T) {
	env := newParticipationEnv(t)
	event := env.event(domain.EventTypeSocial, 10)

	_, err := env.svc.CreateTicketPurchase(context.Background(), event.ID, env.user(false).ID, nil)
	assert.ErrorIs(t, err, domain.ErrWrongEventType)
}

func TestCreateTicketPurchase_UnvettedAllowed(t *testing.T) {
	env := newParticipationEnv(t)
	event := env.event(domain.EventTypeClass, 10)

	view, err := env.svc.CreateTicketPurchase(context.Background(), event.ID, env.user(false).ID, &dto.CreateTicketPurchaseRequest{
		PaymentMethodID: "pm_123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationTypeTicket, view.Participation.Type)
	assert.Equal(t, "pm_123", view.Participation.PaymentMethodID)
	assert.Nil(t, view.Participation.TicketTypeID)
	assert.Empty(t, view.Participation.SessionIdentifiers)
}

func TestCreate_AlreadyParticipating(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	user := env.user(true)
	event := env.event(domain.EventTypeSocial, 10)

	_, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)

	_, err = env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyParticipating)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, 1, env.store.activeCount(event.ID))
}

func TestCreate_EventFull(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 2)

	for i := 0; i < 2; i++ {
		_, err := env.svc.CreateRSVP(ctx, event.ID, env.user(true).ID, nil)
		require.NoError(t, err)
	}

	_, err := env.svc.CreateRSVP(ctx, event.ID, env.user(true).ID, nil)
	assert.ErrorIs(t, err, domain.ErrEventFull)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 2, env.store.activeCount(event.ID))
}

func TestCreate_ConcurrentNeverOversells(t *testing.T) {
	env := newParticipationEnv(t)
	event := env.event(domain.EventTypeSocial, 5)

	const attempts = 20
	users := make([]string, attempts)
	for i := range users {
		users[i] = env.user(true).ID
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		full      atomic.Int32
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := env.svc.CreateRSVP(context.Background(), event.ID, userID, nil)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrEventFull):
				full.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	assert.Equal(t, int32(attempts-5), full.Load())
	assert.Equal(t, 5, env.store.activeCount(event.ID))
}

func TestCreate_ConcurrentSameUserSingleActive(t *testing.T) {
	env := newParticipationEnv(t)
	event := env.event(domain.EventTypeSocial, 50)
	user := env.user(true)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svc.CreateRSVP(context.Background(), event.ID, user.ID, nil); err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrAlreadyParticipating)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, 1, env.store.activeCount(event.ID))
}

func TestCreateTicketPurchase_SessionCapacityDominates(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 100)
	s1 := env.session(event.ID, "S1", 2, 10)
	tt := env.ticketType(event.ID, "S1")

	for i := 0; i < 2; i++ {
		view, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(tt.ID))
		require.NoError(t, err)
		assert.Equal(t, []string{"S1"}, view.Participation.SessionIdentifiers)
		require.NotNil(t, view.Participation.TicketTypeID)
		assert.Equal(t, tt.ID, *view.Participation.TicketTypeID)
	}

	_, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(tt.ID))
	assert.ErrorIs(t, err, domain.ErrSessionFull)
	assert.Equal(t, domain.KindCapacityExceeded, domain.KindOf(err))
	assert.Equal(t, "S1", domain.AsError(err).Details["session"])

	assert.Equal(t, 2, env.store.session(s1.ID).RegisteredCount)
	assert.Equal(t, 2, env.store.activeCount(event.ID))
}

func TestCreateTicketPurchase_TicketTypeRequiredWhenEventSellsThem(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 2)
	s1 := env.session(event.ID, "S1", 1, 10)
	tt := env.ticketType(event.ID, "S1")

	_, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(tt.ID))
	require.NoError(t, err)

	for _, req := range []*dto.CreateTicketPurchaseRequest{nil, {PaymentMethodID: "pm_1"}} {
		_, err = env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, req)
		require.ErrorIs(t, err, domain.ErrTicketTypeRequired)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Equal(t, "ticket_type_id", domain.AsError(err).Details["field"])
	}

	assert.Equal(t, 1, env.store.session(s1.ID).RegisteredCount)
	assert.Equal(t, 1, env.store.activeCount(event.ID))
}

func TestCreateTicketPurchase_UntypedAllowedWhenNoActiveTicketTypes(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 5)
	env.session(event.ID, "S1", 5, 10)
	retired := env.ticketType(event.ID, "S1")
	retired.IsActive = false
	env.store.addTicketType(retired)

	view, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, nil)
	require.NoError(t, err)
	assert.Nil(t, view.Participation.TicketTypeID)
	assert.Empty(t, view.Participation.SessionIdentifiers)
}

func TestCreateTicketPurchase_FullSessionLeavesOthersUntouched(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 100)
	s1 := env.session(event.ID, "S1", 5, 10)
	s2 := env.session(event.ID, "S2", 1, 12)
	tt := env.ticketType(event.ID, "S1", "S2")

	_, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(tt.ID))
	require.NoError(t, err)

	_, err = env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(tt.ID))
	require.ErrorIs(t, err, domain.ErrSessionFull)
	assert.Equal(t, "S2", domain.AsError(err).Details["session"])

	assert.Equal(t, 1, env.store.session(s1.ID).RegisteredCount)
	assert.Equal(t, 1, env.store.session(s2.ID).RegisteredCount)
}

func TestCreateTicketPurchase_TicketTypeChecks(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 10)
	other := env.event(domain.EventTypeClass, 10)
	env.session(event.ID, "S1", 5, 10)
	env.session(other.ID, "S1", 5, 10)

	foreign := env.ticketType(other.ID, "S1")
	_, err := env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(foreign.ID))
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	_, err = env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(uuid.NewString()))
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	inactive := env.ticketType(event.ID, "S1")
	inactive.IsActive = false
	env.store.addTicketType(inactive)
	_, err = env.svc.CreateTicketPurchase(ctx, event.ID, env.user(false).ID, purchase(inactive.ID))
	assert.ErrorIs(t, err, domain.ErrTicketTypeInactive)

	assert.Equal(t, 0, env.store.activeCount(event.ID))
}

func TestCancelParticipation_ReleasesSessions(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeClass, 10)
	s1 := env.session(event.ID, "S1", 3, 10)
	s2 := env.session(event.ID, "S2", 3, 12)
	tt := env.ticketType(event.ID, "S1", "S2")
	user := env.user(false)

	created, err := env.svc.CreateTicketPurchase(ctx, event.ID, user.ID, purchase(tt.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.session(s1.ID).RegisteredCount)

	view, err := env.svc.CancelParticipation(ctx, event.ID, user.ID, &dto.CancelParticipationRequest{Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, created.Participation.ID, view.Participation.ID)
	assert.Equal(t, domain.ParticipationStatusCancelled, view.Participation.Status)
	assert.Equal(t, "sick", view.Participation.CancellationReason)
	assert.NotNil(t, view.Participation.CancelledAt)
	assert.False(t, view.CanCancel)

	assert.Equal(t, 0, env.store.session(s1.ID).RegisteredCount)
	assert.Equal(t, 0, env.store.session(s2.ID).RegisteredCount)
	assert.Equal(t, 0, env.store.activeCount(event.ID))

	history := env.store.historyFor(created.Participation.ID)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryActionCancelled, history[1].Action)
	assert.Contains(t, string(history[1].OldValue), `"status":"active"`)
	assert.Contains(t, string(history[1].NewValue), `"status":"cancelled"`)
	assert.Equal(t, "sick", history[1].ChangeReason)

	require.Len(t, env.publisher.cancelled, 1)
}

func TestCancelParticipation_Errors(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 10)
	user := env.user(true)

	_, err := env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	assert.ErrorIs(t, err, domain.ErrParticipationNotFound)

	_, err = env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)

	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestCancelParticipation_AfterConclusion(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 10)
	user := env.user(true)

	_, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)

	env.clock.Advance(48 * time.Hour)

	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	assert.ErrorIs(t, err, domain.ErrEventConcluded)
	assert.Equal(t, 1, env.store.activeCount(event.ID))

	status, err := env.svc.GetParticipationStatus(ctx, event.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, status.CanCancel)
}

func TestReRegisterAfterCancel(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 1)
	user := env.user(true)

	first, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)

	second, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Participation.ID, second.Participation.ID)

	status, err := env.svc.GetParticipationStatus(ctx, event.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Participation.ID, status.Participation.ID)
	assert.Equal(t, domain.ParticipationStatusActive, status.Participation.Status)

	assert.Len(t, env.store.historyFor(first.Participation.ID), 2)
	assert.Len(t, env.store.historyFor(second.Participation.ID), 1)
}

func TestGetParticipationStatus(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 10)
	user := env.user(true)

	status, err := env.svc.GetParticipationStatus(ctx, event.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = env.svc.GetParticipationStatus(ctx, uuid.NewString(), user.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	_, err = env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	status, err = env.svc.GetParticipationStatus(ctx, event.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, status.CanCancel)

	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	status, err = env.svc.GetParticipationStatus(ctx, event.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationStatusCancelled, status.Participation.Status)
	assert.False(t, status.CanCancel)
}

func TestCreate_RetriesTransientFailures(t *testing.T) {
	env := newParticipationEnv(t)
	event := env.event(domain.EventTypeSocial, 10)
	env.store.transientFailures = 2

	_, err := env.svc.CreateRSVP(context.Background(), event.ID, env.user(true).ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, env.store.txCount)
	assert.Equal(t, 1, env.store.activeCount(event.ID))
}

func TestCreate_RetriesExhausted(t *testing.T) {
	store := newFakeStore()
	svc := NewParticipationService(store.repos(), nil, &ParticipationServiceConfig{
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
	})
	env := &participationEnv{store: store, clock: &testClock{now: time.Now().UTC()}}
	event := env.event(domain.EventTypeSocial, 10)
	store.transientFailures = 5

	_, err := svc.CreateRSVP(context.Background(), event.ID, env.user(true).ID, nil)
	assert.ErrorIs(t, err, domain.ErrUnexpected)
	assert.Equal(t, 2, store.txCount)
	assert.Equal(t, 0, store.activeCount(event.ID))
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	env := newParticipationEnv(t)
	env.publisher.err = errors.New("broker down")
	event := env.event(domain.EventTypeSocial, 10)

	view, err := env.svc.CreateRSVP(context.Background(), event.ID, env.user(true).ID, nil)
	require.NoError(t, err)
	assert.NotNil(t, view)
	assert.Equal(t, 1, env.store.activeCount(event.ID))
}

func TestGetUserParticipations(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	user := env.user(true)
	social := env.event(domain.EventTypeSocial, 10)
	class := env.event(domain.EventTypeClass, 10)
	gone := env.event(domain.EventTypeSocial, 10)

	_, err := env.svc.CreateRSVP(ctx, social.ID, user.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CreateTicketPurchase(ctx, class.ID, user.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CreateRSVP(ctx, gone.ID, user.ID, nil)
	require.NoError(t, err)
	require.NoError(t, fakeEvents{env.store}.Delete(ctx, gone.ID))

	items, total, err := env.svc.GetUserParticipations(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)

	// newest first
	assert.Equal(t, gone.ID, items[0].Participation.EventID)
	assert.Nil(t, items[0].Event)
	assert.False(t, items[0].CanCancel)
	assert.Equal(t, class.ID, items[1].Event.ID)
	assert.True(t, items[1].CanCancel)

	items, total, err = env.svc.GetUserParticipations(ctx, user.ID, &dto.ParticipationListFilter{
		Type:       string(domain.ParticipationTypeTicket),
		Pagination: dto.Pagination{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, class.ID, items[0].Participation.EventID)
}

func TestGetEventParticipations(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 10)
	alice := env.user(true)
	bob := env.user(true)

	_, err := env.svc.CreateRSVP(ctx, event.ID, alice.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CreateRSVP(ctx, event.ID, bob.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CancelParticipation(ctx, event.ID, bob.ID, nil)
	require.NoError(t, err)

	items, total, err := env.svc.GetEventParticipations(ctx, event.ID, &dto.ParticipationListFilter{
		Status: string(domain.ParticipationStatusActive),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].User)
	assert.Equal(t, alice.ID, items[0].User.ID)

	_, _, err = env.svc.GetEventParticipations(ctx, uuid.NewString(), nil)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestGetParticipationHistory(t *testing.T) {
	env := newParticipationEnv(t)
	ctx := context.Background()
	event := env.event(domain.EventTypeSocial, 10)
	user := env.user(true)

	view, err := env.svc.CreateRSVP(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)
	_, err = env.svc.CancelParticipation(ctx, event.ID, user.ID, nil)
	require.NoError(t, err)

	history, err := env.svc.GetParticipationHistory(ctx, view.Participation.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryActionCreated, history[0].Action)
	assert.Equal(t, domain.HistoryActionCancelled, history[1].Action)

	_, err = env.svc.GetParticipationHistory(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrParticipationNotFound)
}
