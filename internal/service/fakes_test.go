package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/repository"
	"github.com/prohmpiriya/community-events/pkg/database"
)

// fakeStore is an in-memory stand-in for the postgres schema. Rows are copied
// in and out so services see the same isolation a real query gives them.
// Transactions are serialized and roll back by restoring a snapshot.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users          map[string]*domain.User
	events         map[string]*domain.Event
	sessions       map[string]*domain.Session
	ticketTypes    map[string]*domain.TicketType
	participations map[string]*domain.Participation
	order          map[string]int
	history        []*domain.ParticipationHistory
	seq            int

	// transientFailures makes the next n transactions fail with a
	// serialization failure before running
	transientFailures int
	txCount           int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:          make(map[string]*domain.User),
		events:         make(map[string]*domain.Event),
		sessions:       make(map[string]*domain.Session),
		ticketTypes:    make(map[string]*domain.TicketType),
		participations: make(map[string]*domain.Participation),
		order:          make(map[string]int),
	}
}

type fakeTxKey struct{}

type fakeSnapshot struct {
	events         map[string]*domain.Event
	sessions       map[string]*domain.Session
	ticketTypes    map[string]*domain.TicketType
	participations map[string]*domain.Participation
	order          map[string]int
	history        []*domain.ParticipationHistory
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}

	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	f.txCount++
	if f.transientFailures > 0 {
		f.transientFailures--
		f.mu.Unlock()
		return &pgconn.PgError{Code: database.CodeSerializationFailure, Message: "could not serialize access"}
	}
	snap := f.snapshot()
	f.mu.Unlock()

	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		f.mu.Lock()
		f.restore(snap)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		events:         make(map[string]*domain.Event, len(f.events)),
		sessions:       make(map[string]*domain.Session, len(f.sessions)),
		ticketTypes:    make(map[string]*domain.TicketType, len(f.ticketTypes)),
		participations: make(map[string]*domain.Participation, len(f.participations)),
		order:          make(map[string]int, len(f.order)),
		history:        append([]*domain.ParticipationHistory(nil), f.history...),
	}
	for k, v := range f.events {
		s.events[k] = v
	}
	for k, v := range f.sessions {
		s.sessions[k] = v
	}
	for k, v := range f.ticketTypes {
		s.ticketTypes[k] = v
	}
	for k, v := range f.participations {
		s.participations[k] = v
	}
	for k, v := range f.order {
		s.order[k] = v
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.events = s.events
	f.sessions = s.sessions
	f.ticketTypes = s.ticketTypes
	f.participations = s.participations
	f.order = s.order
	f.history = s.history
}

// Seed helpers

func (f *fakeStore) addUser(u *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
}

func (f *fakeStore) addEvent(e *domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.events[e.ID] = &cp
}

func (f *fakeStore) addSession(s *domain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
}

func (f *fakeStore) addTicketType(t *domain.TicketType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticketTypes[t.ID] = cloneTicketType(t)
}

func (f *fakeStore) session(id string) *domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.sessions[id]
	return &cp
}

func (f *fakeStore) activeCount(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.participations {
		if p.EventID == eventID && p.Status == domain.ParticipationStatusActive {
			n++
		}
	}
	return n
}

func (f *fakeStore) historyFor(participationID string) []*domain.ParticipationHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ParticipationHistory
	for _, h := range f.history {
		if h.ParticipationID == participationID {
			out = append(out, h)
		}
	}
	return out
}

func (f *fakeStore) repos() ParticipationRepositories {
	return ParticipationRepositories{
		Tx:             f,
		Users:          fakeUsers{f},
		Events:         fakeEvents{f},
		Sessions:       fakeSessions{f},
		TicketTypes:    fakeTicketTypes{f},
		Participations: fakeParticipations{f},
		History:        fakeHistory{f},
	}
}

func cloneTicketType(t *domain.TicketType) *domain.TicketType {
	cp := *t
	cp.SessionIdentifiers = append([]string(nil), t.SessionIdentifiers...)
	return &cp
}

func cloneParticipation(p *domain.Participation) *domain.Participation {
	cp := *p
	cp.SessionIdentifiers = append([]string(nil), p.SessionIdentifiers...)
	return &cp
}

// Users

type fakeUsers struct{ f *fakeStore }

var _ repository.UserRepository = fakeUsers{}

func (r fakeUsers) Create(ctx context.Context, u *domain.User) error {
	r.f.addUser(u)
	return nil
}

func (r fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r fakeUsers) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.f.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

// Events

type fakeEvents struct{ f *fakeStore }

var _ repository.EventRepository = fakeEvents{}

func (r fakeEvents) Create(ctx context.Context, e *domain.Event) error {
	r.f.addEvent(e)
	return nil
}

func (r fakeEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	e, ok := r.f.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r fakeEvents) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r fakeEvents) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Event, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make(map[string]*domain.Event, len(ids))
	for _, id := range ids {
		if e, ok := r.f.events[id]; ok {
			cp := *e
			out[id] = &cp
		}
	}
	return out, nil
}

func (r fakeEvents) Update(ctx context.Context, e *domain.Event) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	cp := *e
	r.f.events[e.ID] = &cp
	return nil
}

func (r fakeEvents) Delete(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.f.events, id)
	for sid, s := range r.f.sessions {
		if s.EventID == id {
			delete(r.f.sessions, sid)
		}
	}
	for tid, t := range r.f.ticketTypes {
		if t.EventID == id {
			delete(r.f.ticketTypes, tid)
		}
	}
	return nil
}

func (r fakeEvents) List(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*domain.Event
	now := time.Now()
	for _, e := range r.f.events {
		if filter != nil {
			if filter.Type != "" && string(e.Type) != filter.Type {
				continue
			}
			if filter.PublishedOnly && !e.IsPublished {
				continue
			}
			if filter.UpcomingOnly && !e.EndDate.After(now) {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	total := len(out)
	return page(out, limit, offset), total, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// Sessions

type fakeSessions struct{ f *fakeStore }

var _ repository.SessionRepository = fakeSessions{}

func (r fakeSessions) Create(ctx context.Context, s *domain.Session) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.sessions {
		if existing.EventID == s.EventID && existing.Identifier == s.Identifier {
			return domain.ErrDuplicateSessionIdentifier
		}
	}
	cp := *s
	r.f.sessions[s.ID] = &cp
	return nil
}

func (r fakeSessions) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r fakeSessions) ListByEvent(ctx context.Context, eventID string) ([]*domain.Session, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make([]*domain.Session, 0)
	for _, s := range r.f.sessions {
		if s.EventID == eventID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return domain.SessionIdentifierLess(out[i].Identifier, out[j].Identifier) })
	return out, nil
}

func (r fakeSessions) ListByEventForUpdate(ctx context.Context, eventID string) ([]*domain.Session, error) {
	return r.ListByEvent(ctx, eventID)
}

func (r fakeSessions) ListByIdentifiersForUpdate(ctx context.Context, eventID string, identifiers []string) ([]*domain.Session, error) {
	all, _ := r.ListByEvent(ctx, eventID)
	wanted := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = true
	}
	out := make([]*domain.Session, 0, len(identifiers))
	for _, s := range all {
		if wanted[s.Identifier] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeSessions) Update(ctx context.Context, s *domain.Session) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.sessions[s.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	if s.RegisteredCount < 0 || s.RegisteredCount > s.Capacity {
		return &pgconn.PgError{Code: database.CodeCheckViolation, ConstraintName: "chk_event_sessions_registered"}
	}
	cp := *s
	r.f.sessions[s.ID] = &cp
	return nil
}

func (r fakeSessions) Delete(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.f.sessions, id)
	return nil
}

// Ticket types

type fakeTicketTypes struct{ f *fakeStore }

var _ repository.TicketTypeRepository = fakeTicketTypes{}

func (r fakeTicketTypes) Create(ctx context.Context, t *domain.TicketType) error {
	r.f.addTicketType(t)
	return nil
}

func (r fakeTicketTypes) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.ticketTypes[id]
	if !ok {
		return nil, nil
	}
	return cloneTicketType(t), nil
}

func (r fakeTicketTypes) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make([]*domain.TicketType, 0)
	for _, t := range r.f.ticketTypes {
		if t.EventID == eventID {
			out = append(out, cloneTicketType(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r fakeTicketTypes) Update(ctx context.Context, t *domain.TicketType) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.ticketTypes[t.ID]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	r.f.ticketTypes[t.ID] = cloneTicketType(t)
	return nil
}

func (r fakeTicketTypes) Delete(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.ticketTypes[id]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	delete(r.f.ticketTypes, id)
	return nil
}

// Participations

type fakeParticipations struct{ f *fakeStore }

var _ repository.ParticipationRepository = fakeParticipations{}

func (r fakeParticipations) Create(ctx context.Context, p *domain.Participation) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.participations {
		if existing.EventID == p.EventID && existing.UserID == p.UserID && existing.Status == domain.ParticipationStatusActive {
			return domain.ErrAlreadyParticipating
		}
	}
	r.f.seq++
	r.f.order[p.ID] = r.f.seq
	r.f.participations[p.ID] = cloneParticipation(p)
	return nil
}

func (r fakeParticipations) Update(ctx context.Context, p *domain.Participation) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.participations[p.ID]; !ok {
		return domain.ErrParticipationNotFound
	}
	r.f.participations[p.ID] = cloneParticipation(p)
	return nil
}

func (r fakeParticipations) GetByID(ctx context.Context, id string) (*domain.Participation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.participations[id]
	if !ok {
		return nil, nil
	}
	return cloneParticipation(p), nil
}

func (r fakeParticipations) GetByIDForUpdate(ctx context.Context, id string) (*domain.Participation, error) {
	return r.GetByID(ctx, id)
}

// sorted returns matching rows newest first. Caller holds mu.
func (r fakeParticipations) sorted(match func(*domain.Participation) bool) []*domain.Participation {
	var out []*domain.Participation
	for _, p := range r.f.participations {
		if match(p) {
			out = append(out, cloneParticipation(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.f.order[out[i].ID] > r.f.order[out[j].ID] })
	return out
}

func (r fakeParticipations) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := r.sorted(func(p *domain.Participation) bool {
		return p.EventID == eventID && p.UserID == userID && p.Status == domain.ParticipationStatusActive
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r fakeParticipations) GetLatestByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := r.sorted(func(p *domain.Participation) bool {
		return p.EventID == eventID && p.UserID == userID
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r fakeParticipations) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	return r.f.activeCount(eventID), nil
}

func matchesFilter(p *domain.Participation, filter *repository.ParticipationFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Status != "" && string(p.Status) != filter.Status {
		return false
	}
	if filter.Type != "" && string(p.Type) != filter.Type {
		return false
	}
	return true
}

func (r fakeParticipations) ListByUser(ctx context.Context, userID string, filter *repository.ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := r.sorted(func(p *domain.Participation) bool {
		return p.UserID == userID && matchesFilter(p, filter)
	})
	return page(rows, limit, offset), len(rows), nil
}

func (r fakeParticipations) ListByEvent(ctx context.Context, eventID string, filter *repository.ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := r.sorted(func(p *domain.Participation) bool {
		return p.EventID == eventID && matchesFilter(p, filter)
	})
	return page(rows, limit, offset), len(rows), nil
}

// History

type fakeHistory struct{ f *fakeStore }

var _ repository.HistoryRepository = fakeHistory{}

func (r fakeHistory) Append(ctx context.Context, h *domain.ParticipationHistory) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *h
	r.f.history = append(r.f.history, &cp)
	return nil
}

func (r fakeHistory) ListByParticipation(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error) {
	return r.f.historyFor(participationID), nil
}
