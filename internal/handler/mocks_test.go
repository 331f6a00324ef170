package handler

import (
	"context"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/stretchr/testify/mock"
)

// MockParticipationService is a testify mock of service.ParticipationService
type MockParticipationService struct {
	mock.Mock
}

func (m *MockParticipationService) GetParticipationStatus(ctx context.Context, eventID, userID string) (*domain.ParticipationView, error) {
	args := m.Called(ctx, eventID, userID)
	v, _ := args.Get(0).(*domain.ParticipationView)
	return v, args.Error(1)
}

func (m *MockParticipationService) CreateRSVP(ctx context.Context, eventID, userID string, req *dto.CreateRSVPRequest) (*domain.ParticipationView, error) {
	args := m.Called(ctx, eventID, userID, req)
	v, _ := args.Get(0).(*domain.ParticipationView)
	return v, args.Error(1)
}

func (m *MockParticipationService) CreateTicketPurchase(ctx context.Context, eventID, userID string, req *dto.CreateTicketPurchaseRequest) (*domain.ParticipationView, error) {
	args := m.Called(ctx, eventID, userID, req)
	v, _ := args.Get(0).(*domain.ParticipationView)
	return v, args.Error(1)
}

func (m *MockParticipationService) CancelParticipation(ctx context.Context, eventID, userID string, req *dto.CancelParticipationRequest) (*domain.ParticipationView, error) {
	args := m.Called(ctx, eventID, userID, req)
	v, _ := args.Get(0).(*domain.ParticipationView)
	return v, args.Error(1)
}

func (m *MockParticipationService) GetUserParticipations(ctx context.Context, userID string, filter *dto.ParticipationListFilter) ([]*domain.UserParticipationSummary, int, error) {
	args := m.Called(ctx, userID, filter)
	v, _ := args.Get(0).([]*domain.UserParticipationSummary)
	return v, args.Int(1), args.Error(2)
}

func (m *MockParticipationService) GetEventParticipations(ctx context.Context, eventID string, filter *dto.ParticipationListFilter) ([]*domain.EventParticipationSummary, int, error) {
	args := m.Called(ctx, eventID, filter)
	v, _ := args.Get(0).([]*domain.EventParticipationSummary)
	return v, args.Int(1), args.Error(2)
}

func (m *MockParticipationService) GetParticipationHistory(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error) {
	args := m.Called(ctx, participationID)
	v, _ := args.Get(0).([]*domain.ParticipationHistory)
	return v, args.Error(1)
}

// MockEventService is a testify mock of service.EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*domain.Event)
	return v, args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Event)
	return v, args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*domain.Event)
	return v, args.Int(1), args.Error(2)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*domain.Event)
	return v, args.Error(1)
}

func (m *MockEventService) PublishEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Event)
	return v, args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAvailabilityService is a testify mock of service.AvailabilityService
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) GetEventAvailability(ctx context.Context, eventID string) (*domain.EventAvailability, error) {
	args := m.Called(ctx, eventID)
	v, _ := args.Get(0).(*domain.EventAvailability)
	return v, args.Error(1)
}

// MockSessionService is a testify mock of service.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) CreateSession(ctx context.Context, eventID string, req *dto.CreateSessionRequest) (*domain.Session, error) {
	args := m.Called(ctx, eventID, req)
	v, _ := args.Get(0).(*domain.Session)
	return v, args.Error(1)
}

func (m *MockSessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Session)
	return v, args.Error(1)
}

func (m *MockSessionService) ListSessions(ctx context.Context, eventID string) ([]*domain.Session, error) {
	args := m.Called(ctx, eventID)
	v, _ := args.Get(0).([]*domain.Session)
	return v, args.Error(1)
}

func (m *MockSessionService) UpdateSession(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*domain.SessionUpdate, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*domain.SessionUpdate)
	return v, args.Error(1)
}

func (m *MockSessionService) DeleteSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockTicketTypeService is a testify mock of service.TicketTypeService
type MockTicketTypeService struct {
	mock.Mock
}

func (m *MockTicketTypeService) CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error) {
	args := m.Called(ctx, eventID, req)
	v, _ := args.Get(0).(*domain.TicketTypeWithAvailability)
	return v, args.Error(1)
}

func (m *MockTicketTypeService) GetTicketType(ctx context.Context, id string) (*domain.TicketTypeWithAvailability, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.TicketTypeWithAvailability)
	return v, args.Error(1)
}

func (m *MockTicketTypeService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketTypeWithAvailability, error) {
	args := m.Called(ctx, eventID)
	v, _ := args.Get(0).([]domain.TicketTypeWithAvailability)
	return v, args.Error(1)
}

func (m *MockTicketTypeService) UpdateTicketType(ctx context.Context, id string, req *dto.UpdateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*domain.TicketTypeWithAvailability)
	return v, args.Error(1)
}

func (m *MockTicketTypeService) DeleteTicketType(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
