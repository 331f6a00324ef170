package di

import (
	"github.com/prohmpiriya/community-events/internal/handler"
	"github.com/prohmpiriya/community-events/internal/repository"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/pkg/database"
	"github.com/prohmpiriya/community-events/pkg/redis"
)

// Container holds all dependencies for the community events service
type Container struct {
	// Infrastructure
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher

	// Repositories
	TxManager         repository.TxManager
	UserRepo          repository.UserRepository
	EventRepo         repository.EventRepository
	SessionRepo       repository.SessionRepository
	TicketTypeRepo    repository.TicketTypeRepository
	ParticipationRepo repository.ParticipationRepository
	HistoryRepo       repository.HistoryRepository

	// Services
	EventService         service.EventService
	SessionService       service.SessionService
	TicketTypeService    service.TicketTypeService
	AvailabilityService  service.AvailabilityService
	ParticipationService service.ParticipationService

	// Handlers
	HealthHandler        *handler.HealthHandler
	EventHandler         *handler.EventHandler
	SessionHandler       *handler.SessionHandler
	TicketTypeHandler    *handler.TicketTypeHandler
	ParticipationHandler *handler.ParticipationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	ServiceConfig  *service.ParticipationServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.TxManager = repository.NewPostgresTxManager(pool)
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.SessionRepo = repository.NewPostgresSessionRepository(pool)
	c.TicketTypeRepo = repository.NewPostgresTicketTypeRepository(pool)
	c.ParticipationRepo = repository.NewPostgresParticipationRepository(pool)
	c.HistoryRepo = repository.NewPostgresHistoryRepository(pool)

	// Initialize services
	c.EventService = service.NewEventService(c.TxManager, c.EventRepo, c.ParticipationRepo)
	c.SessionService = service.NewSessionService(c.TxManager, c.EventRepo, c.SessionRepo, c.TicketTypeRepo, c.ParticipationRepo)
	c.TicketTypeService = service.NewTicketTypeService(c.TxManager, c.EventRepo, c.SessionRepo, c.TicketTypeRepo, c.ParticipationRepo)
	c.AvailabilityService = service.NewAvailabilityService(c.EventRepo, c.SessionRepo, c.TicketTypeRepo, c.ParticipationRepo)
	c.ParticipationService = service.NewParticipationService(service.ParticipationRepositories{
		Tx:             c.TxManager,
		Users:          c.UserRepo,
		Events:         c.EventRepo,
		Sessions:       c.SessionRepo,
		TicketTypes:    c.TicketTypeRepo,
		Participations: c.ParticipationRepo,
		History:        c.HistoryRepo,
	}, c.EventPublisher, cfg.ServiceConfig)

	// Initialize handlers
	checks := map[string]handler.HealthChecker{"database": c.DB}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	} else {
		checks["redis"] = nil
	}
	c.HealthHandler = handler.NewHealthHandler(checks)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.AvailabilityService)
	c.SessionHandler = handler.NewSessionHandler(c.SessionService)
	c.TicketTypeHandler = handler.NewTicketTypeHandler(c.TicketTypeService)
	c.ParticipationHandler = handler.NewParticipationHandler(c.ParticipationService)

	return c
}

// Close releases resources owned by the container
func (c *Container) Close() error {
	return c.EventPublisher.Close()
}
