package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/accounts-be/internal/models"
)

const defaultEventHistory = 100

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, userID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventPublisher receives every event after it has been recorded.
type EventPublisher interface {
	PublishEvent(event models.Event)
}

// EventService keeps a bounded in-memory history of events and forwards them
// to an optional publisher.
type EventService struct {
	mu        sync.RWMutex
	events    []models.Event // oldest first
	limit     int
	publisher EventPublisher
}

// NewEventService creates a new EventService keeping at most history events.
// publisher may be nil.
func NewEventService(history int, publisher EventPublisher) *EventService {
	if history <= 0 {
		history = defaultEventHistory
	}
	return &EventService{limit: history, publisher: publisher}
}

// CreateEvent records a new event.
func (s *EventService) CreateEvent(eventType, level, message string, userID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	if over := len(s.events) - s.limit; over > 0 {
		s.events = append(s.events[:0:0], s.events[over:]...)
	}
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.PublishEvent(event)
	}
	return nil
}

// GetRecentEvents returns up to limit events, most recent first.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	events := make([]models.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, s.events[i])
	}
	return events, nil
}
