package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Validation(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		typ      EventType
		capacity int
		end      time.Time
		title    string
		wantErr  bool
	}{
		{name: "valid", typ: EventTypeSocial, capacity: 40, end: start.Add(3 * time.Hour), title: "Mixer"},
		{name: "minimum duration", typ: EventTypeClass, capacity: 1, end: start.Add(30 * time.Minute), title: "Intro"},
		{name: "maximum duration", typ: EventTypeClass, capacity: 1000, end: start.Add(24 * time.Hour), title: "Intensive"},
		{name: "too short", typ: EventTypeClass, capacity: 10, end: start.Add(29 * time.Minute), title: "Short", wantErr: true},
		{name: "too long", typ: EventTypeClass, capacity: 10, end: start.Add(24*time.Hour + time.Minute), title: "Long", wantErr: true},
		{name: "end before start", typ: EventTypeSocial, capacity: 10, end: start.Add(-time.Hour), title: "Backwards", wantErr: true},
		{name: "capacity zero", typ: EventTypeSocial, capacity: 0, end: start.Add(time.Hour), title: "Empty", wantErr: true},
		{name: "capacity over max", typ: EventTypeSocial, capacity: 1001, end: start.Add(time.Hour), title: "Huge", wantErr: true},
		{name: "unknown type", typ: EventType("party"), capacity: 10, end: start.Add(time.Hour), title: "Party", wantErr: true},
		{name: "blank title", typ: EventTypeSocial, capacity: 10, end: start.Add(time.Hour), title: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEvent(tt.title, "", "Hall", tt.typ, tt.capacity, start, tt.end, testNow)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.False(t, e.IsPublished)
			assert.NotEmpty(t, e.ID)
		})
	}
}

func TestEvent_HasConcluded(t *testing.T) {
	e := &Event{EndDate: testNow}
	assert.False(t, e.HasConcluded(testNow.Add(-time.Second)))
	assert.True(t, e.HasConcluded(testNow))
	assert.True(t, e.HasConcluded(testNow.Add(time.Second)))
}

func TestEvent_Accepts(t *testing.T) {
	social := &Event{Type: EventTypeSocial}
	class := &Event{Type: EventTypeClass}
	members := &Event{Type: EventTypeMemberOnly}

	assert.True(t, social.Accepts(ParticipationTypeRSVP))
	assert.False(t, social.Accepts(ParticipationTypeTicket))
	assert.True(t, class.Accepts(ParticipationTypeTicket))
	assert.False(t, class.Accepts(ParticipationTypeRSVP))
	assert.False(t, members.Accepts(ParticipationTypeRSVP))
	assert.False(t, members.Accepts(ParticipationTypeTicket))
}
