package dto

import (
	"testing"
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventRequest_Validate(t *testing.T) {
	start := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     CreateEventRequest
		want    bool
		wantMsg string
	}{
		{
			name:    "valid request",
			req:     CreateEventRequest{Title: "Social", Type: "social", Capacity: 40, StartDate: start, EndDate: start.Add(2 * time.Hour)},
			want:    true,
			wantMsg: "",
		},
		{
			name:    "missing title",
			req:     CreateEventRequest{Type: "social", Capacity: 40, StartDate: start, EndDate: start.Add(time.Hour)},
			want:    false,
			wantMsg: "Event title is required",
		},
		{
			name:    "capacity above limit",
			req:     CreateEventRequest{Title: "Big", Type: "class", Capacity: 1001, StartDate: start, EndDate: start.Add(time.Hour)},
			want:    false,
			wantMsg: "Capacity must be between 1 and 1000",
		},
		{
			name:    "end before start",
			req:     CreateEventRequest{Title: "Backwards", Type: "class", Capacity: 10, StartDate: start, EndDate: start.Add(-time.Hour)},
			want:    false,
			wantMsg: "End date must be after start date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := tt.req.Validate()
			if got != tt.want {
				t.Errorf("Validate() got = %v, want %v", got, tt.want)
			}
			if msg != tt.wantMsg {
				t.Errorf("Validate() msg = %v, want %v", msg, tt.wantMsg)
			}
		})
	}
}

func TestUpdateEventRequest_Validate(t *testing.T) {
	zero := 0
	ok, msg := (&UpdateEventRequest{Capacity: &zero}).Validate()
	assert.False(t, ok)
	assert.Equal(t, "Capacity must be between 1 and 1000", msg)

	ok, _ = (&UpdateEventRequest{}).Validate()
	assert.True(t, ok)
}

func TestPagination_SetDefaults(t *testing.T) {
	p := Pagination{Page: 0, PerPage: 500}
	p.SetDefaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PerPage: 10}
	p.SetDefaults()
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, 20, p.Offset())
}

func TestCreateSessionRequest_Details(t *testing.T) {
	req := CreateSessionRequest{
		Identifier: "S1",
		Date:       "2030-03-14",
		StartTime:  "09:00",
		EndTime:    "12:30",
		Capacity:   20,
	}
	d, err := req.Details()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC), d.Date)
	assert.Equal(t, 9*time.Hour, d.StartTime)
	assert.Equal(t, 12*time.Hour+30*time.Minute, d.EndTime)

	req.StartTime = "9am"
	_, err = req.Details()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateSessionRequest_Apply(t *testing.T) {
	s := &domain.Session{
		Name:      "Morning",
		Date:      time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: 9 * time.Hour,
		EndTime:   12 * time.Hour,
		Capacity:  20,
	}
	capacity := 25
	end := "13:00"
	d, err := (&UpdateSessionRequest{Capacity: &capacity, EndTime: &end}).Apply(s)
	require.NoError(t, err)
	assert.Equal(t, "Morning", d.Name)
	assert.Equal(t, 25, d.Capacity)
	assert.Equal(t, 9*time.Hour, d.StartTime)
	assert.Equal(t, 13*time.Hour, d.EndTime)

	bad := "14/03/2030"
	_, err = (&UpdateSessionRequest{Date: &bad}).Apply(s)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateTicketTypeRequest_Apply(t *testing.T) {
	tt := &domain.TicketType{Name: "Full", SessionIdentifiers: []string{"S1", "S2"}, IsActive: true}
	inactive := false
	ids := []string{"S1"}
	(&UpdateTicketTypeRequest{IsActive: &inactive, SessionIdentifiers: &ids}).Apply(tt)
	assert.Equal(t, "Full", tt.Name)
	assert.False(t, tt.IsActive)
	assert.Equal(t, []string{"S1"}, tt.SessionIdentifiers)
}

func TestToParticipationStatusResponse(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := domain.NewParticipation("event-1", "user-1", domain.ParticipationTypeRSVP, now)
	resp := ToParticipationStatusResponse(&domain.ParticipationView{Participation: p, CanCancel: true})

	assert.Equal(t, "rsvp", resp.Type)
	assert.Equal(t, "active", resp.Status)
	assert.True(t, resp.CanCancel)
	assert.Equal(t, "2030-01-01T00:00:00Z", resp.CreatedAt)
	assert.Nil(t, resp.CancelledAt)
	assert.NotNil(t, resp.SessionIdentifiers)
}

func TestToHistoryResponses_NullOldValue(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := domain.NewParticipation("event-1", "user-1", domain.ParticipationTypeTicket, now)
	h := domain.NewHistory(p, domain.HistoryActionCreated, nil, "user-1", "", now)

	out := ToHistoryResponses([]*domain.ParticipationHistory{h})
	require.Len(t, out, 1)
	assert.Equal(t, "null", string(out[0].OldValue))
	assert.Equal(t, "Created", out[0].Action)
}
