package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationStatus_IsActive(t *testing.T) {
	tests := []struct {
		status RegistrationStatus
		want   bool
	}{
		{RegistrationStatusPending, true},
		{RegistrationStatusConfirmed, true},
		{RegistrationStatusAttended, true},
		{RegistrationStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsActive())
		})
	}
}

func TestAverageRating(t *testing.T) {
	four, two := 4, 2

	assert.Nil(t, AverageRating(nil))
	assert.Nil(t, AverageRating([]Comment{{Content: "no rating"}}))

	avg := AverageRating([]Comment{{Rating: &four}, {Rating: &two}, {Content: "skipped"}})
	if assert.NotNil(t, avg) {
		assert.InDelta(t, 3.0, *avg, 0.0001)
	}
}

func TestEvent_AvailableSpots(t *testing.T) {
	assert.Equal(t, 3, Event{Capacity: 5, RegistrationsCount: 2}.AvailableSpots())
	assert.Equal(t, 0, Event{Capacity: 5, RegistrationsCount: 7}.AvailableSpots())
	assert.True(t, Event{Capacity: 5, RegistrationsCount: 5}.IsFull())
}

func TestEvent_Apply(t *testing.T) {
	title := "New title"
	capacity := 42
	e := Event{Title: "Old", Location: "Paris", Capacity: 10}

	e.Apply(EventPatch{Title: &title, Capacity: &capacity})

	assert.Equal(t, "New title", e.Title)
	assert.Equal(t, "Paris", e.Location)
	assert.Equal(t, 42, e.Capacity)
}

func TestViewer(t *testing.T) {
	anon := Viewer{}
	assert.False(t, anon.IsAuthenticated())
	assert.False(t, anon.Is(""))

	v := Viewer{UserID: "ABC-1", Role: RoleAdmin}
	assert.True(t, v.IsAdmin())
	assert.True(t, v.Is(" abc-1 "))
}
