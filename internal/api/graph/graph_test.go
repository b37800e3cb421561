package graph

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

type MockEventService struct {
	mock.Mock
	EventService
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventService) CreateEvent(ctx context.Context, viewer domain.Viewer, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, viewer, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, viewer domain.Viewer, id string, patch domain.EventPatch) (domain.Event, error) {
	args := m.Called(ctx, viewer, id, patch)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventService) CanManage(viewer domain.Viewer, event domain.Event) bool {
	args := m.Called(viewer, event)
	return args.Bool(0)
}

type stubComments struct {
	CommentService
	avg *float64
}

func (s stubComments) AverageRating(context.Context, string) (*float64, error) {
	return s.avg, nil
}

var (
	testNow   = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	organizer = domain.Viewer{UserID: "org-1", Role: domain.RoleOrganizer}
)

func newTestSchema(t *testing.T, svc Services, sub pubsub.Subscriber) *graphql.Schema {
	t.Helper()

	resolver := NewResolver(svc, sub)
	resolver.now = func() time.Time { return testNow }

	schema, err := NewSchema(resolver)
	require.NoError(t, err)

	return schema
}

func firstErrorCode(t *testing.T, resp *graphql.Response) string {
	t.Helper()
	require.NotEmpty(t, resp.Errors)

	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

func TestNewSchema(t *testing.T) {
	_, err := NewSchema(NewResolver(Services{}, nil))
	assert.NoError(t, err)
}

func TestEventsQuery(t *testing.T) {
	events := new(MockEventService)
	events.On("ListEvents", mock.Anything, domain.EventFilter{
		Status:      domain.EventStatusPublished,
		Category:    domain.EventCategoryWorkshop,
		OrganizerID: "org-1",
		Limit:       10,
	}).Return([]domain.Event{
		{ID: "ev1", Title: "Go Workshop", Capacity: 10, RegistrationsCount: 4, Category: domain.EventCategoryWorkshop, Status: domain.EventStatusPublished},
	}, nil)

	avg := 4.5
	schema := newTestSchema(t, Services{Events: events, Comments: stubComments{avg: &avg}}, nil)

	resp := schema.Exec(context.Background(), `
		query {
			events(status: PUBLISHED, category: WORKSHOP, organizerId: " ORG-1 ", limit: 10) {
				id title availableSpots averageRating imageUrl
			}
		}`, "", nil)
	require.Empty(t, resp.Errors)

	var data struct {
		Events []struct {
			ID             string   `json:"id"`
			Title          string   `json:"title"`
			AvailableSpots int      `json:"availableSpots"`
			AverageRating  *float64 `json:"averageRating"`
			ImageURL       *string  `json:"imageUrl"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Events, 1)
	assert.Equal(t, "ev1", data.Events[0].ID)
	assert.Equal(t, 6, data.Events[0].AvailableSpots)
	assert.Equal(t, 4.5, *data.Events[0].AverageRating)
	assert.Nil(t, data.Events[0].ImageURL)
	events.AssertExpectations(t)
}

func TestEventsQuery_RejectsNegativeLimit(t *testing.T) {
	schema := newTestSchema(t, Services{Events: new(MockEventService)}, nil)

	resp := schema.Exec(context.Background(), `{ events(limit: -1) { id } }`, "", nil)
	assert.Equal(t, "VALIDATION_ERROR", firstErrorCode(t, resp))
}

func TestEventQuery_NotFound(t *testing.T) {
	events := new(MockEventService)
	events.On("GetEvent", mock.Anything, "nope").Return(domain.Event{}, service.ErrEventNotFound)
	schema := newTestSchema(t, Services{Events: events}, nil)

	resp := schema.Exec(context.Background(), `{ event(id: "nope") { id } }`, "", nil)
	assert.Equal(t, "NOT_FOUND", firstErrorCode(t, resp))
	assert.Equal(t, "Event not found", resp.Errors[0].Message)
	assert.Equal(t, 404, resp.Errors[0].Extensions["statusCode"])
}

const createEventMutation = `
	mutation($input: CreateEventInput!) {
		createEvent(input: $input) { id organizerId status }
	}`

func validCreateEventInput() map[string]interface{} {
	return map[string]interface{}{
		"input": map[string]interface{}{
			"title":       "GopherCon EU",
			"description": "Two days of Go talks",
			"date":        "2030-06-01T09:00:00Z",
			"location":    "Berlin",
			"capacity":    100,
			"category":    "CONFERENCE",
		},
	}
}

func TestCreateEvent(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		schema := newTestSchema(t, Services{Events: new(MockEventService)}, nil)

		resp := schema.Exec(context.Background(), createEventMutation, "", validCreateEventInput())
		assert.Equal(t, "UNAUTHENTICATED", firstErrorCode(t, resp))
		assert.Equal(t, "Authentication required", resp.Errors[0].Message)
	})

	t.Run("past date", func(t *testing.T) {
		schema := newTestSchema(t, Services{Events: new(MockEventService)}, nil)
		vars := validCreateEventInput()
		vars["input"].(map[string]interface{})["date"] = "2020-01-01T00:00:00Z"

		ctx := middleware.WithViewer(context.Background(), organizer)
		resp := schema.Exec(ctx, createEventMutation, "", vars)
		assert.Equal(t, "VALIDATION_ERROR", firstErrorCode(t, resp))

		fields, ok := resp.Errors[0].Extensions["fields"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, fields, "date")
	})

	t.Run("organizer", func(t *testing.T) {
		events := new(MockEventService)
		events.On("CreateEvent", mock.Anything, organizer, mock.MatchedBy(func(e domain.Event) bool {
			return e.Title == "GopherCon EU" && e.Capacity == 100 && e.Date.Equal(time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC))
		})).Return(domain.Event{ID: "ev1", OrganizerID: "org-1", Status: domain.EventStatusPublished}, nil)
		schema := newTestSchema(t, Services{Events: events}, nil)

		ctx := middleware.WithViewer(context.Background(), organizer)
		resp := schema.Exec(ctx, createEventMutation, "", validCreateEventInput())
		require.Empty(t, resp.Errors)
		assert.JSONEq(t, `{"createEvent":{"id":"ev1","organizerId":"org-1","status":"PUBLISHED"}}`, string(resp.Data))
		events.AssertExpectations(t)
	})
}

func TestUpdateEvent_NotOwner(t *testing.T) {
	events := new(MockEventService)
	events.On("UpdateEvent", mock.Anything, mock.Anything, "ev1", mock.Anything).Return(domain.Event{}, service.ErrNotOwner)
	schema := newTestSchema(t, Services{Events: events}, nil)

	ctx := middleware.WithViewer(context.Background(), domain.Viewer{UserID: "someone", Role: domain.RoleUser})
	resp := schema.Exec(ctx, `mutation { updateEvent(id: "EV1", input: {title: "New title"}) { id } }`, "", nil)

	assert.Equal(t, "UNAUTHORIZED", firstErrorCode(t, resp))
	assert.Equal(t, "Unauthorized", resp.Errors[0].Message)
}

func TestCommentAddedSubscription_FiltersByEvent(t *testing.T) {
	broker := pubsub.NewBroker(8, zap.NewNop())
	t.Cleanup(func() { _ = broker.Close() })

	schema := newTestSchema(t, Services{}, broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := schema.Subscribe(ctx, `subscription { commentAdded(eventId: " EV1 ") { id eventId content } }`, "", nil)
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, pubsub.TopicCommentAdded, domain.Comment{ID: "c0", EventID: "ev2", Content: "other"}))
	require.NoError(t, broker.Publish(ctx, pubsub.TopicCommentAdded, domain.Comment{ID: "c1", EventID: "ev1", Content: "mine"}))

	select {
	case r := <-results:
		resp, ok := r.(*graphql.Response)
		require.True(t, ok)
		require.Empty(t, resp.Errors)
		assert.JSONEq(t, `{"commentAdded":{"id":"c1","eventId":"ev1","content":"mine"}}`, string(resp.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("no subscription result")
	}
}
