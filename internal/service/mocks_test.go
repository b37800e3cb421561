package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, domain.User) domain.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventRepository) FindAll(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	if fn, ok := args.Get(0).(func(context.Context, domain.Event) domain.Event); ok {
		return fn(ctx, event), args.Error(1)
	}
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Registration, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByEventID(ctx context.Context, eventID string) ([]domain.Registration, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Update(ctx context.Context, registration domain.Registration, previous domain.RegistrationStatus) (domain.Registration, error) {
	args := m.Called(ctx, registration, previous)
	if fn, ok := args.Get(0).(func(context.Context, domain.Registration, domain.RegistrationStatus) domain.Registration); ok {
		return fn(ctx, registration, previous), args.Error(1)
	}
	return args.Get(0).(domain.Registration), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id string) (domain.Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindByEventID(ctx context.Context, eventID string) ([]domain.Comment, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	args := m.Called(ctx, comment)
	if fn, ok := args.Get(0).(func(context.Context, domain.Comment) domain.Comment); ok {
		return fn(ctx, comment), args.Error(1)
	}
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}
