package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrRegistrationExists   = dao.ErrRegistrationExists
	ErrRegistrationChanged  = dao.ErrRegistrationChanged
)

type RegistrationDAO interface {
	Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id string) (dao.Registration, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Registration, error)
	FindByEventID(ctx context.Context, eventID string) ([]dao.Registration, error)
	Update(ctx context.Context, registration dao.Registration, wasActive bool) (dao.Registration, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

// Create stores the registration and takes a seat on its event when active.
func (r *RegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(registration))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Registration, error) {
	found, err := r.dao.FindByUserID(ctx, domain.NormalizeID(userID))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RegistrationRepository) FindByEventID(ctx context.Context, eventID string) ([]domain.Registration, error) {
	found, err := r.dao.FindByEventID(ctx, domain.NormalizeID(eventID))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

// Update stores the registration unless another request changed whether it
// holds a seat since previous was read. The event counter follows the change.
func (r *RegistrationRepository) Update(ctx context.Context, registration domain.Registration, previous domain.RegistrationStatus) (domain.Registration, error) {
	registration.UpdatedAt = time.Now()

	updated, err := r.dao.Update(ctx, r.domainToDAO(registration), previous.IsActive())
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RegistrationRepository) domainToDAO(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:        reg.ID,
		EventID:   domain.NormalizeID(reg.EventID),
		UserID:    reg.UserID,
		Status:    string(reg.Status),
		Notes:     reg.Notes,
		Active:    reg.IsActive(),
		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:        reg.ID,
		EventID:   reg.EventID,
		UserID:    reg.UserID,
		Status:    domain.RegistrationStatus(reg.Status),
		Notes:     reg.Notes,
		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
}

func (r *RegistrationRepository) daosToDomain(found []dao.Registration) []domain.Registration {
	registrations := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		registrations = append(registrations, r.daoToDomain(reg))
	}

	return registrations
}
