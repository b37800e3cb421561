package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/authz"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository"
)

var (
	ErrUserNotFound     = repository.ErrUserNotFound
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

type UserService struct {
	repo  UserRepository
	authz Authorizer
}

func NewUserService(repo UserRepository, authz Authorizer) *UserService {
	return &UserService{
		repo:  repo,
		authz: authz,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, viewer domain.Viewer) ([]domain.User, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if !s.authz.Can(viewer.Role, authz.ObjectUsers, authz.ActionList) {
		return nil, ErrForbidden
	}

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

// UpdateUser lets users edit their own profile. Role changes and edits of
// other accounts need the users manage permission.
func (s *UserService) UpdateUser(ctx context.Context, viewer domain.Viewer, id string, patch domain.UserPatch) (domain.User, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.User{}, err
	}

	canManage := s.authz.Can(viewer.Role, authz.ObjectUsers, authz.ActionManage)
	if !viewer.Is(id) && !canManage {
		return domain.User{}, ErrNotOwner
	}
	if patch.Role != nil && !canManage {
		return domain.User{}, ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	user.Apply(patch)

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	if !s.authz.Can(viewer.Role, authz.ObjectUsers, authz.ActionManage) {
		return ErrForbidden
	}
	if viewer.Is(id) {
		return ErrCannotDeleteSelf
	}

	if err := s.repo.Delete(ctx, domain.NormalizeID(id)); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
