package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

var ErrCommentNotFound = dao.ErrCommentNotFound

type CommentDAO interface {
	Insert(ctx context.Context, comment dao.Comment) (dao.Comment, error)
	FindByID(ctx context.Context, id string) (dao.Comment, error)
	FindByEventID(ctx context.Context, eventID string) ([]dao.Comment, error)
	Update(ctx context.Context, comment dao.Comment) (dao.Comment, error)
	Delete(ctx context.Context, id string) error
}

type CommentRepository struct {
	dao CommentDAO
}

func NewCommentRepository(dao CommentDAO) *CommentRepository {
	return &CommentRepository{
		dao: dao,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(comment))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (domain.Comment, error) {
	found, err := r.dao.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CommentRepository) FindByEventID(ctx context.Context, eventID string) ([]domain.Comment, error) {
	found, err := r.dao.FindByEventID(ctx, domain.NormalizeID(eventID))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	comments := make([]domain.Comment, 0, len(found))
	for _, c := range found {
		comments = append(comments, r.daoToDomain(c))
	}

	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	comment.UpdatedAt = time.Now()

	updated, err := r.dao.Update(ctx, r.domainToDAO(comment))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, domain.NormalizeID(id)); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *CommentRepository) domainToDAO(c domain.Comment) dao.Comment {
	return dao.Comment{
		ID:        c.ID,
		EventID:   domain.NormalizeID(c.EventID),
		UserID:    c.UserID,
		Content:   c.Content,
		Rating:    c.Rating,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r *CommentRepository) daoToDomain(c dao.Comment) domain.Comment {
	return domain.Comment{
		ID:        c.ID,
		EventID:   c.EventID,
		UserID:    c.UserID,
		Content:   c.Content,
		Rating:    c.Rating,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
