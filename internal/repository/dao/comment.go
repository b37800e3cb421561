package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type Comment struct {
	ID string `gorm:"type:uuid;primaryKey" bson:"_id"`

	EventID string `gorm:"type:uuid;not null;index" bson:"eventId"`
	UserID  string `gorm:"type:uuid;not null;index" bson:"userId"`
	Content string `gorm:"not null" bson:"content"`
	Rating  *int   `bson:"rating,omitempty"`

	CreatedAt time.Time `gorm:"not null" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updatedAt"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}

	return nil
}

type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{
		db: db,
	}
}

func (d *CommentDAO) Insert(ctx context.Context, comment Comment) (Comment, error) {
	result := d.db.WithContext(ctx).Create(&comment)
	if result.Error != nil {
		return Comment{}, result.Error
	}

	return comment, nil
}

func (d *CommentDAO) FindByID(ctx context.Context, id string) (Comment, error) {
	if !IsValidID(id) {
		return Comment{}, ErrCommentNotFound
	}

	var comment Comment
	result := d.db.WithContext(ctx).Where("id = ?", id).First(&comment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Comment{}, ErrCommentNotFound
		}

		return Comment{}, result.Error
	}

	return comment, nil
}

func (d *CommentDAO) FindByEventID(ctx context.Context, eventID string) ([]Comment, error) {
	if !IsValidID(eventID) {
		return []Comment{}, nil
	}

	var comments []Comment
	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at asc").Find(&comments)
	if result.Error != nil {
		return nil, result.Error
	}

	return comments, nil
}

func (d *CommentDAO) Update(ctx context.Context, comment Comment) (Comment, error) {
	if !IsValidID(comment.ID) {
		return Comment{}, ErrCommentNotFound
	}

	result := d.db.WithContext(ctx).
		Model(&Comment{ID: comment.ID}).
		Select("content", "rating", "updated_at").
		Updates(&comment)
	if result.Error != nil {
		return Comment{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Comment{}, ErrCommentNotFound
	}

	return d.FindByID(ctx, comment.ID)
}

func (d *CommentDAO) Delete(ctx context.Context, id string) error {
	if !IsValidID(id) {
		return ErrCommentNotFound
	}

	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}
