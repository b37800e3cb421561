package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

// User is stored by both backends. The bson tags serve the mongo DAOs.
type User struct {
	ID string `gorm:"type:uuid;primaryKey" bson:"_id"`

	Name     string `gorm:"not null" bson:"name"`
	Email    string `gorm:"uniqueIndex:idx_users_email;not null" bson:"email"`
	Password string `gorm:"not null" bson:"password"`
	Role     string `gorm:"not null;default:USER" bson:"role"`

	CreatedAt time.Time `gorm:"not null" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}

	return nil
}

// NewID returns a fresh record ID.
func NewID() string {
	return uuid.NewString()
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_users_email") {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id string) (User, error) {
	if !IsValidID(id) {
		return User{}, ErrUserNotFound
	}

	var user User
	result := d.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	result := d.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	result := d.db.WithContext(ctx).Order("created_at asc").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).
		Model(&User{ID: user.ID}).
		Select("name", "email", "role", "updated_at").
		Updates(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_users_email") {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.FindByID(ctx, user.ID)
}

func (d *UserDAO) Delete(ctx context.Context, id string) error {
	if !IsValidID(id) {
		return ErrUserNotFound
	}

	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// IsValidID avoids sending malformed IDs to a uuid column, which postgres rejects with an error.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}
