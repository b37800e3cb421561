package graph

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pkg/rules"
)

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     *string `json:"role"`
}

func (in *RegisterInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, rules.Password),
		validation.Field(&in.Role, rules.RoleIn()),
	)
}

func (in *RegisterInput) toDomain() domain.User {
	user := domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	}
	if in.Role != nil {
		user.Role = domain.Role(*in.Role)
	}

	return user
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (in *UpdateUserInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(2, 50)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&in.Role, validation.NilOrNotEmpty, rules.RoleIn()),
	)
}

func (in *UpdateUserInput) toPatch() domain.UserPatch {
	patch := domain.UserPatch{
		Name:  in.Name,
		Email: in.Email,
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		patch.Role = &role
	}

	return patch
}

type CreateEventInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Capacity    int32   `json:"capacity"`
	Category    string  `json:"category"`
	Status      *string `json:"status"`
	ImageURL    *string `json:"imageUrl"`
}

func (in *CreateEventInput) Validate(now func() time.Time) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(3, 100)),
		validation.Field(&in.Description, validation.Required, validation.Length(10, 2000)),
		validation.Field(&in.Date, validation.Required, rules.FutureDate(now)),
		validation.Field(&in.Location, validation.Required, validation.Length(3, 200)),
		validation.Field(&in.Capacity, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&in.Category, validation.Required, rules.EventCategoryIn()),
		validation.Field(&in.Status, rules.EventStatusIn()),
		validation.Field(&in.ImageURL, is.URL),
	)
}

// toDomain expects a validated input.
func (in *CreateEventInput) toDomain() domain.Event {
	date, _ := rules.ParseDate(in.Date)

	event := domain.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Location:    in.Location,
		Capacity:    int(in.Capacity),
		Category:    domain.EventCategory(in.Category),
	}
	if in.Status != nil {
		event.Status = domain.EventStatus(*in.Status)
	}
	if in.ImageURL != nil {
		event.ImageURL = *in.ImageURL
	}

	return event
}

type UpdateEventInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	Capacity    *int32  `json:"capacity"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	ImageURL    *string `json:"imageUrl"`
}

func (in *UpdateEventInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(3, 100)),
		validation.Field(&in.Description, validation.NilOrNotEmpty, validation.Length(10, 2000)),
		validation.Field(&in.Date, validation.NilOrNotEmpty, rules.Date),
		validation.Field(&in.Location, validation.NilOrNotEmpty, validation.Length(3, 200)),
		validation.Field(&in.Capacity, validation.NilOrNotEmpty, validation.Min(1), validation.Max(10000)),
		validation.Field(&in.Category, validation.NilOrNotEmpty, rules.EventCategoryIn()),
		validation.Field(&in.Status, validation.NilOrNotEmpty, rules.EventStatusIn()),
		validation.Field(&in.ImageURL, is.URL),
	)
}

func (in *UpdateEventInput) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
	}
	if in.Date != nil {
		date, _ := rules.ParseDate(*in.Date)
		patch.Date = &date
	}
	if in.Capacity != nil {
		capacity := int(*in.Capacity)
		patch.Capacity = &capacity
	}
	if in.Category != nil {
		category := domain.EventCategory(*in.Category)
		patch.Category = &category
	}
	if in.Status != nil {
		status := domain.EventStatus(*in.Status)
		patch.Status = &status
	}

	return patch
}

type CreateRegistrationInput struct {
	EventID graphql.ID `json:"eventId"`
	Notes   *string    `json:"notes"`
}

func (in *CreateRegistrationInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.EventID, validation.Required),
		validation.Field(&in.Notes, validation.Length(0, 500)),
	)
}

type UpdateRegistrationInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (in *UpdateRegistrationInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Status, validation.NilOrNotEmpty, rules.RegistrationStatusIn()),
		validation.Field(&in.Notes, validation.Length(0, 500)),
	)
}

func (in *UpdateRegistrationInput) toPatch() domain.RegistrationPatch {
	patch := domain.RegistrationPatch{Notes: in.Notes}
	if in.Status != nil {
		status := domain.RegistrationStatus(*in.Status)
		patch.Status = &status
	}

	return patch
}

type CreateCommentInput struct {
	EventID graphql.ID `json:"eventId"`
	Content string     `json:"content"`
	Rating  *int32     `json:"rating"`
}

func (in *CreateCommentInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.EventID, validation.Required),
		validation.Field(&in.Content, validation.Required, validation.Length(1, 1000)),
		validation.Field(&in.Rating, validation.NilOrNotEmpty, validation.Min(1), validation.Max(5)),
	)
}

func (in *CreateCommentInput) toDomain() domain.Comment {
	return domain.Comment{
		EventID: domain.NormalizeID(string(in.EventID)),
		Content: in.Content,
		Rating:  toIntPtr(in.Rating),
	}
}

type UpdateCommentInput struct {
	Content *string `json:"content"`
	Rating  *int32  `json:"rating"`
}

func (in *UpdateCommentInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Content, validation.NilOrNotEmpty, validation.Length(1, 1000)),
		validation.Field(&in.Rating, validation.NilOrNotEmpty, validation.Min(1), validation.Max(5)),
	)
}

func (in *UpdateCommentInput) toPatch() domain.CommentPatch {
	return domain.CommentPatch{
		Content: in.Content,
		Rating:  toIntPtr(in.Rating),
	}
}

func toIntPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	i := int(*v)

	return &i
}
