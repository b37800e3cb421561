package domain

import "time"

type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentPatch struct {
	Content *string
	Rating  *int
}

func (c *Comment) Apply(p CommentPatch) {
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.Rating != nil {
		c.Rating = p.Rating
	}
}

// AverageRating returns the mean rating of the rated comments, or nil when none is rated.
func AverageRating(comments []Comment) *float64 {
	var sum, n int
	for _, c := range comments {
		if c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}

	avg := float64(sum) / float64(n)

	return &avg
}
