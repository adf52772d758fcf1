package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an API account able to post comments.
type User struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedDate  time.Time `db:"created_date"`
}

// Comment belongs to one news record and one user.
type Comment struct {
	ID          string    `db:"id" json:"comment_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	NewsID      string    `db:"news_id" json:"news_id"`
	Content     string    `db:"comment_content" json:"comment_content"`
	CreatedDate time.Time `db:"created_date" json:"created_date"`
}

// ValidateID checks that an external identifier has the shape of a public record id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidIdentifier
	}
	return nil
}
