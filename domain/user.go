package domain

import (
	"context"
	"slices"
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID              string    // Unique identifier
	Nickname        string    // Display name (unique)
	Email           string    // Login email (unique)
	Password        string    // Bcrypt hashed password
	LikedFeedIDs    []string  // Feeds the user liked
	LikedCommentIDs []string  // Comments the user liked
	CreatedAt       time.Time // Account creation timestamp
	UpdatedAt       time.Time // Last profile update timestamp
}

// HasLikedFeed reports whether feedID is in the liked feed set.
func (u *User) HasLikedFeed(feedID string) bool {
	return slices.Contains(u.LikedFeedIDs, feedID)
}

// HasLikedComment reports whether commentID is in the liked comment set.
func (u *User) HasLikedComment(commentID string) bool {
	return slices.Contains(u.LikedCommentIDs, commentID)
}

// UserRepository defines the contract for user data persistence.
type UserRepository interface {
	// GetByID retrieves a user by their ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, s Session, id string) (User, error)

	// GetForUpdate is GetByID holding a row lock until the session ends.
	GetForUpdate(ctx context.Context, s Session, id string) (User, error)

	// Insert creates a new user account. An empty ID is allocated.
	Insert(ctx context.Context, u *User) error

	// UpdateLikedFeeds replaces the liked feed set.
	UpdateLikedFeeds(ctx context.Context, s Session, id string, feedIDs []string) error

	// UpdateLikedComments replaces the liked comment set.
	UpdateLikedComments(ctx context.Context, s Session, id string, commentIDs []string) error

	// Delete removes the user record.
	Delete(ctx context.Context, s Session, id string) error
}

// UserUsecase defines the business logic contract for user operations.
type UserUsecase interface {
	// Withdraw deletes the account and everything it owns. Blob cleanup runs
	// first; if it fails nothing is deleted.
	Withdraw(ctx context.Context, userID, password string) error
}
