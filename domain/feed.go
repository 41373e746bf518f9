package domain

import (
	"context"
	"slices"
	"time"
)

// Feed is representing the Feed data struct
type Feed struct {
	ID            string    // Unique identifier, allocated before persisting
	Title         string    // Feed title
	Content       string    // Feed body content
	TravelDate    string    // Date of the trip, free form
	AirportName   string    // Airport the feed is pinned to
	LikeCount     int64     // Number of users whose liked set holds this feed
	ViewCount     int64     // Number of fresh views already written back
	CommentIDs    []string  // Comments in creation order
	SubCommentIDs []string  // Sub-comments in creation order
	ImageIDs      []string  // Attached images
	LocationID    string    // Attached location
	WriterID      string    // Owner
	CreatedAt     time.Time // Creation timestamp
	UpdatedAt     time.Time // Last update timestamp
}

// Location is the place a feed is pinned to.
type Location struct {
	ID        string
	WriterID  string
	FeedID    string
	Address   string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

// Image is the record of a blob stored in the object storage.
type Image struct {
	ID        string
	WriterID  string
	FeedID    string
	Key       string // blob store object key
	Path      string
	Name      string
	CreatedAt time.Time
}

// NewLocation is the location part of a create feed request.
type NewLocation struct {
	Address string
	Lat     float64
	Lng     float64
}

// NewFeed carries everything needed to create a feed. Images were already
// uploaded by the file intake.
type NewFeed struct {
	Title       string
	Content     string
	TravelDate  string
	AirportName string
	Location    NewLocation
	Images      []UploadedFile
}

// FeedDetail is a feed with its references resolved.
type FeedDetail struct {
	Feed
	Writer   User
	Location Location
	Images   []Image
	Comments []CommentDetail
}

// HasComment reports whether the comment is referenced by the feed.
func (f *Feed) HasComment(commentID string) bool {
	return slices.Contains(f.CommentIDs, commentID)
}

// FeedRepository defines the contract for feed persistence.
// Every method taking a Session joins that transaction; a nil Session runs
// the call on its own.
type FeedRepository interface {
	// GetByID retrieves a single feed.
	// Returns ErrNotFound if the feed doesn't exist.
	GetByID(ctx context.Context, s Session, id string) (Feed, error)

	// Create inserts the feed with its preallocated ID.
	Create(ctx context.Context, s Session, f *Feed) error

	// Delete removes a feed by its ID.
	// Returns ErrNotFound if not exists
	Delete(ctx context.Context, s Session, id string) error

	// DeleteByWriter removes every feed owned by the writer.
	DeleteByWriter(ctx context.Context, s Session, writerID string) error

	// FetchIDsByWriter returns the IDs of the feeds owned by the writer.
	FetchIDsByWriter(ctx context.Context, s Session, writerID string) ([]string, error)

	// FetchIDs pages through all feed IDs in ascending order, starting after cursor.
	FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error)

	// AddLikes adds delta to the like count with a single atomic update.
	AddLikes(ctx context.Context, s Session, id string, delta int64) error

	// AddViews adds delta to the view count with a single atomic update.
	// Returns ErrNotFound if the feed doesn't exist.
	AddViews(ctx context.Context, id string, delta int64) error

	// PushComment appends a comment reference.
	PushComment(ctx context.Context, s Session, feedID, commentID string) error

	// PullComments removes the given comment references.
	PullComments(ctx context.Context, s Session, feedID string, commentIDs ...string) error

	// PushSubComment appends a sub-comment reference.
	PushSubComment(ctx context.Context, s Session, feedID, subCommentID string) error

	// PullSubComments removes the given sub-comment references.
	PullSubComments(ctx context.Context, s Session, feedID string, subCommentIDs ...string) error
}

// ImageRepository defines the contract for image records.
type ImageRepository interface {
	Create(ctx context.Context, s Session, images []Image) error
	FetchByFeed(ctx context.Context, s Session, feedID string) ([]Image, error)
	FetchByWriter(ctx context.Context, s Session, writerID string) ([]Image, error)
	DeleteByFeeds(ctx context.Context, s Session, feedIDs ...string) error
	DeleteByWriter(ctx context.Context, s Session, writerID string) error
}

// LocationRepository defines the contract for location records.
type LocationRepository interface {
	Create(ctx context.Context, s Session, l *Location) error
	// GetByFeed returns ErrNotFound if the feed has no location.
	GetByFeed(ctx context.Context, s Session, feedID string) (Location, error)
	DeleteByFeeds(ctx context.Context, s Session, feedIDs ...string) error
	DeleteByWriter(ctx context.Context, s Session, writerID string) error
}

// FeedUsecase is the transactional feed API.
type FeedUsecase interface {
	// Detail loads a feed with its references and records the view of clientID.
	Detail(ctx context.Context, feedID, clientID string) (FeedDetail, error)

	// Create persists a feed, its location and images atomically. On failure
	// the uploaded blobs are deleted.
	Create(ctx context.Context, writerID string, in NewFeed) (Feed, error)

	// Delete removes a feed and everything attached to it.
	Delete(ctx context.Context, userID, feedID string) error

	Like(ctx context.Context, userID, feedID string) error
	Dislike(ctx context.Context, userID, feedID string) error
}
