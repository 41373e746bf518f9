package domain

import (
	"context"
	"slices"
	"time"
)

// Comment domain model
type Comment struct {
	ID            string
	FeedID        string
	WriterID      string
	Content       string
	LikeCount     int64
	SubCommentIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SubComment is a reply to a comment.
type SubComment struct {
	ID              string
	FeedID          string
	ParentCommentID string
	WriterID        string
	Content         string
	LikeCount       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CommentDetail is a comment with its sub-comments loaded.
type CommentDetail struct {
	Comment
	SubComments []SubComment
}

// HasSubComment reports whether the sub-comment is referenced by the comment.
func (c *Comment) HasSubComment(subCommentID string) bool {
	return slices.Contains(c.SubCommentIDs, subCommentID)
}

// CommentRepository is the data access contract for comments
type CommentRepository interface {
	// GetByID returns ErrNotFound if the comment doesn't exist.
	GetByID(ctx context.Context, s Session, id string) (Comment, error)
	// FetchByFeed returns the comments of a feed, newest first.
	FetchByFeed(ctx context.Context, s Session, feedID string) ([]Comment, error)
	FetchByWriter(ctx context.Context, s Session, writerID string) ([]Comment, error)
	Create(ctx context.Context, s Session, c *Comment) error
	UpdateContent(ctx context.Context, s Session, id, content string) error
	Delete(ctx context.Context, s Session, id string) error
	DeleteByFeeds(ctx context.Context, s Session, feedIDs ...string) error
	DeleteByWriter(ctx context.Context, s Session, writerID string) error
	AddLikes(ctx context.Context, s Session, id string, delta int64) error
	PushSubComment(ctx context.Context, s Session, commentID, subCommentID string) error
	PullSubComments(ctx context.Context, s Session, commentID string, subCommentIDs ...string) error
}

// SubCommentRepository is the data access contract for sub-comments
type SubCommentRepository interface {
	GetByID(ctx context.Context, s Session, id string) (SubComment, error)
	// FetchByFeed returns the sub-comments of a feed, newest first.
	FetchByFeed(ctx context.Context, s Session, feedID string) ([]SubComment, error)
	FetchByComment(ctx context.Context, s Session, commentID string) ([]SubComment, error)
	FetchByWriter(ctx context.Context, s Session, writerID string) ([]SubComment, error)
	Create(ctx context.Context, s Session, c *SubComment) error
	UpdateContent(ctx context.Context, s Session, id, content string) error
	Delete(ctx context.Context, s Session, id string) error
	DeleteByComment(ctx context.Context, s Session, commentID string) error
	DeleteByFeeds(ctx context.Context, s Session, feedIDs ...string) error
	DeleteByWriter(ctx context.Context, s Session, writerID string) error
}

// CommentUsecase is the transactional comment API
type CommentUsecase interface {
	Create(ctx context.Context, userID, feedID, content string) (Comment, error)
	Update(ctx context.Context, userID, feedID, commentID, content string) error
	// Delete removes the comment together with its sub-comments.
	Delete(ctx context.Context, userID, feedID, commentID string) error
	Like(ctx context.Context, userID, feedID, commentID string) error
	Dislike(ctx context.Context, userID, feedID, commentID string) error
}

// SubCommentUsecase is the transactional sub-comment API
type SubCommentUsecase interface {
	Create(ctx context.Context, userID, feedID, commentID, content string) (SubComment, error)
	Update(ctx context.Context, userID, feedID, commentID, subCommentID, content string) error
	Delete(ctx context.Context, userID, feedID, commentID, subCommentID string) error
}
