package response

import "github.com/Guyuepp/travel-feed/domain"

type SubComment struct {
	ID              string `json:"id"`
	FeedID          string `json:"feed_id"`
	ParentCommentID string `json:"parent_comment_id"`
	WriterID        string `json:"writer_id"`
	Content         string `json:"content"`
	Likes           int64  `json:"likes"`
	CreatedAt       string `json:"created_at"`
}

type Comment struct {
	ID        string `json:"id"`
	FeedID    string `json:"feed_id"`
	WriterID  string `json:"writer_id"`
	Content   string `json:"content"`
	Likes     int64  `json:"likes"`
	CreatedAt string `json:"created_at"`

	// Replies 子评论列表
	Replies []SubComment `json:"replies,omitempty"`
}

func NewSubCommentFromDomain(c *domain.SubComment) SubComment {
	return SubComment{
		ID:              c.ID,
		FeedID:          c.FeedID,
		ParentCommentID: c.ParentCommentID,
		WriterID:        c.WriterID,
		Content:         c.Content,
		Likes:           c.LikeCount,
		CreatedAt:       c.CreatedAt.Format(DateTimeFormat),
	}
}

func NewSingleCommentFromDomain(c *domain.Comment) Comment {
	return Comment{
		ID:        c.ID,
		FeedID:    c.FeedID,
		WriterID:  c.WriterID,
		Content:   c.Content,
		Likes:     c.LikeCount,
		CreatedAt: c.CreatedAt.Format(DateTimeFormat),
	}
}

// NewCommentFromDomain: Domain -> Response
func NewCommentFromDomain(c *domain.CommentDetail) Comment {
	root := NewSingleCommentFromDomain(&c.Comment)
	if len(c.SubComments) > 0 {
		root.Replies = make([]SubComment, 0, len(c.SubComments))
		for i := range c.SubComments {
			root.Replies = append(root.Replies, NewSubCommentFromDomain(&c.SubComments[i]))
		}
	}
	return root
}
