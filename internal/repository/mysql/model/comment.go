package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Guyuepp/travel-feed/domain"
)

type Comment struct {
	ID            string                      `gorm:"primaryKey;type:char(36)"`
	FeedID        string                      `gorm:"column:feed_id;type:char(36);index;not null"`
	WriterID      string                      `gorm:"column:writer_id;type:char(36);index;not null"`
	Content       string                      `gorm:"type:text;not null"`
	LikeCount     int64                       `gorm:"default:0"`
	SubCommentIDs datatypes.JSONSlice[string] `gorm:"column:sub_comment_ids"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Comment) TableName() string {
	return "comment"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:            c.ID,
		FeedID:        c.FeedID,
		WriterID:      c.WriterID,
		Content:       c.Content,
		LikeCount:     c.LikeCount,
		SubCommentIDs: NewIDs(c.SubCommentIDs),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:            m.ID,
		FeedID:        m.FeedID,
		WriterID:      m.WriterID,
		Content:       m.Content,
		LikeCount:     m.LikeCount,
		SubCommentIDs: ids(m.SubCommentIDs),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type SubComment struct {
	ID              string `gorm:"primaryKey;type:char(36)"`
	FeedID          string `gorm:"column:feed_id;type:char(36);index;not null"`
	ParentCommentID string `gorm:"column:parent_comment_id;type:char(36);index;not null"`
	WriterID        string `gorm:"column:writer_id;type:char(36);index;not null"`
	Content         string `gorm:"type:text;not null"`
	LikeCount       int64  `gorm:"default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SubComment) TableName() string {
	return "sub_comment"
}

func NewSubCommentFromDomain(c *domain.SubComment) *SubComment {
	return &SubComment{
		ID:              c.ID,
		FeedID:          c.FeedID,
		ParentCommentID: c.ParentCommentID,
		WriterID:        c.WriterID,
		Content:         c.Content,
		LikeCount:       c.LikeCount,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *SubComment) ToDomain() domain.SubComment {
	return domain.SubComment{
		ID:              m.ID,
		FeedID:          m.FeedID,
		ParentCommentID: m.ParentCommentID,
		WriterID:        m.WriterID,
		Content:         m.Content,
		LikeCount:       m.LikeCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
