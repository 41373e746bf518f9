package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Guyuepp/travel-feed/domain"
)

type Feed struct {
	ID            string                      `gorm:"primaryKey;type:char(36)"`
	Title         string                      `gorm:"type:varchar(100);not null"`
	Content       string                      `gorm:"type:longtext;not null"`
	TravelDate    string                      `gorm:"type:varchar(32)"`
	AirportName   string                      `gorm:"type:varchar(100)"`
	LikeCount     int64                       `gorm:"default:0"`
	ViewCount     int64                       `gorm:"default:0"`
	CommentIDs    datatypes.JSONSlice[string] `gorm:"column:comment_ids"`
	SubCommentIDs datatypes.JSONSlice[string] `gorm:"column:sub_comment_ids"`
	ImageIDs      datatypes.JSONSlice[string] `gorm:"column:image_ids"`
	LocationID    string                      `gorm:"type:char(36);not null"`
	WriterID      string                      `gorm:"type:char(36);index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Feed) TableName() string {
	return "feed"
}

func (m *Feed) ToDomain() domain.Feed {
	return domain.Feed{
		ID:            m.ID,
		Title:         m.Title,
		Content:       m.Content,
		TravelDate:    m.TravelDate,
		AirportName:   m.AirportName,
		LikeCount:     m.LikeCount,
		ViewCount:     m.ViewCount,
		CommentIDs:    ids(m.CommentIDs),
		SubCommentIDs: ids(m.SubCommentIDs),
		ImageIDs:      ids(m.ImageIDs),
		LocationID:    m.LocationID,
		WriterID:      m.WriterID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func NewFeedFromDomain(f *domain.Feed) *Feed {
	return &Feed{
		ID:            f.ID,
		Title:         f.Title,
		Content:       f.Content,
		TravelDate:    f.TravelDate,
		AirportName:   f.AirportName,
		LikeCount:     f.LikeCount,
		ViewCount:     f.ViewCount,
		CommentIDs:    NewIDs(f.CommentIDs),
		SubCommentIDs: NewIDs(f.SubCommentIDs),
		ImageIDs:      NewIDs(f.ImageIDs),
		LocationID:    f.LocationID,
		WriterID:      f.WriterID,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// NewIDs copies a reference list into its column type. A nil list is stored
// as an empty JSON array.
func NewIDs(src []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], len(src))
	copy(out, src)
	return out
}

func ids(src datatypes.JSONSlice[string]) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
