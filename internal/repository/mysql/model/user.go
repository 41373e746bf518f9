package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Guyuepp/travel-feed/domain"
)

type User struct {
	ID              string                      `gorm:"primaryKey;type:char(36)"`
	Nickname        string                      `gorm:"type:varchar(45);uniqueIndex;not null"`
	Email           string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password        string                      `gorm:"type:varchar(100);not null"`
	LikedFeedIDs    datatypes.JSONSlice[string] `gorm:"column:liked_feed_ids"`
	LikedCommentIDs datatypes.JSONSlice[string] `gorm:"column:liked_comment_ids"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (User) TableName() string {
	return "user"
}

func (m *User) ToDomain() domain.User {
	return domain.User{
		ID:              m.ID,
		Nickname:        m.Nickname,
		Email:           m.Email,
		Password:        m.Password,
		LikedFeedIDs:    ids(m.LikedFeedIDs),
		LikedCommentIDs: ids(m.LikedCommentIDs),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewUserFromDomain(u *domain.User) *User {
	return &User{
		ID:              u.ID,
		Nickname:        u.Nickname,
		Email:           u.Email,
		Password:        u.Password,
		LikedFeedIDs:    NewIDs(u.LikedFeedIDs),
		LikedCommentIDs: NewIDs(u.LikedCommentIDs),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// All lists every model, in migration order.
func All() []any {
	return []any{&User{}, &Feed{}, &Location{}, &Image{}, &Comment{}, &SubComment{}}
}
