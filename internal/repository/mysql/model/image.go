package model

import (
	"time"

	"github.com/Guyuepp/travel-feed/domain"
)

type Image struct {
	ID        string `gorm:"primaryKey;type:char(36)"`
	WriterID  string `gorm:"type:char(36);index;not null"`
	FeedID    string `gorm:"type:char(36);index;not null"`
	Key       string `gorm:"column:blob_key;type:varchar(512);not null"`
	Path      string `gorm:"type:varchar(1024);not null"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

func (Image) TableName() string {
	return "image"
}

func (m *Image) ToDomain() domain.Image {
	return domain.Image{
		ID:        m.ID,
		WriterID:  m.WriterID,
		FeedID:    m.FeedID,
		Key:       m.Key,
		Path:      m.Path,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func NewImageFromDomain(i *domain.Image) Image {
	return Image{
		ID:        i.ID,
		WriterID:  i.WriterID,
		FeedID:    i.FeedID,
		Key:       i.Key,
		Path:      i.Path,
		Name:      i.Name,
		CreatedAt: i.CreatedAt,
	}
}
