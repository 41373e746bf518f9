package model

import (
	"time"

	"github.com/Guyuepp/travel-feed/domain"
)

type Location struct {
	ID        string  `gorm:"primaryKey;type:char(36)"`
	WriterID  string  `gorm:"type:char(36);index;not null"`
	FeedID    string  `gorm:"type:char(36);index;not null"`
	Address   string  `gorm:"type:varchar(255);not null"`
	Lat       float64 `gorm:"not null"`
	Lng       float64 `gorm:"not null"`
	CreatedAt time.Time
}

func (Location) TableName() string {
	return "location"
}

func (m *Location) ToDomain() domain.Location {
	return domain.Location{
		ID:        m.ID,
		WriterID:  m.WriterID,
		FeedID:    m.FeedID,
		Address:   m.Address,
		Lat:       m.Lat,
		Lng:       m.Lng,
		CreatedAt: m.CreatedAt,
	}
}

func NewLocationFromDomain(l *domain.Location) *Location {
	return &Location{
		ID:        l.ID,
		WriterID:  l.WriterID,
		FeedID:    l.FeedID,
		Address:   l.Address,
		Lat:       l.Lat,
		Lng:       l.Lng,
		CreatedAt: l.CreatedAt,
	}
}
