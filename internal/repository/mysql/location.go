package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type locationRepository struct {
	DB *gorm.DB
}

var _ domain.LocationRepository = (*locationRepository)(nil)

func NewLocationRepository(db *gorm.DB) *locationRepository {
	return &locationRepository{db}
}

func (m *locationRepository) Create(ctx context.Context, s domain.Session, l *domain.Location) error {
	row := model.NewLocationFromDomain(l)
	if err := conn(ctx, m.DB, s).Create(row).Error; err != nil {
		return err
	}
	l.CreatedAt = row.CreatedAt
	return nil
}

func (m *locationRepository) GetByFeed(ctx context.Context, s domain.Session, feedID string) (domain.Location, error) {
	var row model.Location
	if err := conn(ctx, m.DB, s).First(&row, "feed_id = ?", feedID).Error; err != nil {
		return domain.Location{}, notFound(err)
	}
	return row.ToDomain(), nil
}

func (m *locationRepository) DeleteByFeeds(ctx context.Context, s domain.Session, feedIDs ...string) error {
	if len(feedIDs) == 0 {
		return nil
	}
	return conn(ctx, m.DB, s).Delete(&model.Location{}, "feed_id IN ?", feedIDs).Error
}

func (m *locationRepository) DeleteByWriter(ctx context.Context, s domain.Session, writerID string) error {
	return conn(ctx, m.DB, s).Delete(&model.Location{}, "writer_id = ?", writerID).Error
}
