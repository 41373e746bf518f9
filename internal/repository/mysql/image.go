package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type imageRepository struct {
	DB *gorm.DB
}

var _ domain.ImageRepository = (*imageRepository)(nil)

func NewImageRepository(db *gorm.DB) *imageRepository {
	return &imageRepository{db}
}

func (m *imageRepository) Create(ctx context.Context, s domain.Session, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	rows := make([]model.Image, len(images))
	for i := range images {
		rows[i] = model.NewImageFromDomain(&images[i])
	}
	return conn(ctx, m.DB, s).Create(&rows).Error
}

func (m *imageRepository) FetchByFeed(ctx context.Context, s domain.Session, feedID string) ([]domain.Image, error) {
	return m.fetch(conn(ctx, m.DB, s).Where("feed_id = ?", feedID))
}

func (m *imageRepository) FetchByWriter(ctx context.Context, s domain.Session, writerID string) ([]domain.Image, error) {
	return m.fetch(conn(ctx, m.DB, s).Where("writer_id = ?", writerID))
}

func (m *imageRepository) fetch(db *gorm.DB) ([]domain.Image, error) {
	var rows []model.Image
	if err := db.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Image, len(rows))
	for i := range rows {
		res[i] = rows[i].ToDomain()
	}
	return res, nil
}

func (m *imageRepository) DeleteByFeeds(ctx context.Context, s domain.Session, feedIDs ...string) error {
	if len(feedIDs) == 0 {
		return nil
	}
	return conn(ctx, m.DB, s).Delete(&model.Image{}, "feed_id IN ?", feedIDs).Error
}

func (m *imageRepository) DeleteByWriter(ctx context.Context, s domain.Session, writerID string) error {
	return conn(ctx, m.DB, s).Delete(&model.Image{}, "writer_id = ?", writerID).Error
}
