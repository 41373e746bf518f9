package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type subCommentRepository struct {
	DB *gorm.DB
}

var _ domain.SubCommentRepository = (*subCommentRepository)(nil)

func NewSubCommentRepository(db *gorm.DB) *subCommentRepository {
	return &subCommentRepository{
		DB: db,
	}
}

func (r *subCommentRepository) GetByID(ctx context.Context, s domain.Session, id string) (domain.SubComment, error) {
	var sub model.SubComment
	if err := conn(ctx, r.DB, s).First(&sub, "id = ?", id).Error; err != nil {
		return domain.SubComment{}, notFound(err)
	}
	return sub.ToDomain(), nil
}

func (r *subCommentRepository) FetchByFeed(ctx context.Context, s domain.Session, feedID string) ([]domain.SubComment, error) {
	return r.fetch(conn(ctx, r.DB, s).Where("feed_id = ?", feedID))
}

func (r *subCommentRepository) FetchByComment(ctx context.Context, s domain.Session, commentID string) ([]domain.SubComment, error) {
	return r.fetch(conn(ctx, r.DB, s).Where("parent_comment_id = ?", commentID))
}

func (r *subCommentRepository) FetchByWriter(ctx context.Context, s domain.Session, writerID string) ([]domain.SubComment, error) {
	return r.fetch(conn(ctx, r.DB, s).Where("writer_id = ?", writerID))
}

func (r *subCommentRepository) fetch(db *gorm.DB) ([]domain.SubComment, error) {
	var subs []model.SubComment
	if err := db.Order("created_at DESC").Order("id DESC").Find(&subs).Error; err != nil {
		return nil, err
	}

	res := make([]domain.SubComment, len(subs))
	for i := range subs {
		res[i] = subs[i].ToDomain()
	}
	return res, nil
}

func (r *subCommentRepository) Create(ctx context.Context, s domain.Session, sub *domain.SubComment) error {
	row := model.NewSubCommentFromDomain(sub)
	if err := conn(ctx, r.DB, s).Create(row).Error; err != nil {
		return err
	}
	sub.CreatedAt = row.CreatedAt
	sub.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *subCommentRepository) UpdateContent(ctx context.Context, s domain.Session, id, content string) error {
	result := conn(ctx, r.DB, s).
		Model(&model.SubComment{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subCommentRepository) Delete(ctx context.Context, s domain.Session, id string) error {
	result := conn(ctx, r.DB, s).Delete(&model.SubComment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subCommentRepository) DeleteByComment(ctx context.Context, s domain.Session, commentID string) error {
	return conn(ctx, r.DB, s).Delete(&model.SubComment{}, "parent_comment_id = ?", commentID).Error
}

func (r *subCommentRepository) DeleteByFeeds(ctx context.Context, s domain.Session, feedIDs ...string) error {
	if len(feedIDs) == 0 {
		return nil
	}
	return conn(ctx, r.DB, s).Delete(&model.SubComment{}, "feed_id IN ?", feedIDs).Error
}

func (r *subCommentRepository) DeleteByWriter(ctx context.Context, s domain.Session, writerID string) error {
	return conn(ctx, r.DB, s).Delete(&model.SubComment{}, "writer_id = ?", writerID).Error
}
