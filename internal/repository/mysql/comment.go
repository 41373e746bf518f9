package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) GetByID(ctx context.Context, s domain.Session, id string) (domain.Comment, error) {
	var comment model.Comment
	if err := conn(ctx, c.DB, s).First(&comment, "id = ?", id).Error; err != nil {
		return domain.Comment{}, notFound(err)
	}
	return comment.ToDomain(), nil
}

func (c *commentRepository) FetchByFeed(ctx context.Context, s domain.Session, feedID string) ([]domain.Comment, error) {
	return c.fetch(conn(ctx, c.DB, s).Where("feed_id = ?", feedID))
}

func (c *commentRepository) FetchByWriter(ctx context.Context, s domain.Session, writerID string) ([]domain.Comment, error) {
	return c.fetch(conn(ctx, c.DB, s).Where("writer_id = ?", writerID))
}

func (c *commentRepository) fetch(db *gorm.DB) ([]domain.Comment, error) {
	var comments []model.Comment
	if err := db.Order("created_at DESC").Order("id DESC").Find(&comments).Error; err != nil {
		return nil, err
	}

	res := make([]domain.Comment, len(comments))
	for i := range comments {
		res[i] = comments[i].ToDomain()
	}
	return res, nil
}

func (c *commentRepository) Create(ctx context.Context, s domain.Session, comment *domain.Comment) error {
	row := model.NewCommentFromDomain(comment)
	if err := conn(ctx, c.DB, s).Create(row).Error; err != nil {
		return err
	}
	comment.CreatedAt = row.CreatedAt
	comment.UpdatedAt = row.UpdatedAt
	return nil
}

func (c *commentRepository) UpdateContent(ctx context.Context, s domain.Session, id, content string) error {
	result := conn(ctx, c.DB, s).
		Model(&model.Comment{}).
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

func (c *commentRepository) Delete(ctx context.Context, s domain.Session, id string) error {
	result := conn(ctx, c.DB, s).Delete(&model.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) DeleteByFeeds(ctx context.Context, s domain.Session, feedIDs ...string) error {
	if len(feedIDs) == 0 {
		return nil
	}
	return conn(ctx, c.DB, s).Delete(&model.Comment{}, "feed_id IN ?", feedIDs).Error
}

func (c *commentRepository) DeleteByWriter(ctx context.Context, s domain.Session, writerID string) error {
	return conn(ctx, c.DB, s).Delete(&model.Comment{}, "writer_id = ?", writerID).Error
}

func (c *commentRepository) AddLikes(ctx context.Context, s domain.Session, id string, delta int64) error {
	result := conn(ctx, c.DB, s).
		Model(&model.Comment{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) PushSubComment(ctx context.Context, s domain.Session, commentID, subCommentID string) error {
	return c.updateRefs(ctx, s, commentID, func(ids []string) []string {
		return append(ids, subCommentID)
	})
}

func (c *commentRepository) PullSubComments(ctx context.Context, s domain.Session, commentID string, subCommentIDs ...string) error {
	return c.updateRefs(ctx, s, commentID, func(ids []string) []string {
		return without(ids, subCommentIDs)
	})
}

func (c *commentRepository) updateRefs(ctx context.Context, s domain.Session, commentID string, fn func(ids []string) []string) error {
	db := conn(ctx, c.DB, s)
	var comment model.Comment
	err := forUpdate(db).
		Select("id", "sub_comment_ids").
		First(&comment, "id = ?", commentID).Error
	if err != nil {
		return notFound(err)
	}

	ids := fn(comment.SubCommentIDs)
	return db.Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("sub_comment_ids", model.NewIDs(ids)).Error
}
