package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type feedRepository struct {
	DB *gorm.DB
}

var _ domain.FeedRepository = (*feedRepository)(nil)

// NewFeedRepository creates the feed table access layer
func NewFeedRepository(db *gorm.DB) *feedRepository {
	return &feedRepository{db}
}

func (m *feedRepository) GetByID(ctx context.Context, s domain.Session, id string) (domain.Feed, error) {
	var feed model.Feed
	if err := conn(ctx, m.DB, s).First(&feed, "id = ?", id).Error; err != nil {
		return domain.Feed{}, notFound(err)
	}
	return feed.ToDomain(), nil
}

func (m *feedRepository) Create(ctx context.Context, s domain.Session, f *domain.Feed) error {
	feedModel := model.NewFeedFromDomain(f)
	if err := conn(ctx, m.DB, s).Create(feedModel).Error; err != nil {
		return err
	}
	f.CreatedAt = feedModel.CreatedAt
	f.UpdatedAt = feedModel.UpdatedAt
	return nil
}

func (m *feedRepository) Delete(ctx context.Context, s domain.Session, id string) error {
	result := conn(ctx, m.DB, s).Delete(&model.Feed{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *feedRepository) DeleteByWriter(ctx context.Context, s domain.Session, writerID string) error {
	return conn(ctx, m.DB, s).Delete(&model.Feed{}, "writer_id = ?", writerID).Error
}

func (m *feedRepository) FetchIDsByWriter(ctx context.Context, s domain.Session, writerID string) (ids []string, err error) {
	err = conn(ctx, m.DB, s).
		Model(&model.Feed{}).
		Where("writer_id = ?", writerID).
		Order("id").
		Pluck("id", &ids).Error
	return
}

func (m *feedRepository) FetchIDs(ctx context.Context, cursor string, limit int) (ids []string, err error) {
	err = m.DB.WithContext(ctx).
		Model(&model.Feed{}).
		Where("id > ?", cursor).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	return
}

func (m *feedRepository) AddLikes(ctx context.Context, s domain.Session, id string, delta int64) error {
	result := conn(ctx, m.DB, s).
		Model(&model.Feed{}).
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

func (m *feedRepository) AddViews(ctx context.Context, id string, delta int64) error {
	result := m.DB.WithContext(ctx).
		Model(&model.Feed{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *feedRepository) PushComment(ctx context.Context, s domain.Session, feedID, commentID string) error {
	return m.updateRefs(ctx, s, feedID, func(f *model.Feed) {
		f.CommentIDs = append(f.CommentIDs, commentID)
	})
}

func (m *feedRepository) PullComments(ctx context.Context, s domain.Session, feedID string, commentIDs ...string) error {
	return m.updateRefs(ctx, s, feedID, func(f *model.Feed) {
		f.CommentIDs = model.NewIDs(without(f.CommentIDs, commentIDs))
	})
}

func (m *feedRepository) PushSubComment(ctx context.Context, s domain.Session, feedID, subCommentID string) error {
	return m.updateRefs(ctx, s, feedID, func(f *model.Feed) {
		f.SubCommentIDs = append(f.SubCommentIDs, subCommentID)
	})
}

func (m *feedRepository) PullSubComments(ctx context.Context, s domain.Session, feedID string, subCommentIDs ...string) error {
	return m.updateRefs(ctx, s, feedID, func(f *model.Feed) {
		f.SubCommentIDs = model.NewIDs(without(f.SubCommentIDs, subCommentIDs))
	})
}

// updateRefs rewrites the reference lists of one feed under a row lock so
// concurrent pushes cannot overwrite each other.
func (m *feedRepository) updateRefs(ctx context.Context, s domain.Session, feedID string, fn func(f *model.Feed)) error {
	db := conn(ctx, m.DB, s)
	var feed model.Feed
	err := forUpdate(db).
		Select("id", "comment_ids", "sub_comment_ids").
		First(&feed, "id = ?", feedID).Error
	if err != nil {
		return notFound(err)
	}

	fn(&feed)

	return db.Model(&model.Feed{}).
		Where("id = ?", feedID).
		Updates(map[string]any{
			"comment_ids":     model.NewIDs(feed.CommentIDs),
			"sub_comment_ids": model.NewIDs(feed.SubCommentIDs),
		}).Error
}
