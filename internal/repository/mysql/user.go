package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

type userRepository struct {
	DB *gorm.DB
}

var _ domain.UserRepository = (*userRepository)(nil)

// NewUserRepository will create an implementation of domain.UserRepository
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{
		DB: db,
	}
}

func (m *userRepository) GetByID(ctx context.Context, s domain.Session, id string) (domain.User, error) {
	var user model.User
	if err := conn(ctx, m.DB, s).First(&user, "id = ?", id).Error; err != nil {
		return domain.User{}, notFound(err)
	}

	return user.ToDomain(), nil
}

func (m *userRepository) GetForUpdate(ctx context.Context, s domain.Session, id string) (domain.User, error) {
	var user model.User
	if err := forUpdate(conn(ctx, m.DB, s)).First(&user, "id = ?", id).Error; err != nil {
		return domain.User{}, notFound(err)
	}

	return user.ToDomain(), nil
}

func (m *userRepository) Insert(ctx context.Context, a *domain.User) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	userModel := model.NewUserFromDomain(a)

	result := m.DB.WithContext(ctx).Create(userModel)
	if result.Error != nil {
		return result.Error
	}

	a.CreatedAt = userModel.CreatedAt
	a.UpdatedAt = userModel.UpdatedAt

	return nil
}

func (m *userRepository) UpdateLikedFeeds(ctx context.Context, s domain.Session, id string, feedIDs []string) error {
	return m.updateColumn(ctx, s, id, "liked_feed_ids", feedIDs)
}

func (m *userRepository) UpdateLikedComments(ctx context.Context, s domain.Session, id string, commentIDs []string) error {
	return m.updateColumn(ctx, s, id, "liked_comment_ids", commentIDs)
}

func (m *userRepository) updateColumn(ctx context.Context, s domain.Session, id, column string, ids []string) error {
	result := conn(ctx, m.DB, s).
		Model(&model.User{}).
		Where("id = ?", id).
		Update(column, model.NewIDs(ids))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *userRepository) Delete(ctx context.Context, s domain.Session, id string) error {
	result := conn(ctx, m.DB, s).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
