package rest_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Guyuepp/travel-feed/domain"
)

type feedUsecase struct{ mock.Mock }

func (m *feedUsecase) Detail(ctx context.Context, feedID, clientID string) (domain.FeedDetail, error) {
	args := m.Called(ctx, feedID, clientID)
	return args.Get(0).(domain.FeedDetail), args.Error(1)
}

func (m *feedUsecase) Create(ctx context.Context, writerID string, in domain.NewFeed) (domain.Feed, error) {
	args := m.Called(ctx, writerID, in)
	return args.Get(0).(domain.Feed), args.Error(1)
}

func (m *feedUsecase) Delete(ctx context.Context, userID, feedID string) error {
	return m.Called(ctx, userID, feedID).Error(0)
}

func (m *feedUsecase) Like(ctx context.Context, userID, feedID string) error {
	return m.Called(ctx, userID, feedID).Error(0)
}

func (m *feedUsecase) Dislike(ctx context.Context, userID, feedID string) error {
	return m.Called(ctx, userID, feedID).Error(0)
}

type commentUsecase struct{ mock.Mock }

func (m *commentUsecase) Create(ctx context.Context, userID, feedID, content string) (domain.Comment, error) {
	args := m.Called(ctx, userID, feedID, content)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *commentUsecase) Update(ctx context.Context, userID, feedID, commentID, content string) error {
	return m.Called(ctx, userID, feedID, commentID, content).Error(0)
}

func (m *commentUsecase) Delete(ctx context.Context, userID, feedID, commentID string) error {
	return m.Called(ctx, userID, feedID, commentID).Error(0)
}

func (m *commentUsecase) Like(ctx context.Context, userID, feedID, commentID string) error {
	return m.Called(ctx, userID, feedID, commentID).Error(0)
}

func (m *commentUsecase) Dislike(ctx context.Context, userID, feedID, commentID string) error {
	return m.Called(ctx, userID, feedID, commentID).Error(0)
}

type subCommentUsecase struct{ mock.Mock }

func (m *subCommentUsecase) Create(ctx context.Context, userID, feedID, commentID, content string) (domain.SubComment, error) {
	args := m.Called(ctx, userID, feedID, commentID, content)
	return args.Get(0).(domain.SubComment), args.Error(1)
}

func (m *subCommentUsecase) Update(ctx context.Context, userID, feedID, commentID, subCommentID, content string) error {
	return m.Called(ctx, userID, feedID, commentID, subCommentID, content).Error(0)
}

func (m *subCommentUsecase) Delete(ctx context.Context, userID, feedID, commentID, subCommentID string) error {
	return m.Called(ctx, userID, feedID, commentID, subCommentID).Error(0)
}

type userUsecase struct{ mock.Mock }

func (m *userUsecase) Withdraw(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}
