package subcomment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/usecase"
)

type service struct {
	tx             domain.Transactor
	feedRepo       domain.FeedRepository
	commentRepo    domain.CommentRepository
	subCommentRepo domain.SubCommentRepository
	userRepo       domain.UserRepository
	bloomRepo      domain.BloomRepository
	newID          func() string
}

var _ domain.SubCommentUsecase = (*service)(nil)

func NewService(
	tx domain.Transactor,
	feedRepo domain.FeedRepository,
	commentRepo domain.CommentRepository,
	subCommentRepo domain.SubCommentRepository,
	userRepo domain.UserRepository,
	bloomRepo domain.BloomRepository,
) *service {
	return &service{
		tx:             tx,
		feedRepo:       feedRepo,
		commentRepo:    commentRepo,
		subCommentRepo: subCommentRepo,
		userRepo:       userRepo,
		bloomRepo:      bloomRepo,
		newID:          uuid.NewString,
	}
}

// parentComment validates the feed and the comment the reply hangs off.
func (s *service) parentComment(ctx context.Context, feedID, commentID string) (domain.Comment, error) {
	if _, err := usecase.FeedExists(ctx, s.bloomRepo, s.feedRepo, feedID); err != nil {
		return domain.Comment{}, err
	}
	c, err := s.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if c.FeedID != feedID {
		return domain.Comment{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *service) mustOwn(ctx context.Context, userID, feedID, commentID, subCommentID string) error {
	if _, err := s.parentComment(ctx, feedID, commentID); err != nil {
		return err
	}
	sub, err := s.subCommentRepo.GetByID(ctx, nil, subCommentID)
	if err != nil {
		return err
	}
	if sub.ParentCommentID != commentID || sub.FeedID != feedID {
		return domain.ErrNotFound
	}
	if sub.WriterID != userID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *service) Create(ctx context.Context, userID, feedID, commentID, content string) (domain.SubComment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.SubComment{}, domain.ErrBadParamInput
	}
	if _, err := s.parentComment(ctx, feedID, commentID); err != nil {
		return domain.SubComment{}, err
	}
	if _, err := s.userRepo.GetByID(ctx, nil, userID); err != nil {
		return domain.SubComment{}, err
	}

	sub := domain.SubComment{
		ID:              s.newID(),
		FeedID:          feedID,
		ParentCommentID: commentID,
		WriterID:        userID,
		Content:         content,
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		if err := s.subCommentRepo.Create(ctx, sess, &sub); err != nil {
			return fmt.Errorf("create sub-comment: %w", err)
		}
		if err := s.commentRepo.PushSubComment(ctx, sess, commentID, sub.ID); err != nil {
			return fmt.Errorf("push sub-comment to comment: %w", err)
		}
		if err := s.feedRepo.PushSubComment(ctx, sess, feedID, sub.ID); err != nil {
			return fmt.Errorf("push sub-comment to feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.SubComment{}, usecase.TransactionFailed("create sub-comment", err)
	}
	return sub, nil
}

func (s *service) Update(ctx context.Context, userID, feedID, commentID, subCommentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrBadParamInput
	}
	if err := s.mustOwn(ctx, userID, feedID, commentID, subCommentID); err != nil {
		return err
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		return s.subCommentRepo.UpdateContent(ctx, sess, subCommentID, content)
	})
	if err != nil {
		return usecase.TransactionFailed("update sub-comment", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID, feedID, commentID, subCommentID string) error {
	if err := s.mustOwn(ctx, userID, feedID, commentID, subCommentID); err != nil {
		return err
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		if err := s.subCommentRepo.Delete(ctx, sess, subCommentID); err != nil {
			return fmt.Errorf("delete sub-comment: %w", err)
		}
		if err := s.commentRepo.PullSubComments(ctx, sess, commentID, subCommentID); err != nil {
			return fmt.Errorf("pull sub-comment from comment: %w", err)
		}
		if err := s.feedRepo.PullSubComments(ctx, sess, feedID, subCommentID); err != nil {
			return fmt.Errorf("pull sub-comment from feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return usecase.TransactionFailed("delete sub-comment", err)
	}
	return nil
}
