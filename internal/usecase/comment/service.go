package comment

import (
	"context"
	"fmt"
	"slices"
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

var _ domain.CommentUsecase = (*service)(nil)

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

// mustExists loads the comment and checks that it belongs to the feed.
func (s *service) mustExists(ctx context.Context, feedID, commentID string) (domain.Comment, error) {
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

func (s *service) Create(ctx context.Context, userID, feedID, content string) (domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, domain.ErrBadParamInput
	}
	if _, err := usecase.FeedExists(ctx, s.bloomRepo, s.feedRepo, feedID); err != nil {
		return domain.Comment{}, err
	}
	if _, err := s.userRepo.GetByID(ctx, nil, userID); err != nil {
		return domain.Comment{}, err
	}

	c := domain.Comment{
		ID:            s.newID(),
		FeedID:        feedID,
		WriterID:      userID,
		Content:       content,
		SubCommentIDs: []string{},
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		if err := s.commentRepo.Create(ctx, sess, &c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if err := s.feedRepo.PushComment(ctx, sess, feedID, c.ID); err != nil {
			return fmt.Errorf("push comment to feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Comment{}, usecase.TransactionFailed("create comment", err)
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, userID, feedID, commentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrBadParamInput
	}
	c, err := s.mustExists(ctx, feedID, commentID)
	if err != nil {
		return err
	}
	if c.WriterID != userID {
		return domain.ErrForbidden
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		return s.commentRepo.UpdateContent(ctx, sess, commentID, content)
	})
	if err != nil {
		return usecase.TransactionFailed("update comment", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID, feedID, commentID string) error {
	c, err := s.mustExists(ctx, feedID, commentID)
	if err != nil {
		return err
	}
	if c.WriterID != userID {
		return domain.ErrForbidden
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		subs, err := s.subCommentRepo.FetchByComment(ctx, sess, commentID)
		if err != nil {
			return fmt.Errorf("fetch sub-comments: %w", err)
		}
		if len(subs) > 0 {
			subIDs := make([]string, len(subs))
			for i := range subs {
				subIDs[i] = subs[i].ID
			}
			if err := s.subCommentRepo.DeleteByComment(ctx, sess, commentID); err != nil {
				return fmt.Errorf("delete sub-comments: %w", err)
			}
			if err := s.feedRepo.PullSubComments(ctx, sess, feedID, subIDs...); err != nil {
				return fmt.Errorf("pull sub-comments from feed: %w", err)
			}
		}
		if err := s.commentRepo.Delete(ctx, sess, commentID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if err := s.feedRepo.PullComments(ctx, sess, feedID, commentID); err != nil {
			return fmt.Errorf("pull comment from feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return usecase.TransactionFailed("delete comment", err)
	}
	return nil
}

func (s *service) Like(ctx context.Context, userID, feedID, commentID string) error {
	return s.toggleLike(ctx, userID, feedID, commentID, true)
}

func (s *service) Dislike(ctx context.Context, userID, feedID, commentID string) error {
	return s.toggleLike(ctx, userID, feedID, commentID, false)
}

func (s *service) toggleLike(ctx context.Context, userID, feedID, commentID string, like bool) error {
	if _, err := s.mustExists(ctx, feedID, commentID); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if err := likeState(user, commentID, like); err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		user, err := s.userRepo.GetForUpdate(ctx, sess, userID)
		if err != nil {
			return err
		}
		// 加锁后再检查一次，防止并发重复点赞
		if err := likeState(user, commentID, like); err != nil {
			return err
		}

		delta, liked := int64(1), append(slices.Clone(user.LikedCommentIDs), commentID)
		if !like {
			delta = -1
			liked = slices.DeleteFunc(slices.Clone(user.LikedCommentIDs), func(id string) bool { return id == commentID })
		}
		if err := s.commentRepo.AddLikes(ctx, sess, commentID, delta); err != nil {
			return err
		}
		return s.userRepo.UpdateLikedComments(ctx, sess, userID, liked)
	})
	if err != nil {
		if like {
			return usecase.TransactionFailed("like comment", err)
		}
		return usecase.TransactionFailed("dislike comment", err)
	}
	return nil
}

func likeState(user domain.User, commentID string, like bool) error {
	liked := user.HasLikedComment(commentID)
	if like && liked {
		return domain.ErrAlreadyLiked
	}
	if !like && !liked {
		return domain.ErrNotLiked
	}
	return nil
}
