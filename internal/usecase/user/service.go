package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/usecase"
)

// Deps are the collaborators of the user service.
type Deps struct {
	Transactor  domain.Transactor
	Users       domain.UserRepository
	Feeds       domain.FeedRepository
	Images      domain.ImageRepository
	Locations   domain.LocationRepository
	Comments    domain.CommentRepository
	SubComments domain.SubCommentRepository
	Blobs       domain.BlobStore
	Guard       domain.ViewGuard
	Counter     domain.ViewCounter
}

type Service struct {
	Deps
	retry usecase.Retry
}

var _ domain.UserUsecase = (*Service)(nil)

func NewService(d Deps, retry usecase.Retry) *Service {
	return &Service{
		Deps:  d,
		retry: retry,
	}
}

// Withdraw deletes the user and everything the user owns. Like counts the
// user contributed stay as they are.
func (s *Service) Withdraw(ctx context.Context, userID, password string) error {
	u, err := s.Users.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrForbidden
		}
		return err
	}

	images, err := s.Images.FetchByWriter(ctx, nil, userID)
	if err != nil {
		return err
	}
	// 先删对象存储，失败就不删记录，保证还能重试
	if err := usecase.DeleteBlobs(ctx, s.Blobs, s.retry, usecase.BlobKeys(images)); err != nil {
		logrus.WithField("user", userID).Errorf("withdraw aborted, blob cleanup failed: %v", err)
		return fmt.Errorf("delete blobs: %w: %w", domain.ErrInternalServerError, err)
	}

	var feedIDs []string
	err = s.Transactor.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		feedIDs, err = s.Feeds.FetchIDsByWriter(ctx, sess, userID)
		if err != nil {
			return fmt.Errorf("fetch feeds: %w", err)
		}
		if err := s.detach(ctx, sess, userID, feedIDs); err != nil {
			return err
		}

		if err := s.SubComments.DeleteByFeeds(ctx, sess, feedIDs...); err != nil {
			return fmt.Errorf("delete sub-comments on feeds: %w", err)
		}
		if err := s.SubComments.DeleteByWriter(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete sub-comments: %w", err)
		}
		if err := s.Comments.DeleteByFeeds(ctx, sess, feedIDs...); err != nil {
			return fmt.Errorf("delete comments on feeds: %w", err)
		}
		if err := s.Comments.DeleteByWriter(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := s.Locations.DeleteByWriter(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete locations: %w", err)
		}
		if err := s.Images.DeleteByWriter(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := s.Feeds.DeleteByWriter(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete feeds: %w", err)
		}
		if err := s.Users.Delete(ctx, sess, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return usecase.TransactionFailed("withdraw", err)
	}

	usecase.ForgetViews(context.WithoutCancel(ctx), s.Guard, s.Counter, feedIDs...)
	return nil
}

// detach removes the references other users' feeds and comments hold to the
// user's comments and sub-comments, including replies others wrote under the
// user's comments, which are deleted with them.
func (s *Service) detach(ctx context.Context, sess domain.Session, userID string, ownFeeds []string) error {
	gone := make(map[string]bool, len(ownFeeds))
	for _, id := range ownFeeds {
		gone[id] = true
	}

	comments, err := s.Comments.FetchByWriter(ctx, sess, userID)
	if err != nil {
		return fmt.Errorf("fetch comments: %w", err)
	}
	goneComments := make(map[string]bool, len(comments))
	pullComments := make(map[string][]string)
	pullSubs := make(map[string][]string)
	for _, c := range comments {
		goneComments[c.ID] = true
		if gone[c.FeedID] {
			continue
		}
		pullComments[c.FeedID] = append(pullComments[c.FeedID], c.ID)

		replies, err := s.SubComments.FetchByComment(ctx, sess, c.ID)
		if err != nil {
			return fmt.Errorf("fetch replies: %w", err)
		}
		for _, r := range replies {
			pullSubs[c.FeedID] = append(pullSubs[c.FeedID], r.ID)
		}
		if err := s.SubComments.DeleteByComment(ctx, sess, c.ID); err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}
	}

	subs, err := s.SubComments.FetchByWriter(ctx, sess, userID)
	if err != nil {
		return fmt.Errorf("fetch sub-comments: %w", err)
	}
	pullFromComments := make(map[string][]string)
	for _, sub := range subs {
		if gone[sub.FeedID] || goneComments[sub.ParentCommentID] {
			continue
		}
		pullFromComments[sub.ParentCommentID] = append(pullFromComments[sub.ParentCommentID], sub.ID)
		pullSubs[sub.FeedID] = append(pullSubs[sub.FeedID], sub.ID)
	}

	for feedID, ids := range pullComments {
		if err := s.Feeds.PullComments(ctx, sess, feedID, ids...); err != nil {
			return fmt.Errorf("pull comments from feed %s: %w", feedID, err)
		}
	}
	for feedID, ids := range pullSubs {
		if err := s.Feeds.PullSubComments(ctx, sess, feedID, ids...); err != nil {
			return fmt.Errorf("pull sub-comments from feed %s: %w", feedID, err)
		}
	}
	for commentID, ids := range pullFromComments {
		if err := s.Comments.PullSubComments(ctx, sess, commentID, ids...); err != nil {
			return fmt.Errorf("pull sub-comments from comment %s: %w", commentID, err)
		}
	}
	return nil
}
