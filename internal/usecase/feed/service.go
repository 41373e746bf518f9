package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/metrics"
	"github.com/Guyuepp/travel-feed/internal/usecase"
)

// Deps are the collaborators of the feed service.
type Deps struct {
	Transactor  domain.Transactor
	Feeds       domain.FeedRepository
	Images      domain.ImageRepository
	Locations   domain.LocationRepository
	Comments    domain.CommentRepository
	SubComments domain.SubCommentRepository
	Users       domain.UserRepository
	Blobs       domain.BlobStore
	Bloom       domain.BloomRepository
	Guard       domain.ViewGuard
	Counter     domain.ViewCounter
}

// loads shared through detailGroup outlive the caller that started them
const detailLoadTimeout = 10 * time.Second

type Service struct {
	Deps
	retry       usecase.Retry
	newID       func() string
	detailGroup singleflight.Group
}

var _ domain.FeedUsecase = (*Service)(nil)

type Option func(*Service)

// WithRetry sets the backoff of the blob deletes and bloom filter adds.
func WithRetry(r usecase.Retry) Option {
	return func(s *Service) {
		s.retry = r
	}
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService will create a new feed service object
func NewService(d Deps, opts ...Option) *Service {
	s := &Service{
		Deps:  d,
		retry: usecase.DefaultRetry,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitBloomFilter loads every feed id into the bloom filter and marks it
// ready. It also recovers a filter invalidated by a failed add.
func (s *Service) InitBloomFilter(ctx context.Context) error {
	const batch = 1000
	cursor := ""
	for {
		ids, err := s.Feeds.FetchIDs(ctx, cursor, batch)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return s.Bloom.MarkReady(ctx)
		}
		if err := s.Bloom.BulkAdd(ctx, ids); err != nil {
			return err
		}
		cursor = ids[len(ids)-1]
	}
}

func (s *Service) Detail(ctx context.Context, feedID, clientID string) (domain.FeedDetail, error) {
	v, err, _ := s.detailGroup.Do(feedID, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detailLoadTimeout)
		defer cancel()
		return s.loadDetail(ctx, feedID)
	})
	if err != nil {
		return domain.FeedDetail{}, err
	}

	s.countView(ctx, feedID, clientID)

	detail := v.(domain.FeedDetail)
	return detail, nil
}

func (s *Service) loadDetail(ctx context.Context, feedID string) (domain.FeedDetail, error) {
	feed, err := usecase.FeedExists(ctx, s.Bloom, s.Feeds, feedID)
	if err != nil {
		return domain.FeedDetail{}, err
	}

	detail := domain.FeedDetail{Feed: feed}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		writer, err := s.Users.GetByID(ctx, nil, feed.WriterID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		detail.Writer = writer
		detail.Writer.Password = ""
		return err
	})
	g.Go(func() error {
		location, err := s.Locations.GetByFeed(ctx, nil, feedID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		detail.Location = location
		return err
	})
	g.Go(func() (err error) {
		detail.Images, err = s.Images.FetchByFeed(ctx, nil, feedID)
		return
	})
	g.Go(func() (err error) {
		detail.Comments, err = s.loadComments(ctx, feedID)
		return
	})

	if err := g.Wait(); err != nil {
		return domain.FeedDetail{}, err
	}
	return detail, nil
}

// loadComments returns the comments of the feed with their sub-comments,
// both newest first.
func (s *Service) loadComments(ctx context.Context, feedID string) ([]domain.CommentDetail, error) {
	var (
		comments []domain.Comment
		subs     []domain.SubComment
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		comments, err = s.Comments.FetchByFeed(ctx, nil, feedID)
		return
	})
	g.Go(func() (err error) {
		subs, err = s.SubComments.FetchByFeed(ctx, nil, feedID)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byParent := make(map[string][]domain.SubComment)
	for _, sub := range subs {
		byParent[sub.ParentCommentID] = append(byParent[sub.ParentCommentID], sub)
	}

	res := make([]domain.CommentDetail, len(comments))
	for i, c := range comments {
		res[i] = domain.CommentDetail{Comment: c, SubComments: byParent[c.ID]}
		if res[i].SubComments == nil {
			res[i].SubComments = []domain.SubComment{}
		}
	}
	return res, nil
}

// countView records a read of the feed. A Redis error from the guard or the
// counter does not fail the read: it is logged, counted under
// travelfeed_feed_views_total{result="error"}, and the view is lost.
func (s *Service) countView(ctx context.Context, feedID, clientID string) {
	fresh, err := s.Guard.RegisterView(ctx, feedID, clientID)
	if err != nil {
		metrics.Views.WithLabelValues("error").Inc()
		logrus.Warnf("view of feed %s not counted: %v", feedID, err)
		return
	}
	if !fresh {
		metrics.Views.WithLabelValues("duplicate").Inc()
		return
	}

	if err := s.Counter.Increment(ctx, feedID); err != nil {
		metrics.Views.WithLabelValues("error").Inc()
		logrus.Warnf("view of feed %s not counted: %v", feedID, err)
		return
	}
	metrics.Views.WithLabelValues("fresh").Inc()
}

func (s *Service) Create(ctx context.Context, writerID string, in domain.NewFeed) (domain.Feed, error) {
	keys := make([]string, len(in.Images))
	for i, f := range in.Images {
		keys[i] = f.Key
	}
	cleanupCtx := context.WithoutCancel(ctx)

	if _, err := s.Users.GetByID(ctx, nil, writerID); err != nil {
		usecase.CompensateBlobs(cleanupCtx, s.Blobs, s.retry, keys)
		return domain.Feed{}, err
	}

	// ids are allocated up front so the rows can reference each other
	feedID := s.newID()
	location := domain.Location{
		ID:       s.newID(),
		WriterID: writerID,
		FeedID:   feedID,
		Address:  in.Location.Address,
		Lat:      in.Location.Lat,
		Lng:      in.Location.Lng,
	}
	images := make([]domain.Image, len(in.Images))
	imageIDs := make([]string, len(in.Images))
	for i, f := range in.Images {
		images[i] = domain.Image{
			ID:       s.newID(),
			WriterID: writerID,
			FeedID:   feedID,
			Key:      f.Key,
			Path:     f.Path,
			Name:     f.Name,
		}
		imageIDs[i] = images[i].ID
	}
	feed := domain.Feed{
		ID:            feedID,
		Title:         in.Title,
		Content:       in.Content,
		TravelDate:    in.TravelDate,
		AirportName:   in.AirportName,
		CommentIDs:    []string{},
		SubCommentIDs: []string{},
		ImageIDs:      imageIDs,
		LocationID:    location.ID,
		WriterID:      writerID,
	}

	err := s.Transactor.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		if err := s.Images.Create(ctx, sess, images); err != nil {
			return fmt.Errorf("create images: %w", err)
		}
		if err := s.Locations.Create(ctx, sess, &location); err != nil {
			return fmt.Errorf("create location: %w", err)
		}
		if err := s.Feeds.Create(ctx, sess, &feed); err != nil {
			return fmt.Errorf("create feed: %w", err)
		}
		return nil
	})
	if err != nil {
		usecase.CompensateBlobs(cleanupCtx, s.Blobs, s.retry, keys)
		return domain.Feed{}, usecase.TransactionFailed("create feed", err)
	}

	usecase.AddToBloom(cleanupCtx, s.Bloom, s.retry, feed.ID)
	return feed, nil
}

func (s *Service) Delete(ctx context.Context, userID, feedID string) error {
	feed, err := s.Feeds.GetByID(ctx, nil, feedID)
	if err != nil {
		return err
	}
	if feed.WriterID != userID {
		return domain.ErrForbidden
	}

	images, err := s.Images.FetchByFeed(ctx, nil, feedID)
	if err != nil {
		return err
	}

	err = s.Transactor.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		if err := s.SubComments.DeleteByFeeds(ctx, sess, feedID); err != nil {
			return fmt.Errorf("delete sub-comments: %w", err)
		}
		if err := s.Comments.DeleteByFeeds(ctx, sess, feedID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := s.Locations.DeleteByFeeds(ctx, sess, feedID); err != nil {
			return fmt.Errorf("delete location: %w", err)
		}
		if err := s.Images.DeleteByFeeds(ctx, sess, feedID); err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := s.Feeds.Delete(ctx, sess, feedID); err != nil {
			return fmt.Errorf("delete feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return usecase.TransactionFailed("delete feed", err)
	}

	cleanupCtx := context.WithoutCancel(ctx)
	usecase.CompensateBlobs(cleanupCtx, s.Blobs, s.retry, usecase.BlobKeys(images))
	usecase.ForgetViews(cleanupCtx, s.Guard, s.Counter, feedID)
	return nil
}

func (s *Service) Like(ctx context.Context, userID, feedID string) error {
	return s.toggleLike(ctx, userID, feedID, true)
}

func (s *Service) Dislike(ctx context.Context, userID, feedID string) error {
	return s.toggleLike(ctx, userID, feedID, false)
}

// toggleLike checks the liked set before and again, under the user row
// lock, inside the transaction. Counter and set change together.
func (s *Service) toggleLike(ctx context.Context, userID, feedID string, like bool) error {
	if _, err := s.Feeds.GetByID(ctx, nil, feedID); err != nil {
		return err
	}
	user, err := s.Users.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if err := likeState(user, feedID, like); err != nil {
		return err
	}

	err = s.Transactor.WithTransaction(ctx, func(ctx context.Context, sess domain.Session) error {
		user, err := s.Users.GetForUpdate(ctx, sess, userID)
		if err != nil {
			return err
		}
		if err := likeState(user, feedID, like); err != nil {
			return err
		}

		delta, liked := int64(1), append(slices.Clone(user.LikedFeedIDs), feedID)
		if !like {
			delta = -1
			liked = slices.DeleteFunc(slices.Clone(user.LikedFeedIDs), func(id string) bool { return id == feedID })
		}
		if err := s.Feeds.AddLikes(ctx, sess, feedID, delta); err != nil {
			return err
		}
		return s.Users.UpdateLikedFeeds(ctx, sess, userID, liked)
	})
	if err != nil {
		if like {
			return usecase.TransactionFailed("like feed", err)
		}
		return usecase.TransactionFailed("dislike feed", err)
	}
	return nil
}

func likeState(user domain.User, feedID string, like bool) error {
	switch liked := user.HasLikedFeed(feedID); {
	case like && liked:
		return domain.ErrAlreadyLiked
	case !like && !liked:
		return domain.ErrNotLiked
	}
	return nil
}
