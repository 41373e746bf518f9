package feed_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	mysqlRepo "github.com/Guyuepp/travel-feed/internal/repository/mysql"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
	"github.com/Guyuepp/travel-feed/internal/repository/redis"
	"github.com/Guyuepp/travel-feed/internal/testutil"
	"github.com/Guyuepp/travel-feed/internal/usecase"
	"github.com/Guyuepp/travel-feed/internal/usecase/feed"
	"github.com/Guyuepp/travel-feed/internal/usecase/view"
)

var fastRetry = usecase.Retry{Max: 2, Base: time.Millisecond}

type env struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	blobs *testutil.Blobs
	deps  feed.Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	mr, client := testutil.NewRedis(t)
	cache := redis.NewViewCache(client)
	blobs := &testutil.Blobs{}
	return &env{
		db:    db,
		mr:    mr,
		blobs: blobs,
		deps: feed.Deps{
			Transactor:  mysqlRepo.NewTransactor(db),
			Feeds:       mysqlRepo.NewFeedRepository(db),
			Images:      mysqlRepo.NewImageRepository(db),
			Locations:   mysqlRepo.NewLocationRepository(db),
			Comments:    mysqlRepo.NewCommentRepository(db),
			SubComments: mysqlRepo.NewSubCommentRepository(db),
			Users:       mysqlRepo.NewUserRepository(db),
			Blobs:       blobs,
			Bloom:       redis.NewRedisBloomRepo(client, 1<<20),
			Guard:       view.NewGuard(cache),
			Counter:     view.NewCounter(cache),
		},
	}
}

// service builds the feed service with the bloom filter loaded from the
// feeds seeded so far.
func (e *env) service(t *testing.T) *feed.Service {
	t.Helper()
	svc := feed.NewService(e.deps, feed.WithRetry(fastRetry))
	require.NoError(t, svc.InitBloomFilter(context.Background()))
	return svc
}

func newFeed() domain.NewFeed {
	return domain.NewFeed{
		Title:       "Layover at Changi",
		Content:     "The butterfly garden is open all night.",
		TravelDate:  "2024-02-11",
		AirportName: "SIN",
		Location:    domain.NewLocation{Address: "Airport Blvd", Lat: 1.36, Lng: 103.99},
		Images: []domain.UploadedFile{
			{Key: "feeds/a.jpg", Path: "https://cdn/feeds/a.jpg", Name: "a.jpg"},
			{Key: "feeds/b.jpg", Path: "https://cdn/feeds/b.jpg", Name: "b.jpg"},
		},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	svc := e.service(t)

	f, err := svc.Create(ctx, writer.ID, newFeed())
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Len(t, f.ImageIDs, 2)

	stored, err := e.deps.Feeds.GetByID(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.LocationID, stored.LocationID)
	assert.ElementsMatch(t, f.ImageIDs, stored.ImageIDs)

	images, err := e.deps.Images.FetchByFeed(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)
	loc, err := e.deps.Locations.GetByFeed(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.LocationID, loc.ID)

	exists, err := e.deps.Bloom.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, e.blobs.DeletedKeys())
}

type failingLocations struct {
	domain.LocationRepository
}

func (failingLocations) Create(context.Context, domain.Session, *domain.Location) error {
	return errors.New("duplicate entry")
}

func TestCreateCompensatesBlobs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	e.deps.Locations = failingLocations{e.deps.Locations}

	_, err := e.service(t).Create(ctx, writer.ID, newFeed())
	assert.ErrorIs(t, err, domain.ErrTransactionFailed)

	assert.ElementsMatch(t, []string{"feeds/a.jpg", "feeds/b.jpg"}, e.blobs.DeletedKeys())
	assert.Zero(t, testutil.Count(t, e.db, &model.Feed{}, "1 = 1"))
	assert.Zero(t, testutil.Count(t, e.db, &model.Image{}, "1 = 1"))
	assert.Zero(t, testutil.Count(t, e.db, &model.Location{}, "1 = 1"))
}

func TestCreateCompensationFailureIsNotEscalated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	e.deps.Locations = failingLocations{e.deps.Locations}
	e.blobs.Failures, e.blobs.Err = -1, errors.New("503 SlowDown")

	_, err := e.service(t).Create(ctx, writer.ID, newFeed())
	assert.ErrorIs(t, err, domain.ErrTransactionFailed)
	// one attempt plus the retries
	assert.Equal(t, int(fastRetry.Max)+1, e.blobs.Calls)
}

func TestCreateUnknownWriter(t *testing.T) {
	e := newEnv(t)

	_, err := e.service(t).Create(context.Background(), "nobody", newFeed())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, e.blobs.DeletedKeys(), 2)
	assert.Zero(t, testutil.Count(t, e.db, &model.Feed{}, "1 = 1"))
}

type failingImages struct {
	domain.ImageRepository
}

func (failingImages) DeleteByFeeds(context.Context, domain.Session, ...string) error {
	return errors.New("connection lost")
}

func seedFullFeed(t *testing.T, e *env) (domain.User, domain.Feed) {
	t.Helper()
	writer := testutil.SeedUser(t, e.db, "secret")
	reader := testutil.SeedUser(t, e.db, "secret")
	f := testutil.SeedFeed(t, e.db, writer.ID, "k1", "k2", "k3")
	c1 := testutil.SeedComment(t, e.db, f.ID, reader.ID)
	testutil.SeedComment(t, e.db, f.ID, writer.ID)
	testutil.SeedSubComment(t, e.db, c1, writer.ID)
	return writer, f
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer, f := seedFullFeed(t, e)
	svc := e.service(t)

	_, err := svc.Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, e.mr.Exists("feed:views:abuse:"+f.ID))
	require.NotEmpty(t, e.mr.HGet("feed:views:pending", f.ID))

	require.NoError(t, svc.Delete(ctx, writer.ID, f.ID))

	for _, row := range []any{&model.SubComment{}, &model.Comment{}, &model.Location{}, &model.Image{}} {
		assert.Zero(t, testutil.Count(t, e.db, row, "feed_id = ?", f.ID))
	}
	assert.Zero(t, testutil.Count(t, e.db, &model.Feed{}, "id = ?", f.ID))
	assert.ElementsMatch(t, []string{"k1", "k2", "k3"}, e.blobs.DeletedKeys())
	assert.False(t, e.mr.Exists("feed:views:abuse:"+f.ID))
	assert.Empty(t, e.mr.HGet("feed:views:pending", f.ID))
}

func TestDeleteRollsBack(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer, f := seedFullFeed(t, e)
	e.deps.Images = failingImages{e.deps.Images}

	err := e.service(t).Delete(ctx, writer.ID, f.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionFailed)

	assert.EqualValues(t, 1, testutil.Count(t, e.db, &model.Feed{}, "id = ?", f.ID))
	assert.EqualValues(t, 1, testutil.Count(t, e.db, &model.Location{}, "feed_id = ?", f.ID))
	assert.EqualValues(t, 3, testutil.Count(t, e.db, &model.Image{}, "feed_id = ?", f.ID))
	assert.EqualValues(t, 2, testutil.Count(t, e.db, &model.Comment{}, "feed_id = ?", f.ID))
	assert.EqualValues(t, 1, testutil.Count(t, e.db, &model.SubComment{}, "feed_id = ?", f.ID))
	assert.Empty(t, e.blobs.DeletedKeys())
}

func TestDeleteChecks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, f := seedFullFeed(t, e)
	other := testutil.SeedUser(t, e.db, "secret")
	svc := e.service(t)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, f.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, "missing"), domain.ErrNotFound)
	assert.EqualValues(t, 1, testutil.Count(t, e.db, &model.Feed{}, "id = ?", f.ID))
}

func TestDeleteCacheFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer, f := seedFullFeed(t, e)
	svc := e.service(t)
	e.mr.Close()

	assert.NoError(t, svc.Delete(ctx, writer.ID, f.ID))
	assert.Zero(t, testutil.Count(t, e.db, &model.Feed{}, "id = ?", f.ID))
}

func TestDetail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer, f := seedFullFeed(t, e)
	svc := e.service(t)

	detail, err := svc.Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, f.ID, detail.ID)
	assert.Equal(t, writer.ID, detail.Writer.ID)
	assert.Empty(t, detail.Writer.Password)
	assert.Equal(t, f.LocationID, detail.Location.ID)
	assert.Len(t, detail.Images, 3)
	require.Len(t, detail.Comments, 2)

	var replies int
	for _, c := range detail.Comments {
		replies += len(c.SubComments)
	}
	assert.Equal(t, 1, replies)

	_, err = svc.Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	_, err = svc.Detail(ctx, f.ID, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, "2", e.mr.HGet("feed:views:pending", f.ID))

	_, err = svc.Detail(ctx, "missing", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type brokenGuard struct{}

func (brokenGuard) RegisterView(context.Context, string, string) (bool, error) {
	return false, errors.New("READONLY")
}

func (brokenGuard) Forget(context.Context, string) error { return nil }

func TestDetailGuardFailureUnderCounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, f := seedFullFeed(t, e)
	e.deps.Guard = brokenGuard{}

	detail, err := e.service(t).Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, f.ID, detail.ID)
	assert.False(t, e.mr.Exists("feed:views:pending"))
}

func TestLikeDislike(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	reader := testutil.SeedUser(t, e.db, "secret")
	f := testutil.SeedFeed(t, e.db, writer.ID)
	svc := e.service(t)

	assert.ErrorIs(t, svc.Dislike(ctx, reader.ID, f.ID), domain.ErrNotLiked)
	require.NoError(t, svc.Like(ctx, reader.ID, f.ID))
	assert.ErrorIs(t, svc.Like(ctx, reader.ID, f.ID), domain.ErrAlreadyLiked)

	stored, err := e.deps.Feeds.GetByID(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.LikeCount)
	u, err := e.deps.Users.GetByID(ctx, nil, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.ID}, u.LikedFeedIDs)

	require.NoError(t, svc.Dislike(ctx, reader.ID, f.ID))
	stored, err = e.deps.Feeds.GetByID(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.LikeCount)

	assert.ErrorIs(t, svc.Like(ctx, reader.ID, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Like(ctx, "nobody", f.ID), domain.ErrNotFound)
}

// racedUsers answers the locked read as if another request had toggled the
// like between the first check and the lock.
type racedUsers struct {
	domain.UserRepository
	liked []string
}

func (r racedUsers) GetForUpdate(ctx context.Context, sess domain.Session, id string) (domain.User, error) {
	u, err := r.UserRepository.GetForUpdate(ctx, sess, id)
	u.LikedFeedIDs = r.liked
	return u, err
}

func TestLikeRecheckedUnderLock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	reader := testutil.SeedUser(t, e.db, "secret")
	f := testutil.SeedFeed(t, e.db, writer.ID)
	users := e.deps.Users

	t.Run("like", func(t *testing.T) {
		e.deps.Users = racedUsers{UserRepository: users, liked: []string{f.ID}}
		err := e.service(t).Like(ctx, reader.ID, f.ID)
		assert.ErrorIs(t, err, domain.ErrTransactionFailed)

		stored, err := e.deps.Feeds.GetByID(ctx, nil, f.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.LikeCount)
		u, err := users.GetByID(ctx, nil, reader.ID)
		require.NoError(t, err)
		assert.Empty(t, u.LikedFeedIDs)
	})

	t.Run("dislike", func(t *testing.T) {
		e.deps.Users = users
		require.NoError(t, e.service(t).Like(ctx, reader.ID, f.ID))

		e.deps.Users = racedUsers{UserRepository: users, liked: []string{}}
		err := e.service(t).Dislike(ctx, reader.ID, f.ID)
		assert.ErrorIs(t, err, domain.ErrTransactionFailed)

		stored, err := e.deps.Feeds.GetByID(ctx, nil, f.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stored.LikeCount)
		u, err := users.GetByID(ctx, nil, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{f.ID}, u.LikedFeedIDs)
	})
}

func TestConcurrentLikesMatchLikedSets(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	f := testutil.SeedFeed(t, e.db, writer.ID)
	svc := e.service(t)

	users := make([]domain.User, 8)
	for i := range users {
		users[i] = testutil.SeedUser(t, e.db, "secret")
	}

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// every user likes twice, odd users also take it back
			_ = svc.Like(ctx, u.ID, f.ID)
			_ = svc.Like(ctx, u.ID, f.ID)
			if i%2 == 1 {
				_ = svc.Dislike(ctx, u.ID, f.ID)
			}
		}()
	}
	wg.Wait()

	var likers int64
	for _, u := range users {
		stored, err := e.deps.Users.GetByID(ctx, nil, u.ID)
		require.NoError(t, err)
		if stored.HasLikedFeed(f.ID) {
			likers++
		}
	}
	stored, err := e.deps.Feeds.GetByID(ctx, nil, f.ID)
	require.NoError(t, err)
	assert.Equal(t, likers, stored.LikeCount)
	assert.EqualValues(t, 4, likers)
}

func TestInitBloomFilter(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	a := testutil.SeedFeed(t, e.db, writer.ID)
	b := testutil.SeedFeed(t, e.db, writer.ID)

	svc := feed.NewService(e.deps)
	// not loaded yet, every id may exist
	exists, err := e.deps.Bloom.Exists(ctx, "missing")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, svc.InitBloomFilter(ctx))
	for _, id := range []string{a.ID, b.ID} {
		exists, err := e.deps.Bloom.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)
	}
	exists, err = e.deps.Bloom.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

type flakyBloom struct {
	domain.BloomRepository
	failures int // -1 fails every Add
	calls    int
}

func (b *flakyBloom) Add(ctx context.Context, id string) error {
	b.calls++
	if b.failures != 0 {
		b.failures--
		return errors.New("connection reset by peer")
	}
	return b.BloomRepository.Add(ctx, id)
}

func TestCreateBloomAddFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("retried", func(t *testing.T) {
		e := newEnv(t)
		writer := testutil.SeedUser(t, e.db, "secret")
		bloom := &flakyBloom{BloomRepository: e.deps.Bloom, failures: 1}
		e.deps.Bloom = bloom
		svc := e.service(t)

		f, err := svc.Create(ctx, writer.ID, newFeed())
		require.NoError(t, err)
		assert.Equal(t, 2, bloom.calls)

		_, err = svc.Detail(ctx, f.ID, "10.0.0.1")
		require.NoError(t, err)
		_, err = svc.Detail(ctx, "missing", "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("given up", func(t *testing.T) {
		e := newEnv(t)
		writer := testutil.SeedUser(t, e.db, "secret")
		bloom := &flakyBloom{BloomRepository: e.deps.Bloom, failures: -1}
		e.deps.Bloom = bloom
		svc := e.service(t)

		f, err := svc.Create(ctx, writer.ID, newFeed())
		require.NoError(t, err)
		assert.Equal(t, int(fastRetry.Max)+1, bloom.calls)

		detail, err := svc.Detail(ctx, f.ID, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, f.ID, detail.ID)
		_, err = svc.Detail(ctx, "missing", "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// a reload trusts the filter again and now holds the feed
		bloom.failures = 0
		require.NoError(t, svc.InitBloomFilter(ctx))
		later := testutil.SeedFeed(t, e.db, writer.ID)
		_, err = svc.Detail(ctx, later.ID, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.Detail(ctx, f.ID, "10.0.0.1")
		assert.NoError(t, err)
	})
}

func TestDetailAfterBloomKeyLost(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	writer := testutil.SeedUser(t, e.db, "secret")
	svc := e.service(t)
	// stored behind the filter's back
	f := testutil.SeedFeed(t, e.db, writer.ID)

	_, err := svc.Detail(ctx, f.ID, "10.0.0.1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	e.mr.Del(redis.KeyFeedBloom)
	detail, err := svc.Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, f.ID, detail.ID)
}

func TestDetailOutlivesCanceledCaller(t *testing.T) {
	e := newEnv(t)
	_, f := seedFullFeed(t, e)
	svc := e.service(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detail, err := svc.Detail(ctx, f.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, f.ID, detail.ID)
	assert.Len(t, detail.Images, 3)
}
