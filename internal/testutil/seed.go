package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
)

// SeedUser inserts a user whose password is password.
func SeedUser(t testing.TB, db *gorm.DB, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := domain.User{
		ID:       uuid.NewString(),
		Nickname: faker.Username() + uuid.NewString()[:8],
		Email:    uuid.NewString() + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(model.NewUserFromDomain(&u)).Error)
	return u
}

// SeedFeed inserts a feed of writerID with a location and one image per key.
func SeedFeed(t testing.TB, db *gorm.DB, writerID string, keys ...string) domain.Feed {
	t.Helper()
	f := domain.Feed{
		ID:          uuid.NewString(),
		Title:       faker.Sentence(),
		Content:     faker.Paragraph(),
		AirportName: "ICN",
		LocationID:  uuid.NewString(),
		WriterID:    writerID,
	}
	loc := domain.Location{ID: f.LocationID, WriterID: writerID, FeedID: f.ID, Address: "Incheon", Lat: 37.46, Lng: 126.44}
	for _, key := range keys {
		img := domain.Image{ID: uuid.NewString(), WriterID: writerID, FeedID: f.ID, Key: key, Path: "https://cdn/" + key, Name: key}
		row := model.NewImageFromDomain(&img)
		require.NoError(t, db.Create(&row).Error)
		f.ImageIDs = append(f.ImageIDs, img.ID)
	}
	require.NoError(t, db.Create(model.NewLocationFromDomain(&loc)).Error)
	require.NoError(t, db.Create(model.NewFeedFromDomain(&f)).Error)
	return f
}

// SeedComment inserts a comment and links it to the feed.
func SeedComment(t testing.TB, db *gorm.DB, feedID, writerID string) domain.Comment {
	t.Helper()
	c := domain.Comment{ID: uuid.NewString(), FeedID: feedID, WriterID: writerID, Content: faker.Sentence()}
	require.NoError(t, db.Create(model.NewCommentFromDomain(&c)).Error)
	link(t, db, &model.Feed{}, feedID, "comment_ids", c.ID)
	return c
}

// SeedSubComment inserts a reply and links it to the comment and the feed.
func SeedSubComment(t testing.TB, db *gorm.DB, c domain.Comment, writerID string) domain.SubComment {
	t.Helper()
	s := domain.SubComment{ID: uuid.NewString(), FeedID: c.FeedID, ParentCommentID: c.ID, WriterID: writerID, Content: faker.Sentence()}
	require.NoError(t, db.Create(model.NewSubCommentFromDomain(&s)).Error)
	link(t, db, &model.Comment{}, c.ID, "sub_comment_ids", s.ID)
	link(t, db, &model.Feed{}, c.FeedID, "sub_comment_ids", s.ID)
	return s
}

func link(t testing.TB, db *gorm.DB, row any, id, column, ref string) {
	t.Helper()
	var refs []string
	switch r := row.(type) {
	case *model.Feed:
		require.NoError(t, db.First(r, "id = ?", id).Error)
		if column == "comment_ids" {
			refs = r.CommentIDs
		} else {
			refs = r.SubCommentIDs
		}
	case *model.Comment:
		require.NoError(t, db.First(r, "id = ?", id).Error)
		refs = r.SubCommentIDs
	}
	refs = append(refs, ref)
	require.NoError(t, db.Model(row).Where("id = ?", id).Update(column, model.NewIDs(refs)).Error)
}

// Count returns the number of rows of the model matching the condition.
func Count(t testing.TB, db *gorm.DB, row any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(row).Where(query, args...).Count(&n).Error)
	return n
}

// Blobs is an in-memory domain.BlobStore recording deleted keys. The first
// Failures calls fail with Err.
type Blobs struct {
	mu       sync.Mutex
	Deleted  []string
	Calls    int
	Failures int
	Err      error
}

func (b *Blobs) DeleteObjects(_ context.Context, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls++
	if b.Failures != 0 {
		if b.Failures > 0 {
			b.Failures--
		}
		return b.Err
	}
	b.Deleted = append(b.Deleted, keys...)
	return nil
}

func (b *Blobs) DeletedKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.Deleted...)
}
