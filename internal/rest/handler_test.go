package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/rest"
	"github.com/Guyuepp/travel-feed/internal/rest/response"
)

// authAs stands in for the auth middleware.
func authAs(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set("user_id", uid)
		}
		c.Next()
	}
}

type env struct {
	router   *gin.Engine
	feeds    *feedUsecase
	comments *commentUsecase
	replies  *subCommentUsecase
	users    *userUsecase
}

func newEnv(t *testing.T, uid string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rest.RegisterValidations()

	e := &env{
		router:   gin.New(),
		feeds:    new(feedUsecase),
		comments: new(commentUsecase),
		replies:  new(subCommentUsecase),
		users:    new(userUsecase),
	}
	feedH := rest.NewFeedHandler(e.feeds)
	commentH := rest.NewCommentHandler(e.comments)
	replyH := rest.NewSubCommentHandler(e.replies)
	userH := rest.NewUserHandler(e.users)

	e.router.GET("/feeds/:id", feedH.Detail)
	g := e.router.Group("/", authAs(uid))
	g.POST("/feeds", feedH.Create)
	g.DELETE("/feeds/:id", feedH.Delete)
	g.POST("/feeds/:id/like", feedH.Like)
	g.DELETE("/feeds/:id/like", feedH.Dislike)
	g.POST("/feeds/:id/comments", commentH.Create)
	g.PUT("/feeds/:id/comments/:commentID", commentH.Update)
	g.DELETE("/feeds/:id/comments/:commentID", commentH.Delete)
	g.POST("/feeds/:id/comments/:commentID/like", commentH.Like)
	g.DELETE("/feeds/:id/comments/:commentID/like", commentH.Dislike)
	g.POST("/feeds/:id/comments/:commentID/replies", replyH.Create)
	g.PUT("/feeds/:id/comments/:commentID/replies/:subCommentID", replyH.Update)
	g.DELETE("/feeds/:id/comments/:commentID/replies/:subCommentID", replyH.Delete)
	g.DELETE("/users/me", userH.Withdraw)

	t.Cleanup(func() {
		e.feeds.AssertExpectations(t)
		e.comments.AssertExpectations(t)
		e.replies.AssertExpectations(t)
		e.users.AssertExpectations(t)
	})
	return e
}

func (e *env) do(method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.7:41000"
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestFeedDetail(t *testing.T) {
	e := newEnv(t, "")
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	detail := domain.FeedDetail{
		Feed:     domain.Feed{ID: "f1", Title: "Incheon", ViewCount: 3, LikeCount: 1, WriterID: "u1", CreatedAt: now},
		Writer:   domain.User{ID: "u1", Nickname: "kim"},
		Location: domain.Location{ID: "l1", Address: "ICN T2", Lat: 37.46, Lng: 126.44},
		Images:   []domain.Image{{ID: "i1", Path: "https://cdn/a.png", Name: "a.png"}},
		Comments: []domain.CommentDetail{{
			Comment:     domain.Comment{ID: "c1", FeedID: "f1", Content: "nice"},
			SubComments: []domain.SubComment{{ID: "s1", ParentCommentID: "c1", Content: "thanks"}},
		}},
	}
	e.feeds.On("Detail", mock.Anything, "f1", "10.0.0.7").Return(detail, nil).Once()

	rec := e.do(http.MethodGet, "/feeds/f1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got response.FeedDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "f1", got.ID)
	assert.Equal(t, int64(3), got.Views)
	assert.Equal(t, "2024-05-01 10:00:00", got.CreatedAt)
	require.NotNil(t, got.Writer)
	assert.Equal(t, "kim", got.Writer.Nickname)
	require.NotNil(t, got.Location)
	assert.Equal(t, "ICN T2", got.Location.Address)
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "s1", got.Comments[0].Replies[0].ID)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get feed: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAlreadyLiked, http.StatusBadRequest},
		{domain.ErrNotLiked, http.StatusBadRequest},
		{domain.ErrBadParamInput, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrConflict, http.StatusConflict},
		{fmt.Errorf("like feed: %w", domain.ErrTransactionFailed), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := newEnv(t, "u1")
			e.feeds.On("Like", mock.Anything, "u1", "f1").Return(tt.err).Once()

			rec := e.do(http.MethodPost, "/feeds/f1/like", nil)
			assert.Equal(t, tt.status, rec.Code)

			var body rest.ResponseError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Message)
		})
	}
}

func TestCreateFeed(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := newEnv(t, "u1")
		e.feeds.On("Create", mock.Anything, "u1", mock.MatchedBy(func(in domain.NewFeed) bool {
			return in.Title == "Haneda" && in.Location.Address == "HND T3" &&
				len(in.Images) == 2 && in.Images[1].Key == "k2"
		})).Return(domain.Feed{ID: "f1", Title: "Haneda", WriterID: "u1"}, nil).Once()

		rec := e.do(http.MethodPost, "/feeds", map[string]any{
			"title":        "Haneda",
			"content":      "layover",
			"travel_date":  "2024-04-01",
			"airport_name": "HND",
			"location":     map[string]any{"address": "HND T3", "lat": 35.54, "lng": 139.78},
			"images": []map[string]string{
				{"key": "k1", "path": "https://cdn/k1", "name": "1.png"},
				{"key": "k2", "path": "https://cdn/k2", "name": "2.png"},
			},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var got response.Feed
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "f1", got.ID)
	})

	t.Run("invalid body", func(t *testing.T) {
		e := newEnv(t, "u1")
		rec := e.do(http.MethodPost, "/feeds", map[string]any{
			"title":    "no content",
			"location": map[string]any{"address": "x", "lat": 123},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("image without key", func(t *testing.T) {
		e := newEnv(t, "u1")
		rec := e.do(http.MethodPost, "/feeds", map[string]any{
			"title":        "t",
			"content":      "c",
			"travel_date":  "2024-04-01",
			"airport_name": "HND",
			"location":     map[string]any{"address": "x"},
			"images":       []map[string]string{{"path": "https://cdn/k1"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("title fits the column", func(t *testing.T) {
		body := func(title string) map[string]any {
			return map[string]any{
				"title":        title,
				"content":      "c",
				"travel_date":  "2024-04-01",
				"airport_name": "HND",
				"location":     map[string]any{"address": "x"},
			}
		}
		e := newEnv(t, "u1")
		e.feeds.On("Create", mock.Anything, "u1", mock.Anything).
			Return(domain.Feed{ID: "f1"}, nil).Once()

		// counted in characters, like varchar
		rec := e.do(http.MethodPost, "/feeds", body(strings.Repeat("羽", 100)))
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = e.do(http.MethodPost, "/feeds", body(strings.Repeat("a", 101)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		e.feeds.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		e := newEnv(t, "")
		rec := e.do(http.MethodPost, "/feeds", map[string]any{
			"title":        "t",
			"content":      "c",
			"travel_date":  "2024-04-01",
			"airport_name": "HND",
			"location":     map[string]any{"address": "x"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDeleteFeed(t *testing.T) {
	e := newEnv(t, "u1")
	e.feeds.On("Delete", mock.Anything, "u1", "f1").Return(nil).Once()
	e.feeds.On("Delete", mock.Anything, "u1", "f2").Return(domain.ErrForbidden).Once()

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/feeds/f1", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/feeds/f2", nil).Code)
}

func TestDislikeFeed(t *testing.T) {
	e := newEnv(t, "u1")
	e.feeds.On("Dislike", mock.Anything, "u1", "f1").Return(domain.ErrNotLiked).Once()

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodDelete, "/feeds/f1/like", nil).Code)
}

func TestCommentRoutes(t *testing.T) {
	e := newEnv(t, "u1")
	e.comments.On("Create", mock.Anything, "u1", "f1", "hello").
		Return(domain.Comment{ID: "c1", FeedID: "f1", WriterID: "u1", Content: "hello"}, nil).Once()
	e.comments.On("Update", mock.Anything, "u1", "f1", "c1", "edited").Return(nil).Once()
	e.comments.On("Delete", mock.Anything, "u1", "f1", "c1").Return(nil).Once()
	e.comments.On("Like", mock.Anything, "u1", "f1", "c1").Return(domain.ErrAlreadyLiked).Once()
	e.comments.On("Dislike", mock.Anything, "u1", "f1", "c1").Return(nil).Once()

	rec := e.do(http.MethodPost, "/feeds/f1/comments", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var got response.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c1", got.ID)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/feeds/f1/comments", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/feeds/f1/comments", map[string]string{"content": "  \n"}).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodPut, "/feeds/f1/comments/c1", map[string]string{"content": "edited"}).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/feeds/f1/comments/c1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/feeds/f1/comments/c1/like", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/feeds/f1/comments/c1/like", nil).Code)
}

func TestSubCommentRoutes(t *testing.T) {
	e := newEnv(t, "u1")
	e.replies.On("Create", mock.Anything, "u1", "f1", "c1", "reply").
		Return(domain.SubComment{ID: "s1", FeedID: "f1", ParentCommentID: "c1", Content: "reply"}, nil).Once()
	e.replies.On("Update", mock.Anything, "u1", "f1", "c1", "s1", "edited").Return(domain.ErrForbidden).Once()
	e.replies.On("Delete", mock.Anything, "u1", "f1", "c1", "s1").Return(domain.ErrNotFound).Once()

	rec := e.do(http.MethodPost, "/feeds/f1/comments/c1/replies", map[string]string{"content": "reply"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var got response.SubComment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c1", got.ParentCommentID)

	assert.Equal(t, http.StatusForbidden,
		e.do(http.MethodPut, "/feeds/f1/comments/c1/replies/s1", map[string]string{"content": "edited"}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/feeds/f1/comments/c1/replies/s1", nil).Code)
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t, "u1")
	e.users.On("Withdraw", mock.Anything, "u1", "pw").Return(nil).Once()
	e.users.On("Withdraw", mock.Anything, "u1", "bad").Return(domain.ErrForbidden).Once()

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/users/me", map[string]string{"password": "pw"}).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/users/me", map[string]string{"password": "bad"}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodDelete, "/users/me", nil).Code)
}
