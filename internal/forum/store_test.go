package forum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestCreateAndGetPost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.CreatePost(ctx, NewPost{Title: "첫 글", Content: "안녕하세요", Author: "민수"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, DefaultCategory, p.Category)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "첫 글", got.Title)
	assert.Equal(t, 1, got.Views)
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestGetPostNotFound(t *testing.T) {
	_, err := newTestStore(t).GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListPostsPagingAndCategory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, cat := range []string{"행사", "일반", "행사", "행사"} {
		_, err := s.CreatePost(ctx, NewPost{Title: string(rune('A' + i)), Content: "x", Author: "a", Category: cat})
		require.NoError(t, err)
	}

	page, err := s.ListPosts(ctx, "", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Posts, 3)
	// 最新的在前
	assert.Equal(t, "D", page.Posts[0].Title)

	page, err = s.ListPosts(ctx, "", 2, 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "A", page.Posts[0].Title)

	page, err = s.ListPosts(ctx, "행사", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	for _, p := range page.Posts {
		assert.Equal(t, "행사", p.Category)
	}
}

func TestCategoryRestricted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreatePost(ctx, NewPost{Title: "t", Content: "c", Author: "a", Category: "saju"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = s.ListPosts(ctx, "saju", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	for _, cat := range Categories {
		p, err := s.CreatePost(ctx, NewPost{Title: "t", Content: "c", Author: "a", Category: cat})
		require.NoError(t, err)
		assert.Equal(t, cat, p.Category)
	}

	page, err := s.ListPosts(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, len(Categories), page.Total)
}

func TestListPostsPageLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ListPosts(ctx, "", MaxPage+1, 20)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	_, err = s.ListPosts(ctx, "", 4611686018427387904, 20)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	page, err := s.ListPosts(ctx, "", MaxPage, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.CreatePost(ctx, NewPost{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, p.ID, "첫 댓글", "b")
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, p.ID, "둘째 댓글", "c")
	require.NoError(t, err)

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "첫 댓글", comments[0].Content)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	_, err = s.CreateComment(ctx, "missing", "x", "y")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = s.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.CreatePost(ctx, NewPost{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, p.ID, "x", "y")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeletePost(ctx, p.ID), ErrPostNotFound)
}
