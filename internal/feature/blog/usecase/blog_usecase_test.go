package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/blog/domain"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/platform/sanitize"
)

// memPostRepository is an in-memory PostRepository.
type memPostRepository struct {
	mu     sync.Mutex
	posts  map[string]*entity.Post
	nextID int
	clock  time.Time

	UpdateErr error
}

func newMemPostRepository() *memPostRepository {
	return &memPostRepository{
		posts: make(map[string]*entity.Post),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memPostRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memPostRepository) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func clonePost(p *entity.Post) *entity.Post {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	cp.Comments = slices.Clone(p.Comments)
	return &cp
}

func (m *memPostRepository) Create(_ context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.posts[p.ID] = clonePost(p)
	return nil
}

func (m *memPostRepository) FindByID(_ context.Context, id string) (*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (m *memPostRepository) ListPublished(_ context.Context, tag string, offset, limit int) ([]*entity.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*entity.Post
	for _, p := range m.posts {
		if p.IsPublished && (tag == "" || slices.Contains(p.Tags, tag)) {
			matched = append(matched, clonePost(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	if offset >= len(matched) {
		return []*entity.Post{}, total, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total, nil
}

func (m *memPostRepository) Update(_ context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	stored, ok := m.posts[p.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	p.UpdatedAt = m.tick()
	stored.Title, stored.Content, stored.Tags = p.Title, p.Content, slices.Clone(p.Tags)
	stored.IsPublished, stored.UpdatedAt = p.IsPublished, p.UpdatedAt
	return nil
}

func (m *memPostRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPostRepository) AddComment(_ context.Context, postID string, c *entity.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return domain.ErrPostNotFound
	}
	c.ID = "c" + m.id()
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	p.Comments = append(p.Comments, *c)
	return nil
}

func (m *memPostRepository) DeleteComment(_ context.Context, postID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return domain.ErrPostNotFound
	}
	n := len(p.Comments)
	p.Comments = slices.DeleteFunc(p.Comments, func(c entity.Comment) bool { return c.ID == commentID })
	if len(p.Comments) == n {
		return domain.ErrCommentNotFound
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func newTestUsecase() (*blogUsecase, *memPostRepository) {
	repo := newMemPostRepository()
	return NewBlogUsecase(repo, sanitize.New()), repo
}

func seedPost(t *testing.T, uc *blogUsecase, authorID string, published bool, tags ...string) *entity.Post {
	t.Helper()
	p, err := uc.Create(context.Background(), authorID, NewPost{
		Title:   "A post title",
		Content: "Long enough content body.",
		Tags:    tags,
	})
	require.NoError(t, err)
	if published {
		p, err = uc.Update(context.Background(), p.ID, authorID, PostPatch{IsPublished: ptr(true)})
		require.NoError(t, err)
	}
	return p
}

func TestBlogUsecase_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      NewPost
		wantErr error
	}{
		{"valid", NewPost{Title: "Hello", Content: "Some content here", Tags: []string{"go", "web"}}, nil},
		{"title too short", NewPost{Title: "Hey", Content: "Some content here"}, domain.ErrInvalidInput},
		{"title only markup", NewPost{Title: "<b></b>", Content: "Some content here"}, domain.ErrInvalidInput},
		{"content too short", NewPost{Title: "Hello", Content: "short"}, domain.ErrInvalidInput},
		{"too many tags", NewPost{Title: "Hello", Content: "Some content here", Tags: []string{"aa", "bb", "cc", "dd", "ee", "ff"}}, domain.ErrInvalidInput},
		{"tag too short", NewPost{Title: "Hello", Content: "Some content here", Tags: []string{"a"}}, domain.ErrInvalidInput},
		{"title of apostrophes at max", NewPost{Title: strings.Repeat("'", TitleMaxLen), Content: "Some content here"}, nil},
		{"title of ampersands over max", NewPost{Title: strings.Repeat("&", TitleMaxLen+1), Content: "Some content here"}, domain.ErrInvalidInput},
		{"tag of ampersands at max", NewPost{Title: "Hello", Content: "Some content here", Tags: []string{strings.Repeat("&", TagMaxLen), "R&D"}}, nil},
		{"content of ampersands too short", NewPost{Title: "Hello", Content: "&&&&&"}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			uc, _ := newTestUsecase()

			p, err := uc.Create(context.Background(), "author", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, "author", p.Author.ID)
			assert.False(t, p.IsPublished, "posts start as drafts")
			assert.Equal(t, tt.in.Tags, p.Tags)
		})
	}
}

func TestBlogUsecase_Create_Sanitizes(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()

	p, err := uc.Create(context.Background(), "author", NewPost{
		Title:   "<script>alert(1)</script>Real title",
		Content: `<p onclick="evil()">Hello <em>world</em></p><script>x()</script>`,
		Tags:    []string{"<i>go</i>"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Real title", p.Title)
	assert.NotContains(t, p.Content, "script")
	assert.NotContains(t, p.Content, "onclick")
	assert.Contains(t, p.Content, "<em>world</em>")
	assert.Equal(t, []string{"go"}, p.Tags)
}

func TestBlogUsecase_Create_KeepsPlainText(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()

	p, err := uc.Create(ctx, "author", NewPost{
		Title:   "Tom's R&D notes",
		Content: "Some content here",
		Tags:    []string{"R&D", "don't"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tom's R&D notes", p.Title)
	assert.Equal(t, []string{"R&D", "don't"}, p.Tags)

	// writing the title back unchanged must not escape it twice
	got, err := uc.Update(ctx, p.ID, "author", PostPatch{Title: ptr(p.Title)})
	require.NoError(t, err)
	assert.Equal(t, "Tom's R&D notes", got.Title)
}

func TestBlogUsecase_List_Pagination(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()

	for range 25 {
		seedPost(t, uc, "author", true)
	}
	seedPost(t, uc, "author", false)

	var seen []string
	for page, want := range map[int]int{1: 10, 2: 10, 3: 5} {
		res, err := uc.List(ctx, ListQuery{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Posts, want, "page %d", page)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, page, res.CurrentPage)
		for _, p := range res.Posts {
			assert.True(t, p.IsPublished)
			seen = append(seen, p.ID)
		}
	}
	assert.Len(t, seen, 25)

	res, err := uc.List(ctx, ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	for i := 1; i < len(res.Posts); i++ {
		assert.False(t, res.Posts[i].CreatedAt.After(res.Posts[i-1].CreatedAt), "newest first")
	}
}

func TestBlogUsecase_List_Defaults(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()

	seedPost(t, uc, "author", true, "go")
	seedPost(t, uc, "author", true, "rust")

	tests := []struct {
		name      string
		q         ListQuery
		wantPage  int
		wantCount int
	}{
		{"zero values", ListQuery{}, 1, 2},
		{"negative page", ListQuery{Page: -3, Limit: 1}, 1, 1},
		{"limit capped", ListQuery{Limit: 1000}, 1, 2},
		{"tag filter", ListQuery{Tag: "go"}, 1, 1},
		{"unknown tag", ListQuery{Tag: "java"}, 1, 0},
		{"page past the end", ListQuery{Page: 9}, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := uc.List(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, res.CurrentPage)
			assert.Len(t, res.Posts, tt.wantCount)
		})
	}
}

func TestBlogUsecase_Get_Visibility(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()
	draft := seedPost(t, uc, "author", false)

	_, err := uc.Get(ctx, draft.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "anonymous")
	_, err = uc.Get(ctx, draft.ID, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden, "non-author")

	got, err := uc.Get(ctx, draft.ID, "author")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = uc.Update(ctx, draft.ID, "author", PostPatch{IsPublished: ptr(true)})
	require.NoError(t, err)
	_, err = uc.Get(ctx, draft.ID, "stranger")
	assert.NoError(t, err, "published posts are public")

	_, err = uc.Get(ctx, "missing", "author")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestBlogUsecase_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("title only keeps content and tags", func(t *testing.T) {
		uc, _ := newTestUsecase()
		p := seedPost(t, uc, "author", false, "go", "web")

		got, err := uc.Update(ctx, p.ID, "author", PostPatch{Title: ptr("New title")})
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, p.Content, got.Content)
		assert.Equal(t, []string{"go", "web"}, got.Tags)

		stored, err := uc.Get(ctx, p.ID, "author")
		require.NoError(t, err)
		assert.Equal(t, "New title", stored.Title)
		assert.Equal(t, p.Content, stored.Content)
	})

	t.Run("empty title is rejected, not ignored", func(t *testing.T) {
		uc, _ := newTestUsecase()
		p := seedPost(t, uc, "author", false)

		_, err := uc.Update(ctx, p.ID, "author", PostPatch{Title: ptr("")})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty tags clear the list", func(t *testing.T) {
		uc, _ := newTestUsecase()
		p := seedPost(t, uc, "author", false, "go")

		got, err := uc.Update(ctx, p.ID, "author", PostPatch{Tags: ptr([]string{})})
		require.NoError(t, err)
		assert.Empty(t, got.Tags)
	})

	t.Run("unpublish with false", func(t *testing.T) {
		uc, _ := newTestUsecase()
		p := seedPost(t, uc, "author", true)

		got, err := uc.Update(ctx, p.ID, "author", PostPatch{IsPublished: ptr(false)})
		require.NoError(t, err)
		assert.False(t, got.IsPublished)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		uc, _ := newTestUsecase()
		p := seedPost(t, uc, "author", true)

		_, err := uc.Update(ctx, p.ID, "someone-else", PostPatch{Title: ptr("Hijacked")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing post", func(t *testing.T) {
		uc, _ := newTestUsecase()
		_, err := uc.Update(ctx, "missing", "author", PostPatch{})
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		uc, repo := newTestUsecase()
		p := seedPost(t, uc, "author", false)
		repo.UpdateErr = errors.New("boom")

		_, err := uc.Update(ctx, p.ID, "author", PostPatch{Title: ptr("New title")})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBlogUsecase_Delete(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()
	p := seedPost(t, uc, "author", true)
	_, err := uc.AddComment(ctx, p.ID, "reader", "nice")
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, p.ID, "reader"), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, p.ID, "author"))

	_, err = uc.Get(ctx, p.ID, "author")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, p.ID, "author"), domain.ErrPostNotFound)
}

func TestBlogUsecase_AddComment(t *testing.T) {
	t.Parallel()
	uc, _ := newTestUsecase()
	ctx := context.Background()
	published := seedPost(t, uc, "author", true)
	draft := seedPost(t, uc, "author", false)

	tests := []struct {
		name    string
		postID  string
		actor   string
		content string
		wantErr error
	}{
		{"reader on published", published.ID, "reader", "Great post!", nil},
		{"author on draft", draft.ID, "author", "note to self", nil},
		{"reader on draft", draft.ID, "reader", "sneaky", domain.ErrForbidden},
		{"missing post", "missing", "reader", "hello", domain.ErrPostNotFound},
		{"empty after sanitising", published.ID, "reader", "<b></b>", domain.ErrInvalidInput},
		{"too long", published.ID, "reader", strings.Repeat("x", CommentMaxLen+1), domain.ErrInvalidInput},
		{"apostrophes at max", published.ID, "reader", strings.Repeat("'", CommentMaxLen), nil},
		{"ampersands over max", published.ID, "reader", strings.Repeat("&", CommentMaxLen+1), domain.ErrInvalidInput},
		{"punctuation kept", published.ID, "reader", `Tom's "R&D" <3`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := uc.AddComment(ctx, tt.postID, tt.actor, tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, c.ID)
			assert.Equal(t, tt.actor, c.Author.ID)
			assert.Equal(t, tt.content, c.Content)
		})
	}

	got, err := uc.Get(ctx, published.ID, "")
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "Great post!", got.Comments[0].Content)
}

func TestBlogUsecase_DeleteComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		wantErr error
	}{
		{"comment author", "commenter", nil},
		{"post author", "author", nil},
		{"third party", "stranger", domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			uc, _ := newTestUsecase()
			p := seedPost(t, uc, "author", true)
			c, err := uc.AddComment(ctx, p.ID, "commenter", "first!")
			require.NoError(t, err)

			err = uc.DeleteComment(ctx, p.ID, c.ID, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := uc.Get(ctx, p.ID, "")
			require.NoError(t, err)
			assert.Empty(t, got.Comments)
			assert.ErrorIs(t, uc.DeleteComment(ctx, p.ID, c.ID, tt.actor), domain.ErrCommentNotFound)
		})
	}

	t.Run("missing post", func(t *testing.T) {
		uc, _ := newTestUsecase()
		assert.ErrorIs(t, uc.DeleteComment(ctx, "missing", "c1", "author"), domain.ErrPostNotFound)
	})
}
