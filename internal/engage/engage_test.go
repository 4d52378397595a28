package engage

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	createPost    func(ctx context.Context, p *Post) error
	listPosts     func(ctx context.Context, q Query) ([]Post, error)
	likePost      func(ctx context.Context, postID string) (*Post, error)
	createComment func(ctx context.Context, c *Comment) (*Post, error)
	listComments  func(ctx context.Context, postID string) ([]Comment, error)
}

func (s *stubStore) CreatePost(ctx context.Context, p *Post) error {
	if s.createPost == nil {
		return nil
	}
	return s.createPost(ctx, p)
}

func (s *stubStore) ListPosts(ctx context.Context, q Query) ([]Post, error) {
	if s.listPosts == nil {
		return nil, nil
	}
	return s.listPosts(ctx, q)
}

func (s *stubStore) LikePost(ctx context.Context, postID string) (*Post, error) {
	if s.likePost == nil {
		return nil, ErrNotFound
	}
	return s.likePost(ctx, postID)
}

func (s *stubStore) CreateComment(ctx context.Context, c *Comment) (*Post, error) {
	if s.createComment == nil {
		return nil, ErrNotFound
	}
	return s.createComment(ctx, c)
}

func (s *stubStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if s.listComments == nil {
		return nil, nil
	}
	return s.listComments(ctx, postID)
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePostRejectsBlankBody(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.CreatePost(context.Background(), Draft{
		AuthorID: "u-1", AuthorName: "Aida",
		Department: "Engineering", Category: "Announcement", Body: "   ",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePostRejectsWildcardScope(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.CreatePost(context.Background(), Draft{
		AuthorID: "u-1", AuthorName: "Aida",
		Department: "All", Category: "Announcement", Body: "hello",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePostPublishesToSubscribers(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := svc.Subscribe(ctx)

	post, err := svc.CreatePost(context.Background(), Draft{
		AuthorID: "u-1", AuthorName: "Aida",
		Department: "Engineering", Location: "Almaty", Category: "Announcement",
		Body: "release day",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	select {
	case got := <-events:
		if got.ID != post.ID || got.Body != "release day" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected post event")
	}
}

func TestListPostsTreatsWildcardAsUnfiltered(t *testing.T) {
	var got Query
	svc := newTestService(t, &stubStore{
		listPosts: func(ctx context.Context, q Query) ([]Post, error) {
			got = q
			return nil, nil
		},
	})
	if _, err := svc.ListPosts(context.Background(), Query{
		Department: "All", Location: "All", Category: "Event", Search: " relea ",
	}); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if got.Department != "" || got.Location != "" {
		t.Fatalf("expected wildcard scopes cleared, got %+v", got)
	}
	if got.Category != "Event" {
		t.Fatalf("expected category kept, got %q", got.Category)
	}
	if got.Search != "relea" {
		t.Fatalf("expected trimmed search, got %q", got.Search)
	}
}

func TestAddCommentReturnsBumpedPost(t *testing.T) {
	svc := newTestService(t, &stubStore{
		createComment: func(ctx context.Context, c *Comment) (*Post, error) {
			return &Post{ID: c.PostID, Comments: 3}, nil
		},
	})
	comment, post, err := svc.AddComment(context.Background(), "post-1", "u-1", "Aida", "congrats")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.PostID != "post-1" || comment.Body != "congrats" {
		t.Fatalf("unexpected comment %+v", comment)
	}
	if post.Comments != 3 {
		t.Fatalf("expected bumped comment count, got %d", post.Comments)
	}
}

func TestLikeUnknownPost(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.Like(context.Background(), "post-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
