// Package engage implements the internal social feed: posts scoped to a
// department and category, with likes and threaded comments.
package engage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"worklane.org/internal/ids"
	"worklane.org/internal/stream"
)

// Wildcard matches any department or category in a feed query.
const Wildcard = "All"

var (
	ErrNotFound     = errors.New("engage: not found")
	ErrInvalidInput = errors.New("engage: invalid input")
)

// Post is one feed entry.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Department string    `json:"department"`
	Location   string    `json:"location,omitempty"`
	Category   string    `json:"category"`
	Body       string    `json:"body"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is one reply on a post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Query filters the feed. Zero or Wildcard fields match everything; set
// fields must all match. Search matches post bodies and author names,
// case-insensitively.
type Query struct {
	Department string
	Location   string
	Category   string
	Search     string
}

// Store describes the persistence operations the feed needs.
type Store interface {
	CreatePost(ctx context.Context, p *Post) error
	ListPosts(ctx context.Context, q Query) ([]Post, error)
	LikePost(ctx context.Context, postID string) (*Post, error)
	CreateComment(ctx context.Context, c *Comment) (*Post, error)
	ListComments(ctx context.Context, postID string) ([]Comment, error)
}

// Service validates feed operations and fans new posts out to
// subscribers.
type Service struct {
	store Store
	posts *stream.Stream[Post]
	now   func() time.Time
}

// NewService constructs the feed service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("engage store is required")
	}
	return &Service{
		store: store,
		posts: stream.New[Post](),
		now:   time.Now,
	}, nil
}

// Subscribe delivers every post created after the call, until ctx ends.
func (s *Service) Subscribe(ctx context.Context) <-chan Post {
	return s.posts.Subscribe(ctx)
}

// Draft carries the fields for a new feed entry.
type Draft struct {
	AuthorID   string
	AuthorName string
	Department string
	Location   string
	Category   string
	Body       string
}

// CreatePost validates and stores a new feed entry, then publishes it.
func (s *Service) CreatePost(ctx context.Context, d Draft) (Post, error) {
	d.Body = strings.TrimSpace(d.Body)
	if d.Body == "" {
		return Post{}, fmt.Errorf("%w: post body is required", ErrInvalidInput)
	}
	d.Department = strings.TrimSpace(d.Department)
	d.Location = strings.TrimSpace(d.Location)
	d.Category = strings.TrimSpace(d.Category)
	if d.Department == "" || strings.EqualFold(d.Department, Wildcard) {
		return Post{}, fmt.Errorf("%w: post needs a concrete department", ErrInvalidInput)
	}
	if d.Category == "" || strings.EqualFold(d.Category, Wildcard) {
		return Post{}, fmt.Errorf("%w: post needs a concrete category", ErrInvalidInput)
	}
	if strings.EqualFold(d.Location, Wildcard) {
		return Post{}, fmt.Errorf("%w: post needs a concrete location", ErrInvalidInput)
	}

	p := &Post{
		ID:         ids.New(),
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Department: d.Department,
		Location:   d.Location,
		Category:   d.Category,
		Body:       d.Body,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return Post{}, err
	}
	s.posts.Publish(*p)
	return *p, nil
}

// ListPosts returns the feed newest-first, narrowed by q.
func (s *Service) ListPosts(ctx context.Context, q Query) ([]Post, error) {
	if strings.EqualFold(q.Department, Wildcard) {
		q.Department = ""
	}
	if strings.EqualFold(q.Location, Wildcard) {
		q.Location = ""
	}
	if strings.EqualFold(q.Category, Wildcard) {
		q.Category = ""
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.store.ListPosts(ctx, q)
}

// Like increments the post's like counter and returns the updated post.
func (s *Service) Like(ctx context.Context, postID string) (Post, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return Post{}, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}
	p, err := s.store.LikePost(ctx, postID)
	if err != nil {
		return Post{}, err
	}
	return *p, nil
}

// AddComment stores a reply and returns the post with its comment count
// already bumped.
func (s *Service) AddComment(ctx context.Context, postID, authorID, authorName, body string) (Comment, Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, Post{}, fmt.Errorf("%w: comment body is required", ErrInvalidInput)
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return Comment{}, Post{}, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}
	c := &Comment{
		ID:         ids.New(),
		PostID:     postID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}
	p, err := s.store.CreateComment(ctx, c)
	if err != nil {
		return Comment{}, Post{}, err
	}
	return *c, *p, nil
}

// Comments lists a post's replies oldest-first.
func (s *Service) Comments(ctx context.Context, postID string) ([]Comment, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}
	return s.store.ListComments(ctx, postID)
}
