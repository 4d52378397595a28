package engage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore implements Store on PostgreSQL. Like and comment counters are
// bumped in the same transaction as the write that changes them.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("engage store requires a database handle")
	}
	return &PGStore{db: db}, nil
}

const postColumns = `id, author_id, author_name, department, location, category, body, likes, comments, created_at`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Department, &p.Location, &p.Category, &p.Body, &p.Likes, &p.Comments, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &p, nil
}

func (s *PGStore) CreatePost(ctx context.Context, p *Post) error {
	_, err := s.db.ExecContext(ctx, `
		insert into posts (id, author_id, author_name, department, location, category, body, likes, comments, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8)`,
		p.ID, p.AuthorID, p.AuthorName, p.Department, p.Location, p.Category, p.Body, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PGStore) ListPosts(ctx context.Context, q Query) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+postColumns+`
		from posts
		where ($1 = '' or department = $1)
		  and ($2 = '' or location = $2)
		  and ($3 = '' or category = $3)
		  and ($4 = '' or body ilike '%' || $4 || '%' or author_name ilike '%' || $4 || '%')
		order by created_at desc`,
		q.Department, q.Location, q.Category, q.Search,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) LikePost(ctx context.Context, postID string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `
		update posts set likes = likes + 1 where id = $1
		returning `+postColumns,
		postID,
	)
	return scanPost(row)
}

func (s *PGStore) CreateComment(ctx context.Context, c *Comment) (*Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin comment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		insert into post_comments (id, post_id, author_id, author_name, body, created_at)
		values ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PostID, c.AuthorID, c.AuthorName, c.Body, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		update posts set comments = comments + 1 where id = $1
		returning `+postColumns,
		c.PostID,
	)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit comment tx: %w", err)
	}
	return p, nil
}

func (s *PGStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, post_id, author_id, author_name, body, created_at
		from post_comments
		where post_id = $1
		order by created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
