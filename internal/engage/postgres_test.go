package engage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := NewPGStore(db)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	return store, mock
}

func postRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "author_id", "author_name", "department", "location", "category", "body", "likes", "comments", "created_at",
	}).AddRow("post-1", "u-1", "Aida", "Engineering", "Almaty", "Announcement", "release day", 4, 1, now)
}

func TestListPostsPassesFilterArgs(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`select .* from posts`).
		WithArgs("Engineering", "", "", "release").
		WillReturnRows(postRows(time.Now().UTC()))

	posts, err := store.ListPosts(context.Background(), Query{Department: "Engineering", Search: "release"})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].Likes != 4 {
		t.Fatalf("unexpected posts %+v", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLikeUnknownPostNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`update posts set likes = likes \+ 1`).
		WithArgs("post-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.LikePost(context.Background(), "post-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCommentBumpsCounterInOneTx(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`insert into post_comments`).
		WithArgs("c-1", "post-1", "u-2", "Bek", "congrats", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`update posts set comments = comments \+ 1`).
		WithArgs("post-1").
		WillReturnRows(postRows(now))
	mock.ExpectCommit()

	p, err := store.CreateComment(context.Background(), &Comment{
		ID: "c-1", PostID: "post-1", AuthorID: "u-2", AuthorName: "Bek",
		Body: "congrats", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if p.Comments != 1 {
		t.Fatalf("expected bumped count from returning row, got %d", p.Comments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateCommentRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`insert into post_comments`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.CreateComment(context.Background(), &Comment{
		ID: "c-1", PostID: "post-1", Body: "x", CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
