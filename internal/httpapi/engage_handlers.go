package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"worklane.org/internal/engage"
	"worklane.org/internal/token"
)

type createPostRequest struct {
	AuthorName string `json:"author_name"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Body       string `json:"body"`
}

type addCommentRequest struct {
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
}

func (a *API) handlePostsCollection(w http.ResponseWriter, r *http.Request) {
	if a.engage == nil {
		writeError(w, r, http.StatusServiceUnavailable, "engage service unavailable")
		return
	}
	switch r.Method {
	case http.MethodGet:
		posts, err := a.engage.ListPosts(r.Context(), engage.Query{
			Department: strings.TrimSpace(r.URL.Query().Get("department")),
			Location:   strings.TrimSpace(r.URL.Query().Get("location")),
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
			Search:     strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			handleEngageError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	case http.MethodPost:
		userID, ok := token.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "missing identity")
			return
		}
		var req createPostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		post, err := a.engage.CreatePost(r.Context(), engage.Draft{
			AuthorID:   userID,
			AuthorName: req.AuthorName,
			Department: req.Department,
			Location:   req.Location,
			Category:   req.Category,
			Body:       req.Body,
		})
		if err != nil {
			handleEngageError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/engage/posts/%s", post.ID))
		writeJSON(w, http.StatusCreated, post)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePostResource serves /v1/engage/posts/{id}/like and
// /v1/engage/posts/{id}/comments.
func (a *API) handlePostResource(w http.ResponseWriter, r *http.Request) {
	if a.engage == nil {
		writeError(w, r, http.StatusServiceUnavailable, "engage service unavailable")
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/engage/posts/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	postID := parts[0]

	switch parts[1] {
	case "like":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		post, err := a.engage.Like(r.Context(), postID)
		if err != nil {
			handleEngageError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	case "comments":
		switch r.Method {
		case http.MethodGet:
			comments, err := a.engage.Comments(r.Context(), postID)
			if err != nil {
				handleEngageError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
		case http.MethodPost:
			userID, ok := token.UserIDFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "missing identity")
				return
			}
			var req addCommentRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			comment, post, err := a.engage.AddComment(r.Context(), postID, userID, req.AuthorName, req.Body)
			if err != nil {
				handleEngageError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{
				"comment": comment,
				"post":    post,
			})
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func handleEngageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engage.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, engage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
