package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"worklane.org/internal/authority"
)

type createAccountRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

func (a *API) handleProfileResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/profiles/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	profile, err := a.accounts.ProfileByID(r.Context(), id)
	if err != nil {
		handleAccountError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleUserResource serves /v1/users/{id}/roles: reads for the user
// themself or any admin, writes for admins only.
func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "roles" || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	userID := parts[0]

	switch r.Method {
	case http.MethodGet:
		assignments, err := a.accounts.RoleAssignments(r.Context(), userID)
		if err != nil {
			handleAccountError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
	case http.MethodPost:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		var req roleChangeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		assignment, err := a.accounts.AssignRole(r.Context(), userID, req.Role)
		if err != nil {
			handleAccountError(w, r, err)
			return
		}
		a.audit(r, "roles.assign", map[string]any{
			"user_id": userID,
			"role":    assignment.RoleName,
		})
		writeJSON(w, http.StatusCreated, assignment)
	case http.MethodDelete:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		role := strings.TrimSpace(r.URL.Query().Get("role"))
		if role == "" {
			writeError(w, r, http.StatusBadRequest, "role query parameter is required")
			return
		}
		if err := a.accounts.RemoveRole(r.Context(), userID, role); err != nil {
			handleAccountError(w, r, err)
			return
		}
		a.audit(r, "roles.remove", map[string]any{
			"user_id": userID,
			"role":    role,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (a *API) handleAccountsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !a.requireRole(w, r, authority.RoleAdmin) {
		return
	}
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	acct, err := a.accounts.CreateAccount(r.Context(), req.Email, req.Password, req.Department, req.Designation)
	if err != nil {
		handleAccountError(w, r, err)
		return
	}
	a.audit(r, "accounts.create", map[string]any{
		"account_id": acct.ID,
		"email":      acct.Email,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/profiles/%s", acct.ID))
	writeJSON(w, http.StatusCreated, acct)
}

func (a *API) handleRolesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !a.requireRole(w, r, authority.RoleAdmin, authority.RoleManager) {
			return
		}
		roles, err := a.accounts.ListRoles(r.Context())
		if err != nil {
			handleAccountError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
	case http.MethodPost:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		var req createRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, err := a.accounts.CreateRole(r.Context(), req.Name, req.Description)
		if err != nil {
			handleAccountError(w, r, err)
			return
		}
		a.audit(r, "roles.create", map[string]any{"role": role.Name})
		writeJSON(w, http.StatusCreated, role)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
