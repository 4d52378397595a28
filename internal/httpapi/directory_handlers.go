package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"worklane.org/internal/authority"
	"worklane.org/internal/directory"
)

func (a *API) handleEmployeesCollection(w http.ResponseWriter, r *http.Request) {
	if a.directory == nil {
		writeError(w, r, http.StatusServiceUnavailable, "directory service unavailable")
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.requireRole(w, r, authority.RoleAdmin, authority.RoleManager) {
			return
		}
		employees, err := a.directory.List(r.Context())
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
	case http.MethodPost:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		var req directory.CreateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		emp, err := a.directory.Create(r.Context(), req)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		a.audit(r, "employees.create", map[string]any{
			"employee_id": emp.ID,
			"account_id":  emp.AccountID,
		})
		w.Header().Set("Location", fmt.Sprintf("/v1/employees/%s", emp.ID))
		writeJSON(w, http.StatusCreated, emp)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEmployeeResource(w http.ResponseWriter, r *http.Request) {
	if a.directory == nil {
		writeError(w, r, http.StatusServiceUnavailable, "directory service unavailable")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/employees/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !a.requireRole(w, r, authority.RoleAdmin, authority.RoleManager) {
			return
		}
		emp, err := a.directory.Get(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emp)
	case http.MethodPatch:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		var upd directory.Update
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		emp, err := a.directory.Patch(r.Context(), id, upd)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		a.audit(r, "employees.update", map[string]any{"employee_id": id})
		writeJSON(w, http.StatusOK, emp)
	case http.MethodDelete:
		if !a.requireRole(w, r, authority.RoleAdmin) {
			return
		}
		emp, err := a.directory.Deactivate(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		a.audit(r, "employees.deactivate", map[string]any{"employee_id": id})
		writeJSON(w, http.StatusOK, emp)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func handleDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
