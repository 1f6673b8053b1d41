package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/directory"
)

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := s.directory.ListDepartments(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": depts, "count": len(depts)})
}

func (s *Server) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := s.directory.FindDepartment(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dept directory.Department
	if err := decodeJSON(r, &dept); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.directory.CreateDepartment(r.Context(), &dept); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "create", audit.EntityDepartment, dept.Code, map[string]any{"name": dept.Name})
	writeJSON(w, http.StatusCreated, dept)
}

// handleUpdateDepartment changes name and description. The code is the key
// and cannot be changed.
func (s *Server) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	existing, err := s.directory.FindDepartment(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	code := existing.Code

	if err := decodeJSON(r, existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.Code = code

	if err := s.directory.UpdateDepartment(r.Context(), existing); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "update", audit.EntityDepartment, code, nil)
	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteDepartment removes an empty department; 409 while it has employees.
func (s *Server) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.directory.DeleteDepartment(r.Context(), code); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "delete", audit.EntityDepartment, directory.NormalizeCode(code), nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDepartmentEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.directory.ListEmployeesByDepartment(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees, "count": len(employees)})
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.directory.ListEmployees(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees, "count": len(employees)})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.directory.FindEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e directory.Employee
	if err := decodeJSON(r, &e); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	e.ID = ""

	id, err := s.directory.CreateEmployee(r.Context(), &e)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "create", audit.EntityEmployee, id, map[string]any{
		"department_code": e.DepartmentCode,
		"role":            e.Role,
	})
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.directory.FindEmployee(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := decodeJSON(r, existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id

	if err := s.directory.UpdateEmployee(r.Context(), existing); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "update", audit.EntityEmployee, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteEmployee removes an employee; 409 while requests reference them.
func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.directory.DeleteEmployee(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "delete", audit.EntityEmployee, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
