package api

import (
	"net/http"

	"shutterdesk/internal/models"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Clients.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := decodeJSON(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Clients.Create(r.Context(), &client); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	client, err := s.svc.Clients.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var client models.Client
	if err := decodeJSON(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	client.ID = id

	if err := s.svc.Clients.Update(r.Context(), &client); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.svc.Clients.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := s.svc.Packages.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": packages})
}

func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var pkg models.Package
	if err := decodeJSON(r, &pkg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Packages.Create(r.Context(), &pkg); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	pkg, err := s.svc.Packages.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var pkg models.Package
	if err := decodeJSON(r, &pkg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pkg.ID = id

	if err := s.svc.Packages.Update(r.Context(), &pkg); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.svc.Packages.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input models.ProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	project, err := s.svc.Projects.Create(r.Context(), &input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	project, err := s.svc.Projects.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// handleUpdateProject touches metadata only. Money fields and the
// client/package references are frozen after creation.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var input models.ProjectUpdate
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	project, err := s.svc.Projects.Update(r.Context(), id, &input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.svc.Projects.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	project, err := s.svc.Projects.ChangeStatus(r.Context(), id, body.Status)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleRecordRevision(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.svc.Projects.RecordRevision(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResetRevisions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	project, err := s.svc.Projects.ResetRevisions(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryID(r, "project_id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	payments, err := s.svc.Payments.List(r.Context(), projectID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *Server) handlePostPayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	payment, project, err := s.svc.Payments.Post(r.Context(), &input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment": payment,
		"project": project,
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	payment, err := s.svc.Payments.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// handleReversePayment deletes the payment and restores the project totals
// in one transaction. When project_id is present it must match the payment's
// project.
func (s *Server) handleReversePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	expectProjectID, err := queryID(r, "project_id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	project, err := s.svc.Payments.Reverse(r.Context(), id, expectProjectID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reversed",
		"project": project,
	})
}

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Team.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": members})
}

func (s *Server) handleCreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var member models.TeamMember
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Team.Create(r.Context(), &member); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleGetTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	member, err := s.svc.Team.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleUpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var member models.TeamMember
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	member.ID = id

	if err := s.svc.Team.Update(r.Context(), &member); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.svc.Team.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Dashboard.Summary(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
