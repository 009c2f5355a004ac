package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	compliancehttp "sitecompliance/contexts/site-compliance/compliance-engine/transport/http"
)

func (s *Server) registerComplianceRoutes() {
	s.mux.HandleFunc("GET /api/compliance/v1/requirements", s.handleComplianceRequirement)
	s.mux.HandleFunc("GET /api/compliance/v1/compliance", s.handleComplianceReport)

	s.mux.HandleFunc("GET /api/compliance/v1/municipalities", s.handleComplianceListMunicipalities)
	s.mux.HandleFunc("GET /api/compliance/v1/municipalities/{municipality_id}/compliance", s.handleComplianceEvaluate)
	s.mux.HandleFunc("PUT /api/compliance/v1/municipalities/{municipality_id}/census", s.handleComplianceRefreshCensus)

	s.mux.HandleFunc("POST /api/compliance/v1/offsets", s.handleComplianceApplyOffset)
	s.mux.HandleFunc("GET /api/compliance/v1/offsets", s.handleComplianceListOffsets)
	s.mux.HandleFunc("POST /api/compliance/v1/offsets/{offset_id}/supersede", s.handleComplianceSupersedeOffset)

	s.mux.HandleFunc("POST /api/compliance/v1/events", s.handleComplianceApplyEvent)
	s.mux.HandleFunc("GET /api/compliance/v1/events", s.handleComplianceListEvents)

	s.mux.HandleFunc("POST /api/compliance/v1/reallocations", s.handleComplianceProposeReallocation)
	s.mux.HandleFunc("GET /api/compliance/v1/reallocations", s.handleComplianceListReallocations)
	s.mux.HandleFunc("GET /api/compliance/v1/reallocations/{reallocation_id}", s.handleComplianceGetReallocation)
	s.mux.HandleFunc("POST /api/compliance/v1/reallocations/{reallocation_id}/commit", s.handleComplianceCommitReallocation)
	s.mux.HandleFunc("POST /api/compliance/v1/reallocations/{reallocation_id}/reverse", s.handleComplianceReverseReallocation)

	s.mux.HandleFunc("POST /api/compliance/v1/snapshots", s.handleComplianceCaptureSnapshot)
	s.mux.HandleFunc("GET /api/compliance/v1/snapshots", s.handleComplianceListSnapshots)
}

func (s *Server) handleComplianceRequirement(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("population"))
	population, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeComplianceError(w, http.StatusBadRequest, "invalid_population", "population must be an integer")
		return
	}
	resp, err := s.compliance.Handler.ComputeRequirementHandler(r.Context(), population)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceReport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.EvaluateAllHandler(r.Context(), r.URL.Query().Get("as_of"))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceListMunicipalities(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.ListMunicipalitiesHandler(r.Context())
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceEvaluate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.EvaluateHandler(r.Context(), r.PathValue("municipality_id"), r.URL.Query().Get("as_of"))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceRefreshCensus(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.RefreshCensusRequest
	if !decodeComplianceBody(w, r, &req, true) {
		return
	}
	resp, err := s.compliance.Handler.RefreshCensusHandler(r.Context(), r.PathValue("municipality_id"), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceApplyOffset(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.ApplyOffsetRequest
	if !decodeComplianceBody(w, r, &req, true) {
		return
	}
	resp, err := s.compliance.Handler.ApplyOffsetHandler(r.Context(), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleComplianceListOffsets(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.ListOffsetsHandler(r.Context(), ledgerListRequest(r))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceSupersedeOffset(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.SupersedeOffsetRequest
	if !decodeComplianceBody(w, r, &req, true) {
		return
	}
	resp, err := s.compliance.Handler.SupersedeOffsetHandler(r.Context(), r.PathValue("offset_id"), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleComplianceApplyEvent(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.ApplyEventRequest
	if !decodeComplianceBody(w, r, &req, true) {
		return
	}
	resp, err := s.compliance.Handler.ApplyEventHandler(r.Context(), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleComplianceListEvents(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.ListEventsHandler(r.Context(), ledgerListRequest(r))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceProposeReallocation(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.ProposeReallocationRequest
	if !decodeComplianceBody(w, r, &req, true) {
		return
	}
	resp, err := s.compliance.Handler.ProposeReallocationHandler(r.Context(), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleComplianceListReallocations(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.ListReallocationsHandler(r.Context(), ledgerListRequest(r))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceGetReallocation(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.GetReallocationHandler(r.Context(), r.PathValue("reallocation_id"))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceCommitReallocation(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.CommitReallocationHandler(r.Context(), r.PathValue("reallocation_id"))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceReverseReallocation(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.ReverseReallocationRequest
	if !decodeComplianceBody(w, r, &req, false) {
		return
	}
	resp, err := s.compliance.Handler.ReverseReallocationHandler(r.Context(), r.PathValue("reallocation_id"), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplianceCaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	var req compliancehttp.CaptureSnapshotRequest
	if !decodeComplianceBody(w, r, &req, false) {
		return
	}
	resp, err := s.compliance.Handler.CaptureSnapshotHandler(r.Context(), req)
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleComplianceListSnapshots(w http.ResponseWriter, r *http.Request) {
	resp, err := s.compliance.Handler.ListSnapshotsHandler(r.Context(), r.URL.Query().Get("municipality_id"))
	if err != nil {
		writeComplianceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func ledgerListRequest(r *http.Request) compliancehttp.LedgerListRequest {
	query := r.URL.Query()
	return compliancehttp.LedgerListRequest{
		MunicipalityID: query.Get("municipality_id"),
		Status:         query.Get("status"),
		AsOf:           query.Get("as_of"),
	}
}

// decodeComplianceBody writes a 400 and returns false on a malformed body. An
// empty body is accepted only when required is false.
func decodeComplianceBody(w http.ResponseWriter, r *http.Request, target any, required bool) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) && !required {
			return true
		}
		writeComplianceError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return false
	}
	return true
}

func writeComplianceDomainError(w http.ResponseWriter, err error) {
	var available *int
	if rejection, ok := domainerrors.AsRejection(err); ok {
		available = rejection.Available
	}

	switch {
	case errors.Is(err, domainerrors.ErrValidation):
		writeComplianceRejection(w, http.StatusBadRequest, "validation_failed", err.Error(), available)
	case errors.Is(err, domainerrors.ErrNotFound):
		writeComplianceRejection(w, http.StatusNotFound, "not_found", err.Error(), available)
	case errors.Is(err, domainerrors.ErrStaleState):
		writeComplianceRejection(w, http.StatusConflict, "stale_state", err.Error(), available)
	case errors.Is(err, domainerrors.ErrConflict):
		writeComplianceRejection(w, http.StatusConflict, "conflict", err.Error(), available)
	case errors.Is(err, domainerrors.ErrAdjacency):
		writeComplianceRejection(w, http.StatusUnprocessableEntity, "not_adjacent", err.Error(), available)
	case errors.Is(err, domainerrors.ErrEligibility):
		writeComplianceRejection(w, http.StatusUnprocessableEntity, "eligibility_exceeded", err.Error(), available)
	default:
		writeComplianceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeComplianceRejection(w http.ResponseWriter, status int, code string, message string, available *int) {
	writeJSON(w, status, compliancehttp.ErrorResponse{
		Code:      code,
		Message:   message,
		Available: available,
	})
}

func writeComplianceError(w http.ResponseWriter, status int, code string, message string) {
	writeComplianceRejection(w, status, code, message, nil)
}
