package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/application/commands"
	"sitecompliance/contexts/site-compliance/compliance-engine/application/queries"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	httptransport "sitecompliance/contexts/site-compliance/compliance-engine/transport/http"

	"github.com/shopspring/decimal"
)

const statusSuccess = "success"

type Handler struct {
	ComputeRequirement  queries.ComputeRequirementUseCase
	Evaluate            queries.EvaluateUseCase
	EvaluateAll         queries.EvaluateAllUseCase
	ListMunicipalities  queries.ListMunicipalitiesUseCase
	ListOffsets         queries.ListOffsetsUseCase
	ListEvents          queries.ListEventsUseCase
	ListReallocations   queries.ListReallocationsUseCase
	GetReallocation     queries.GetReallocationUseCase
	ListSnapshots       queries.ListSnapshotsUseCase
	ApplyOffset         commands.ApplyOffsetUseCase
	SupersedeOffset     commands.SupersedeOffsetUseCase
	ApplyEvent          commands.ApplyEventUseCase
	ProposeReallocation commands.ProposeReallocationUseCase
	CommitReallocation  commands.CommitReallocationUseCase
	ReverseReallocation commands.ReverseReallocationUseCase
	RefreshCensus       commands.RefreshCensusUseCase
	CaptureSnapshot     commands.CaptureSnapshotUseCase
	Logger              *slog.Logger
}

// ComputeRequirementHandler godoc
// @Summary Compute base site requirement
// @Description Maps a population to the base number of required collection sites.
// @Tags compliance-engine
// @Produce json
// @Param population query int true "Population (>= 0)"
// @Success 200 {object} httptransport.RequirementResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/requirements [get]
func (h Handler) ComputeRequirementHandler(_ context.Context, population int64) (httptransport.RequirementResponse, error) {
	snapshot, err := h.ComputeRequirement.Execute(population)
	if err != nil {
		return httptransport.RequirementResponse{}, err
	}
	return httptransport.RequirementResponse{Status: statusSuccess, Data: toRequirementDTO(snapshot)}, nil
}

// EvaluateHandler godoc
// @Summary Evaluate one municipality
// @Description Returns the adjusted requirement and compliance status at an instant.
// @Tags compliance-engine
// @Produce json
// @Param municipality_id path string true "Municipality id"
// @Param as_of query string false "Evaluation instant (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} httptransport.ComplianceResultResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/municipalities/{municipality_id}/compliance [get]
func (h Handler) EvaluateHandler(ctx context.Context, municipalityID string, asOfRaw string) (httptransport.ComplianceResultResponse, error) {
	asOf, err := parseInstant("as_of", asOfRaw)
	if err != nil {
		return httptransport.ComplianceResultResponse{}, err
	}
	result, err := h.Evaluate.Execute(ctx, queries.EvaluateQuery{MunicipalityID: municipalityID, AsOf: asOf})
	if err != nil {
		return httptransport.ComplianceResultResponse{}, err
	}
	return httptransport.ComplianceResultResponse{Status: statusSuccess, Data: toResultDTO(result)}, nil
}

// EvaluateAllHandler godoc
// @Summary Jurisdiction compliance report
// @Description Evaluates every municipality at the same instant.
// @Tags compliance-engine
// @Produce json
// @Param as_of query string false "Evaluation instant (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} httptransport.ComplianceReportResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/compliance [get]
func (h Handler) EvaluateAllHandler(ctx context.Context, asOfRaw string) (httptransport.ComplianceReportResponse, error) {
	asOf, err := parseInstant("as_of", asOfRaw)
	if err != nil {
		return httptransport.ComplianceReportResponse{}, err
	}
	results, err := h.EvaluateAll.Execute(ctx, asOf)
	if err != nil {
		return httptransport.ComplianceReportResponse{}, err
	}
	resp := httptransport.ComplianceReportResponse{
		Status: statusSuccess,
		Data:   make([]httptransport.ComplianceResultDTO, 0, len(results)),
	}
	for _, result := range results {
		resp.Data = append(resp.Data, toResultDTO(result))
		resp.AsOf = formatTime(result.EvaluatedAt)
	}
	return resp, nil
}

// ListMunicipalitiesHandler godoc
// @Summary List municipalities
// @Tags compliance-engine
// @Produce json
// @Success 200 {object} httptransport.MunicipalityListResponse
// @Router /api/compliance/v1/municipalities [get]
func (h Handler) ListMunicipalitiesHandler(ctx context.Context) (httptransport.MunicipalityListResponse, error) {
	items, err := h.ListMunicipalities.Execute(ctx)
	if err != nil {
		return httptransport.MunicipalityListResponse{}, err
	}
	resp := httptransport.MunicipalityListResponse{
		Status: statusSuccess,
		Data:   make([]httptransport.MunicipalityDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toMunicipalityDTO(item))
	}
	return resp, nil
}

// RefreshCensusHandler godoc
// @Summary Refresh census population
// @Description Updates population; captured snapshots are not rewritten.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param municipality_id path string true "Municipality id"
// @Param request body httptransport.RefreshCensusRequest true "Census figures"
// @Success 200 {object} httptransport.RefreshCensusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/municipalities/{municipality_id}/census [put]
func (h Handler) RefreshCensusHandler(
	ctx context.Context,
	municipalityID string,
	req httptransport.RefreshCensusRequest,
) (httptransport.RefreshCensusResponse, error) {
	result, err := h.RefreshCensus.Execute(ctx, commands.RefreshCensusCommand{
		MunicipalityID: municipalityID,
		Population:     req.Population,
		CensusYear:     req.CensusYear,
	})
	if err != nil {
		h.logFailure("refresh_census", err, "municipality_id", municipalityID)
		return httptransport.RefreshCensusResponse{}, err
	}
	return httptransport.RefreshCensusResponse{
		Status: statusSuccess,
		Data: httptransport.CensusRefreshDTO{
			Municipality: toMunicipalityDTO(result.Municipality),
			Before:       toRequirementDTO(result.Before),
			After:        toRequirementDTO(result.After),
		},
	}, nil
}

// ApplyOffsetHandler godoc
// @Summary Apply a direct-service offset
// @Description Records a once-per-year percentage reduction of the base requirement.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param request body httptransport.ApplyOffsetRequest true "Offset"
// @Success 201 {object} httptransport.OffsetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/offsets [post]
func (h Handler) ApplyOffsetHandler(ctx context.Context, req httptransport.ApplyOffsetRequest) (httptransport.OffsetResponse, error) {
	percentage, err := parsePercentage(req.Percentage)
	if err != nil {
		return httptransport.OffsetResponse{}, err
	}
	effective, err := parseInstant("effective_date", req.EffectiveDate)
	if err != nil {
		return httptransport.OffsetResponse{}, err
	}
	result, err := h.ApplyOffset.Execute(ctx, commands.ApplyOffsetCommand{
		MunicipalityID:     req.MunicipalityID,
		Percentage:         percentage,
		AnnualPickupVolume: req.AnnualPickupVolume,
		EffectiveDate:      effective,
	})
	if err != nil {
		h.logFailure("apply_offset", err, "municipality_id", req.MunicipalityID)
		return httptransport.OffsetResponse{}, err
	}
	return httptransport.OffsetResponse{Status: statusSuccess, Data: toOffsetDTO(result.Offset, result.Status)}, nil
}

// SupersedeOffsetHandler godoc
// @Summary Supersede an offset
// @Description Replaces an offset for the same municipality and year; the old record is kept.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param offset_id path string true "Offset id"
// @Param request body httptransport.SupersedeOffsetRequest true "Replacement"
// @Success 201 {object} httptransport.SupersedeOffsetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/offsets/{offset_id}/supersede [post]
func (h Handler) SupersedeOffsetHandler(
	ctx context.Context,
	offsetID string,
	req httptransport.SupersedeOffsetRequest,
) (httptransport.SupersedeOffsetResponse, error) {
	percentage, err := parsePercentage(req.Percentage)
	if err != nil {
		return httptransport.SupersedeOffsetResponse{}, err
	}
	result, err := h.SupersedeOffset.Execute(ctx, commands.SupersedeOffsetCommand{
		OffsetID:           offsetID,
		Percentage:         percentage,
		AnnualPickupVolume: req.AnnualPickupVolume,
	})
	if err != nil {
		h.logFailure("supersede_offset", err, "offset_id", offsetID)
		return httptransport.SupersedeOffsetResponse{}, err
	}
	now := result.Replacement.CreatedAt
	return httptransport.SupersedeOffsetResponse{
		Status: statusSuccess,
		Data: httptransport.SupersedeOffsetDTO{
			Previous:    toOffsetDTO(result.Previous, result.Previous.StatusAt(now)),
			Replacement: toOffsetDTO(result.Replacement, result.Replacement.StatusAt(now)),
		},
	}, nil
}

// ListOffsetsHandler godoc
// @Summary List offsets
// @Tags compliance-engine
// @Produce json
// @Param municipality_id query string false "Municipality id"
// @Param status query string false "pending, active or expired"
// @Param as_of query string false "Instant used to derive status"
// @Success 200 {object} httptransport.OffsetListResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/offsets [get]
func (h Handler) ListOffsetsHandler(ctx context.Context, req httptransport.LedgerListRequest) (httptransport.OffsetListResponse, error) {
	query, err := toLedgerQuery(req)
	if err != nil {
		return httptransport.OffsetListResponse{}, err
	}
	items, err := h.ListOffsets.Execute(ctx, query)
	if err != nil {
		return httptransport.OffsetListResponse{}, err
	}
	resp := httptransport.OffsetListResponse{Status: statusSuccess, Data: make([]httptransport.OffsetDTO, 0, len(items))}
	for _, item := range items {
		resp.Data = append(resp.Data, toOffsetDTO(item.Offset, item.Status))
	}
	return resp, nil
}

// ApplyEventHandler godoc
// @Summary Apply an event credit
// @Description Records a temporary site-equivalent credit valid over a calendar-day window.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param request body httptransport.ApplyEventRequest true "Event"
// @Success 201 {object} httptransport.EventResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/events [post]
func (h Handler) ApplyEventHandler(ctx context.Context, req httptransport.ApplyEventRequest) (httptransport.EventResponse, error) {
	validFrom, err := parseInstant("valid_from", req.ValidFrom)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	validTo, err := parseInstant("valid_to", req.ValidTo)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	result, err := h.ApplyEvent.Execute(ctx, commands.ApplyEventCommand{
		MunicipalityID: req.MunicipalityID,
		Description:    req.Description,
		Credit:         req.Credit,
		ValidFrom:      validFrom,
		ValidTo:        validTo,
	})
	if err != nil {
		h.logFailure("apply_event", err, "municipality_id", req.MunicipalityID)
		return httptransport.EventResponse{}, err
	}
	return httptransport.EventResponse{Status: statusSuccess, Data: toEventDTO(result.Event, result.Status)}, nil
}

// ListEventsHandler godoc
// @Summary List events
// @Tags compliance-engine
// @Produce json
// @Param municipality_id query string false "Municipality id"
// @Param status query string false "pending, active or expired"
// @Param as_of query string false "Instant used to derive status"
// @Success 200 {object} httptransport.EventListResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/events [get]
func (h Handler) ListEventsHandler(ctx context.Context, req httptransport.LedgerListRequest) (httptransport.EventListResponse, error) {
	query, err := toLedgerQuery(req)
	if err != nil {
		return httptransport.EventListResponse{}, err
	}
	items, err := h.ListEvents.Execute(ctx, query)
	if err != nil {
		return httptransport.EventListResponse{}, err
	}
	resp := httptransport.EventListResponse{Status: statusSuccess, Data: make([]httptransport.EventDTO, 0, len(items))}
	for _, item := range items {
		resp.Data = append(resp.Data, toEventDTO(item.Event, item.Status))
	}
	return resp, nil
}

// ProposeReallocationHandler godoc
// @Summary Propose a reallocation
// @Description Validates adjacency, eligibility and capacity and records a proposal with its justification.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param request body httptransport.ProposeReallocationRequest true "Proposal"
// @Success 201 {object} httptransport.ReallocationOutcomeResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/reallocations [post]
func (h Handler) ProposeReallocationHandler(
	ctx context.Context,
	req httptransport.ProposeReallocationRequest,
) (httptransport.ReallocationOutcomeResponse, error) {
	result, err := h.ProposeReallocation.Execute(ctx, commands.ProposeReallocationCommand{
		DonorID:     req.DonorID,
		RecipientID: req.RecipientID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logFailure("propose_reallocation", err, "donor_id", req.DonorID, "recipient_id", req.RecipientID)
		return httptransport.ReallocationOutcomeResponse{}, err
	}
	return httptransport.ReallocationOutcomeResponse{
		Status: statusSuccess,
		Data: httptransport.ReallocationOutcomeDTO{
			Reallocation: toReallocationDTO(result.Reallocation),
			Donor:        toResultDTO(result.Donor),
			Recipient:    toResultDTO(result.Recipient),
		},
	}, nil
}

// CommitReallocationHandler godoc
// @Summary Commit a reallocation
// @Description Re-validates the proposal against current state and commits it.
// @Tags compliance-engine
// @Produce json
// @Param reallocation_id path string true "Reallocation id"
// @Success 200 {object} httptransport.ReallocationOutcomeResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/reallocations/{reallocation_id}/commit [post]
func (h Handler) CommitReallocationHandler(ctx context.Context, reallocationID string) (httptransport.ReallocationOutcomeResponse, error) {
	result, err := h.CommitReallocation.Execute(ctx, reallocationID)
	if err != nil {
		h.logFailure("commit_reallocation", err, "reallocation_id", reallocationID)
		return httptransport.ReallocationOutcomeResponse{}, err
	}
	return httptransport.ReallocationOutcomeResponse{
		Status: statusSuccess,
		Data: httptransport.ReallocationOutcomeDTO{
			Reallocation: toReallocationDTO(result.Reallocation),
			Donor:        toResultDTO(result.Donor),
			Recipient:    toResultDTO(result.Recipient),
		},
	}, nil
}

// ReverseReallocationHandler godoc
// @Summary Reverse a reallocation
// @Description Withdraws a proposal or reverses a committed transfer; the record is kept.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param reallocation_id path string true "Reallocation id"
// @Param request body httptransport.ReverseReallocationRequest false "Reason"
// @Success 200 {object} httptransport.ReallocationResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/reallocations/{reallocation_id}/reverse [post]
func (h Handler) ReverseReallocationHandler(
	ctx context.Context,
	reallocationID string,
	req httptransport.ReverseReallocationRequest,
) (httptransport.ReallocationResponse, error) {
	realloc, err := h.ReverseReallocation.Execute(ctx, commands.ReverseReallocationCommand{
		ReallocationID: reallocationID,
		Reason:         req.Reason,
	})
	if err != nil {
		h.logFailure("reverse_reallocation", err, "reallocation_id", reallocationID)
		return httptransport.ReallocationResponse{}, err
	}
	return httptransport.ReallocationResponse{Status: statusSuccess, Data: toReallocationDTO(realloc)}, nil
}

// GetReallocationHandler godoc
// @Summary Get a reallocation
// @Tags compliance-engine
// @Produce json
// @Param reallocation_id path string true "Reallocation id"
// @Success 200 {object} httptransport.ReallocationResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/reallocations/{reallocation_id} [get]
func (h Handler) GetReallocationHandler(ctx context.Context, reallocationID string) (httptransport.ReallocationResponse, error) {
	realloc, err := h.GetReallocation.Execute(ctx, reallocationID)
	if err != nil {
		return httptransport.ReallocationResponse{}, err
	}
	return httptransport.ReallocationResponse{Status: statusSuccess, Data: toReallocationDTO(realloc)}, nil
}

// ListReallocationsHandler godoc
// @Summary List reallocations
// @Tags compliance-engine
// @Produce json
// @Param municipality_id query string false "Donor or recipient municipality id"
// @Param status query string false "proposed, committed or reversed"
// @Success 200 {object} httptransport.ReallocationListResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/reallocations [get]
func (h Handler) ListReallocationsHandler(
	ctx context.Context,
	req httptransport.LedgerListRequest,
) (httptransport.ReallocationListResponse, error) {
	query, err := toLedgerQuery(req)
	if err != nil {
		return httptransport.ReallocationListResponse{}, err
	}
	items, err := h.ListReallocations.Execute(ctx, query)
	if err != nil {
		return httptransport.ReallocationListResponse{}, err
	}
	resp := httptransport.ReallocationListResponse{Status: statusSuccess, Data: make([]httptransport.ReallocationDTO, 0, len(items))}
	for _, item := range items {
		resp.Data = append(resp.Data, toReallocationDTO(item))
	}
	return resp, nil
}

// CaptureSnapshotHandler godoc
// @Summary Capture a compliance snapshot
// @Description Persists the jurisdiction report as immutable history.
// @Tags compliance-engine
// @Accept json
// @Produce json
// @Param request body httptransport.CaptureSnapshotRequest false "Label and instant"
// @Success 201 {object} httptransport.SnapshotListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/snapshots [post]
func (h Handler) CaptureSnapshotHandler(ctx context.Context, req httptransport.CaptureSnapshotRequest) (httptransport.SnapshotListResponse, error) {
	asOf, err := parseInstant("as_of", req.AsOf)
	if err != nil {
		return httptransport.SnapshotListResponse{}, err
	}
	snapshots, err := h.CaptureSnapshot.Execute(ctx, commands.CaptureSnapshotCommand{Label: req.Label, AsOf: asOf})
	if err != nil {
		h.logFailure("capture_snapshot", err)
		return httptransport.SnapshotListResponse{}, err
	}
	resp := httptransport.SnapshotListResponse{Status: statusSuccess, Data: make([]httptransport.SnapshotDTO, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		resp.Data = append(resp.Data, toSnapshotDTO(snapshot))
	}
	return resp, nil
}

// ListSnapshotsHandler godoc
// @Summary List compliance snapshots
// @Tags compliance-engine
// @Produce json
// @Param municipality_id query string false "Municipality id"
// @Success 200 {object} httptransport.SnapshotListResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/compliance/v1/snapshots [get]
func (h Handler) ListSnapshotsHandler(ctx context.Context, municipalityID string) (httptransport.SnapshotListResponse, error) {
	snapshots, err := h.ListSnapshots.Execute(ctx, municipalityID)
	if err != nil {
		return httptransport.SnapshotListResponse{}, err
	}
	resp := httptransport.SnapshotListResponse{Status: statusSuccess, Data: make([]httptransport.SnapshotDTO, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		resp.Data = append(resp.Data, toSnapshotDTO(snapshot))
	}
	return resp, nil
}

func parsePercentage(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, domainerrors.Reject(domainerrors.ErrValidation, "parse percentage",
			"percentage must be a decimal number", domainerrors.Requested(raw))
	}
	return value, nil
}

func (h Handler) logFailure(operation string, err error, attrs ...any) {
	logger := application.ResolveLogger(h.Logger)
	args := append([]any{
		"event", "http_" + operation + "_failed",
		"module", application.LogModule,
		"layer", "transport",
		"error", err.Error(),
	}, attrs...)
	logger.Warn(operation+" request failed", args...)
}
