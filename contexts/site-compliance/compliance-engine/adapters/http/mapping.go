package httpadapter

import (
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/application/queries"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	httptransport "sitecompliance/contexts/site-compliance/compliance-engine/transport/http"
)

// parseInstant accepts "2006-01-02" or RFC 3339. Empty input yields the zero
// time, which use cases read as "now".
func parseInstant(field string, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domainerrors.Reject(domainerrors.ErrValidation, "parse "+field,
			"expected YYYY-MM-DD or RFC 3339", domainerrors.Requested(raw))
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func toRequirementDTO(snapshot entities.RequirementSnapshot) httptransport.RequirementDTO {
	return httptransport.RequirementDTO{
		MunicipalityID:  snapshot.MunicipalityID,
		Population:      snapshot.Population,
		BaseRequirement: snapshot.BaseRequirement,
		Tier:            string(snapshot.Tier),
		ComputedAt:      formatTime(snapshot.ComputedAt),
	}
}

func toResultDTO(result entities.ComplianceResult) httptransport.ComplianceResultDTO {
	dto := httptransport.ComplianceResultDTO{
		MunicipalityID:      result.MunicipalityID,
		MunicipalityName:    result.MunicipalityName,
		Requirement:         toRequirementDTO(result.Requirement),
		OffsetID:            result.OffsetID,
		OffsetSitesReduced:  result.OffsetSitesReduced,
		EventCreditOffered:  result.EventCreditOffered,
		EventCreditApplied:  result.EventCreditApplied,
		ReallocatedIn:       result.ReallocatedIn,
		ReallocatedOut:      result.ReallocatedOut,
		AdjustedRequirement: result.AdjustedRequirement,
		ActiveSiteCount:     result.ActiveSiteCount,
		EventSiteCount:      result.EventSiteCount,
		Status:              string(result.Status),
		Shortfall:           result.Shortfall,
		Excess:              result.Excess,
		EvaluatedAt:         formatTime(result.EvaluatedAt),
	}
	for _, issue := range result.Issues {
		dto.Issues = append(dto.Issues, httptransport.IssueDTO{
			Code:      issue.Code,
			Detail:    issue.Detail,
			RecordIDs: append([]string(nil), issue.RecordIDs...),
		})
	}
	return dto
}

func toMunicipalityDTO(m entities.Municipality) httptransport.MunicipalityDTO {
	return httptransport.MunicipalityDTO{
		MunicipalityID: m.MunicipalityID,
		Name:           m.Name,
		Population:     m.Population,
		Tier:           m.Tier,
		Region:         m.Region,
		Province:       m.Province,
		CensusYear:     m.CensusYear,
	}
}

func toOffsetDTO(offset entities.Offset, status entities.LedgerStatus) httptransport.OffsetDTO {
	return httptransport.OffsetDTO{
		OffsetID:           offset.OffsetID,
		MunicipalityID:     offset.MunicipalityID,
		Percentage:         offset.Percentage.String(),
		AnnualPickupVolume: offset.AnnualPickupVolume,
		EffectiveDate:      formatTime(offset.EffectiveDate),
		ExpiresAt:          formatTime(offset.ExpiresAt()),
		Status:             string(status),
		SupersededBy:       offset.SupersededBy,
		SupersededAt:       formatTimePtr(offset.SupersededAt),
		CreatedAt:          formatTime(offset.CreatedAt),
	}
}

func toEventDTO(event entities.EventRecord, status entities.LedgerStatus) httptransport.EventDTO {
	return httptransport.EventDTO{
		EventID:        event.EventID,
		MunicipalityID: event.MunicipalityID,
		Description:    event.Description,
		Credit:         event.Credit,
		ValidFrom:      event.ValidFrom.UTC().Format(time.DateOnly),
		ValidTo:        event.ValidTo.UTC().Format(time.DateOnly),
		Status:         string(status),
		CreatedAt:      formatTime(event.CreatedAt),
	}
}

func toReallocationDTO(realloc entities.Reallocation) httptransport.ReallocationDTO {
	dto := httptransport.ReallocationDTO{
		ReallocationID:  realloc.ReallocationID,
		DonorID:         realloc.DonorID,
		RecipientID:     realloc.RecipientID,
		Quantity:        realloc.Quantity,
		Reason:          realloc.Reason,
		Status:          string(realloc.Status),
		IncludedSiteIDs: append([]string{}, realloc.Justification.IncludedSiteIDs...),
		ExcludedSites:   make([]httptransport.ExcludedSiteDTO, 0, len(realloc.Justification.Excluded)),
		DonorExcessSeen: realloc.DonorExcessSeen,
		ProposedAt:      formatTime(realloc.ProposedAt),
		CommittedAt:     formatTimePtr(realloc.CommittedAt),
		ReversedAt:      formatTimePtr(realloc.ReversedAt),
		ReversalReason:  realloc.ReversalReason,
	}
	for _, excluded := range realloc.Justification.Excluded {
		dto.ExcludedSites = append(dto.ExcludedSites, httptransport.ExcludedSiteDTO{
			SiteID: excluded.SiteID,
			Reason: excluded.Reason,
		})
	}
	return dto
}

func toSnapshotDTO(snapshot entities.ComplianceSnapshot) httptransport.SnapshotDTO {
	return httptransport.SnapshotDTO{
		SnapshotID: snapshot.SnapshotID,
		Label:      snapshot.Label,
		CapturedAt: formatTime(snapshot.CapturedAt),
		Result:     toResultDTO(snapshot.Result),
	}
}

func toLedgerQuery(req httptransport.LedgerListRequest) (queries.LedgerQuery, error) {
	asOf, err := parseInstant("as_of", req.AsOf)
	if err != nil {
		return queries.LedgerQuery{}, err
	}
	return queries.LedgerQuery{
		MunicipalityID: strings.TrimSpace(req.MunicipalityID),
		Status:         strings.TrimSpace(req.Status),
		AsOf:           asOf,
	}, nil
}
