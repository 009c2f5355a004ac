package services

import (
	"fmt"
	"sort"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
)

// EvaluationInput is everything the evaluator reads for one municipality.
// Records belonging to other municipalities are ignored.
type EvaluationInput struct {
	Municipality  entities.Municipality
	Sites         []entities.Site
	Offsets       []entities.Offset
	Events        []entities.EventRecord
	Reallocations []entities.Reallocation
	AsOf          time.Time
}

// Classify compares active sites against an adjusted requirement.
func Classify(activeCount int, adjustedRequirement int) (entities.ComplianceStatus, int, int) {
	delta := activeCount - adjustedRequirement
	switch {
	case delta < 0:
		return entities.StatusShortfall, -delta, 0
	case delta > 0:
		return entities.StatusExcess, 0, delta
	default:
		return entities.StatusCompliant, 0, 0
	}
}

// Evaluate applies offset, event and reallocation adjustments in that order and
// classifies the result. It has no side effects.
func Evaluate(in EvaluationInput) entities.ComplianceResult {
	asOf := in.AsOf.UTC()
	municipalityID := in.Municipality.MunicipalityID

	result := entities.ComplianceResult{
		MunicipalityID:   municipalityID,
		MunicipalityName: in.Municipality.Name,
		Requirement:      RequirementFor(in.Municipality, asOf),
		EvaluatedAt:      asOf,
	}
	result.ActiveSiteCount, result.EventSiteCount = CountActiveSites(in.Sites, municipalityID, asOf)

	adjusted := result.Requirement.BaseRequirement

	active := ActiveOffsets(in.Offsets, municipalityID, asOf)
	switch len(active) {
	case 0:
	case 1:
		result.OffsetID = active[0].OffsetID
		result.OffsetSitesReduced = entities.SitesReduced(adjusted, active[0].Percentage)
		adjusted = max(0, adjusted-result.OffsetSitesReduced)
	default:
		ids := make([]string, 0, len(active))
		for _, offset := range active {
			ids = append(ids, offset.OffsetID)
		}
		result.Issues = append(result.Issues, entities.Issue{
			Code:      entities.IssueOverlappingOffsets,
			Detail:    fmt.Sprintf("%d active offsets in %d; none applied", len(active), asOf.Year()),
			RecordIDs: ids,
		})
	}

	baselineShortfall := max(0, adjusted-result.ActiveSiteCount)
	result.EventCreditOffered = ActiveEventCredit(in.Events, municipalityID, asOf)
	result.EventCreditApplied = min(result.EventCreditOffered, baselineShortfall)
	adjusted -= result.EventCreditApplied

	for _, realloc := range in.Reallocations {
		if !realloc.EffectiveAt(asOf) {
			continue
		}
		if realloc.RecipientID == municipalityID {
			result.ReallocatedIn += realloc.Quantity
		}
		if realloc.DonorID == municipalityID {
			result.ReallocatedOut += realloc.Quantity
		}
	}
	adjusted = adjusted - result.ReallocatedIn + result.ReallocatedOut
	if adjusted < 0 {
		adjusted = 0
	}

	result.AdjustedRequirement = adjusted
	result.Status, result.Shortfall, result.Excess = Classify(result.ActiveSiteCount, adjusted)
	return result
}

// CountActiveSites returns permanent active sites and, separately, active event sites.
func CountActiveSites(sites []entities.Site, municipalityID string, asOf time.Time) (int, int) {
	permanent, events := 0, 0
	for _, site := range sites {
		if site.MunicipalityID != municipalityID || !site.ActiveAt(asOf) {
			continue
		}
		if site.IsEventSite() {
			events++
			continue
		}
		permanent++
	}
	return permanent, events
}

// ActiveOffsets returns the offsets active at asOf, oldest first.
func ActiveOffsets(offsets []entities.Offset, municipalityID string, asOf time.Time) []entities.Offset {
	items := make([]entities.Offset, 0, 1)
	for _, offset := range offsets {
		if offset.MunicipalityID == municipalityID && offset.StatusAt(asOf) == entities.LedgerStatusActive {
			items = append(items, offset)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

// ActiveEventCredit sums the credit of events whose window contains asOf.
func ActiveEventCredit(events []entities.EventRecord, municipalityID string, asOf time.Time) int {
	total := 0
	for _, event := range events {
		if event.MunicipalityID == municipalityID && event.StatusAt(asOf) == entities.LedgerStatusActive {
			total += event.Credit
		}
	}
	return total
}
