package services

import (
	"testing"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
)

func TestIsAdjacent(t *testing.T) {
	if !IsAdjacent([]string{"east", " south "}, "south") {
		t.Fatalf("expected south to be adjacent")
	}
	if IsAdjacent([]string{"east"}, "south") || IsAdjacent(nil, "south") {
		t.Fatalf("expected south not to be adjacent")
	}
}

func TestSelectJustificationSkipsExcludedAndCitedSites(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	committed := now.Add(-time.Hour)
	donorSites := []entities.Site{
		{SiteID: "n5", MunicipalityID: "north", OperatorType: entities.OperatorPrivate},
		{SiteID: "n1", MunicipalityID: "north", OperatorType: entities.OperatorMunicipal},
		{SiteID: "n2", MunicipalityID: "north", OperatorType: entities.OperatorFirstNation},
		{SiteID: "n3", MunicipalityID: "north", OperatorType: entities.OperatorReturnToRetail},
		{SiteID: "n4", MunicipalityID: "north", OperatorType: entities.OperatorPrivate},
		{SiteID: "n6", MunicipalityID: "north", OperatorType: entities.OperatorEvent},
	}
	existing := []entities.Reallocation{{
		ReallocationID: "r0",
		DonorID:        "north",
		RecipientID:    "south",
		Quantity:       1,
		Status:         entities.ReallocationCommitted,
		CommittedAt:    &committed,
		Justification:  entities.Justification{IncludedSiteIDs: []string{"n3"}},
	}}

	justification, available := SelectJustification(donorSites, "north", existing, 2, now)
	if available != 2 {
		t.Fatalf("expected 2 eligible uncited sites, got %d", available)
	}
	if got := justification.IncludedSiteIDs; len(got) != 2 || got[0] != "n4" || got[1] != "n5" {
		t.Fatalf("expected n4,n5 in id order, got %v", got)
	}
	reasons := map[string]string{}
	for _, excluded := range justification.Excluded {
		reasons[excluded.SiteID] = excluded.Reason
	}
	if reasons["n1"] != "municipal operator" || reasons["n2"] != "first nation operator" ||
		reasons["n3"] != "cited by r0" || reasons["n6"] != "event site" {
		t.Fatalf("unexpected exclusions: %v", reasons)
	}
}

func TestJustificationStillHoldsDetectsDeactivatedSite(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	deactivated := now.Add(-time.Minute)
	realloc := entities.Reallocation{
		ReallocationID: "r1",
		DonorID:        "north",
		Quantity:       1,
		Justification:  entities.Justification{IncludedSiteIDs: []string{"n4"}},
	}
	open := []entities.Site{{SiteID: "n4", MunicipalityID: "north", OperatorType: entities.OperatorPrivate}}
	if _, ok := JustificationStillHolds(realloc, open, nil, now); !ok {
		t.Fatalf("expected justification to hold")
	}

	closed := []entities.Site{{SiteID: "n4", MunicipalityID: "north", OperatorType: entities.OperatorPrivate, DeactivatedAt: &deactivated}}
	siteID, ok := JustificationStillHolds(realloc, closed, nil, now)
	if ok || siteID != "n4" {
		t.Fatalf("expected n4 to break the justification, got %q %v", siteID, ok)
	}
}
