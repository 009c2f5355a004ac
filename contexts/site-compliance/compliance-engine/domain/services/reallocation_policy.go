package services

import (
	"sort"
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
)

// IsAdjacent reports whether recipientID appears in the donor's neighbour set.
func IsAdjacent(donorNeighbours []string, recipientID string) bool {
	for _, id := range donorNeighbours {
		if strings.TrimSpace(id) == recipientID {
			return true
		}
	}
	return false
}

// CitedSites collects site ids backing reallocations that move capacity at asOf.
// The reallocation identified by skipID is ignored.
func CitedSites(reallocations []entities.Reallocation, skipID string, asOf time.Time) map[string]string {
	cited := make(map[string]string)
	for _, realloc := range reallocations {
		if realloc.ReallocationID == skipID || !realloc.EffectiveAt(asOf) {
			continue
		}
		for _, siteID := range realloc.Justification.IncludedSiteIDs {
			cited[siteID] = realloc.ReallocationID
		}
	}
	return cited
}

// SelectJustification picks quantity eligible donor sites in site id order. It
// returns the justification and how many eligible, uncited sites were available;
// fewer than quantity means the transfer is ineligible.
func SelectJustification(
	sites []entities.Site,
	donorID string,
	reallocations []entities.Reallocation,
	quantity int,
	asOf time.Time,
) (entities.Justification, int) {
	donorSites := make([]entities.Site, 0, len(sites))
	for _, site := range sites {
		if site.MunicipalityID == donorID && site.ActiveAt(asOf) {
			donorSites = append(donorSites, site)
		}
	}
	sort.Slice(donorSites, func(i, j int) bool {
		return donorSites[i].SiteID < donorSites[j].SiteID
	})

	cited := CitedSites(reallocations, "", asOf)
	justification := entities.Justification{
		IncludedSiteIDs: []string{},
		Excluded:        []entities.ExcludedSite{},
	}
	available := 0
	for _, site := range donorSites {
		if reason := site.ExclusionReason(); reason != "" {
			justification.Excluded = append(justification.Excluded, entities.ExcludedSite{SiteID: site.SiteID, Reason: reason})
			continue
		}
		if by, ok := cited[site.SiteID]; ok {
			justification.Excluded = append(justification.Excluded, entities.ExcludedSite{SiteID: site.SiteID, Reason: "cited by " + by})
			continue
		}
		available++
		if len(justification.IncludedSiteIDs) < quantity {
			justification.IncludedSiteIDs = append(justification.IncludedSiteIDs, site.SiteID)
		}
	}
	return justification, available
}

// JustificationStillHolds re-checks at commit time that every cited site is still
// active, eligible and not claimed by another effective reallocation. It returns
// the offending site id when the check fails.
func JustificationStillHolds(
	realloc entities.Reallocation,
	sites []entities.Site,
	reallocations []entities.Reallocation,
	asOf time.Time,
) (string, bool) {
	byID := make(map[string]entities.Site, len(sites))
	for _, site := range sites {
		byID[site.SiteID] = site
	}
	cited := CitedSites(reallocations, realloc.ReallocationID, asOf)
	for _, siteID := range realloc.Justification.IncludedSiteIDs {
		site, ok := byID[siteID]
		if !ok ||
			site.MunicipalityID != realloc.DonorID ||
			!site.ActiveAt(asOf) ||
			!site.ReallocationEligible() {
			return siteID, false
		}
		if _, taken := cited[siteID]; taken {
			return siteID, false
		}
	}
	return "", len(realloc.Justification.IncludedSiteIDs) == realloc.Quantity
}
