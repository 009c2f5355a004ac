package entities

import "time"

type ReallocationStatus string

const (
	ReallocationProposed  ReallocationStatus = "proposed"
	ReallocationCommitted ReallocationStatus = "committed"
	ReallocationReversed  ReallocationStatus = "reversed"
)

type ExcludedSite struct {
	SiteID string `json:"site_id"`
	Reason string `json:"reason"`
}

// Justification records which donor sites back the transferred capacity and which
// were passed over.
type Justification struct {
	IncludedSiteIDs []string       `json:"included_site_ids"`
	Excluded        []ExcludedSite `json:"excluded"`
}

type Reallocation struct {
	ReallocationID  string
	DonorID         string
	RecipientID     string
	Quantity        int
	Reason          string
	Justification   Justification
	Status          ReallocationStatus
	ProposedAt      time.Time
	CommittedAt     *time.Time
	ReversedAt      *time.Time
	ReversalReason  string
	DonorExcessSeen int
}

// CanTransition enforces proposed -> committed | reversed and committed -> reversed.
func (r Reallocation) CanTransition(to ReallocationStatus) bool {
	switch r.Status {
	case ReallocationProposed:
		return to == ReallocationCommitted || to == ReallocationReversed
	case ReallocationCommitted:
		return to == ReallocationReversed
	default:
		return false
	}
}

// EffectiveAt reports whether the transfer moves capacity at instant t: it was
// committed at or before t and not reversed at or before t.
func (r Reallocation) EffectiveAt(t time.Time) bool {
	if r.CommittedAt == nil || r.CommittedAt.After(t) {
		return false
	}
	return r.ReversedAt == nil || r.ReversedAt.After(t)
}

// CitesSite reports whether the committed justification already uses siteID.
func (r Reallocation) CitesSite(siteID string) bool {
	for _, id := range r.Justification.IncludedSiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}
