package entities

import "time"

type ComplianceStatus string

const (
	StatusCompliant ComplianceStatus = "compliant"
	StatusShortfall ComplianceStatus = "shortfall"
	StatusExcess    ComplianceStatus = "excess"
)

type RequirementTier string

const (
	TierExempt RequirementTier = "exempt"
	TierLinear RequirementTier = "linear"
	TierUrban  RequirementTier = "urban"
)

// RequirementSnapshot is derived on demand from the current population.
type RequirementSnapshot struct {
	MunicipalityID  string
	Population      int64
	BaseRequirement int
	Tier            RequirementTier
	ComputedAt      time.Time
}

const IssueOverlappingOffsets = "overlapping_offsets"

type Issue struct {
	Code      string
	Detail    string
	RecordIDs []string
}

type ComplianceResult struct {
	MunicipalityID      string
	MunicipalityName    string
	Requirement         RequirementSnapshot
	OffsetID            string
	OffsetSitesReduced  int
	EventCreditApplied  int
	EventCreditOffered  int
	ReallocatedIn       int
	ReallocatedOut      int
	AdjustedRequirement int
	ActiveSiteCount     int
	EventSiteCount      int
	Status              ComplianceStatus
	Shortfall           int
	Excess              int
	EvaluatedAt         time.Time
	Issues              []Issue
}

// ComplianceSnapshot is an immutable captured copy of a result; later census
// refreshes never rewrite it.
type ComplianceSnapshot struct {
	SnapshotID string
	Label      string
	CapturedAt time.Time
	Result     ComplianceResult
}
