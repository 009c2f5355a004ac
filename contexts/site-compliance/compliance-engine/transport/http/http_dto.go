package httptransport

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
}

type RequirementDTO struct {
	MunicipalityID  string `json:"municipality_id,omitempty"`
	Population      int64  `json:"population"`
	BaseRequirement int    `json:"base_requirement"`
	Tier            string `json:"tier"`
	ComputedAt      string `json:"computed_at"`
}

type IssueDTO struct {
	Code      string   `json:"code"`
	Detail    string   `json:"detail"`
	RecordIDs []string `json:"record_ids"`
}

type ComplianceResultDTO struct {
	MunicipalityID      string         `json:"municipality_id"`
	MunicipalityName    string         `json:"municipality_name"`
	Requirement         RequirementDTO `json:"requirement"`
	OffsetID            string         `json:"offset_id,omitempty"`
	OffsetSitesReduced  int            `json:"offset_sites_reduced"`
	EventCreditOffered  int            `json:"event_credit_offered"`
	EventCreditApplied  int            `json:"event_credit_applied"`
	ReallocatedIn       int            `json:"reallocated_in"`
	ReallocatedOut      int            `json:"reallocated_out"`
	AdjustedRequirement int            `json:"adjusted_requirement"`
	ActiveSiteCount     int            `json:"active_site_count"`
	EventSiteCount      int            `json:"event_site_count"`
	Status              string         `json:"status"`
	Shortfall           int            `json:"shortfall"`
	Excess              int            `json:"excess"`
	EvaluatedAt         string         `json:"evaluated_at"`
	Issues              []IssueDTO     `json:"issues,omitempty"`
}

type MunicipalityDTO struct {
	MunicipalityID string `json:"municipality_id"`
	Name           string `json:"name"`
	Population     int64  `json:"population"`
	Tier           string `json:"tier,omitempty"`
	Region         string `json:"region,omitempty"`
	Province       string `json:"province,omitempty"`
	CensusYear     int    `json:"census_year,omitempty"`
}

type ApplyOffsetRequest struct {
	MunicipalityID     string `json:"municipality_id"`
	Percentage         string `json:"percentage"`
	AnnualPickupVolume int64  `json:"annual_pickup_volume"`
	EffectiveDate      string `json:"effective_date,omitempty"`
}

type SupersedeOffsetRequest struct {
	Percentage         string `json:"percentage"`
	AnnualPickupVolume int64  `json:"annual_pickup_volume"`
}

type OffsetDTO struct {
	OffsetID           string `json:"offset_id"`
	MunicipalityID     string `json:"municipality_id"`
	Percentage         string `json:"percentage"`
	AnnualPickupVolume int64  `json:"annual_pickup_volume"`
	EffectiveDate      string `json:"effective_date"`
	ExpiresAt          string `json:"expires_at"`
	Status             string `json:"status"`
	SupersededBy       string `json:"superseded_by,omitempty"`
	SupersededAt       string `json:"superseded_at,omitempty"`
	CreatedAt          string `json:"created_at"`
}

type SupersedeOffsetDTO struct {
	Previous    OffsetDTO `json:"previous"`
	Replacement OffsetDTO `json:"replacement"`
}

type ApplyEventRequest struct {
	MunicipalityID string `json:"municipality_id"`
	Description    string `json:"description,omitempty"`
	Credit         int    `json:"credit"`
	ValidFrom      string `json:"valid_from"`
	ValidTo        string `json:"valid_to"`
}

type EventDTO struct {
	EventID        string `json:"event_id"`
	MunicipalityID string `json:"municipality_id"`
	Description    string `json:"description,omitempty"`
	Credit         int    `json:"credit"`
	ValidFrom      string `json:"valid_from"`
	ValidTo        string `json:"valid_to"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

type ProposeReallocationRequest struct {
	DonorID     string `json:"donor_id"`
	RecipientID string `json:"recipient_id"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
}

type ReverseReallocationRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ExcludedSiteDTO struct {
	SiteID string `json:"site_id"`
	Reason string `json:"reason"`
}

type ReallocationDTO struct {
	ReallocationID  string            `json:"reallocation_id"`
	DonorID         string            `json:"donor_id"`
	RecipientID     string            `json:"recipient_id"`
	Quantity        int               `json:"quantity"`
	Reason          string            `json:"reason,omitempty"`
	Status          string            `json:"status"`
	IncludedSiteIDs []string          `json:"included_site_ids"`
	ExcludedSites   []ExcludedSiteDTO `json:"excluded_sites"`
	DonorExcessSeen int               `json:"donor_excess_seen"`
	ProposedAt      string            `json:"proposed_at"`
	CommittedAt     string            `json:"committed_at,omitempty"`
	ReversedAt      string            `json:"reversed_at,omitempty"`
	ReversalReason  string            `json:"reversal_reason,omitempty"`
}

type ReallocationOutcomeDTO struct {
	Reallocation ReallocationDTO     `json:"reallocation"`
	Donor        ComplianceResultDTO `json:"donor"`
	Recipient    ComplianceResultDTO `json:"recipient"`
}

type RefreshCensusRequest struct {
	Population int64 `json:"population"`
	CensusYear int   `json:"census_year,omitempty"`
}

type CensusRefreshDTO struct {
	Municipality MunicipalityDTO `json:"municipality"`
	Before       RequirementDTO  `json:"before"`
	After        RequirementDTO  `json:"after"`
}

type CaptureSnapshotRequest struct {
	Label string `json:"label,omitempty"`
	AsOf  string `json:"as_of,omitempty"`
}

type SnapshotDTO struct {
	SnapshotID string              `json:"snapshot_id"`
	Label      string              `json:"label"`
	CapturedAt string              `json:"captured_at"`
	Result     ComplianceResultDTO `json:"result"`
}

type RequirementResponse struct {
	Status string         `json:"status"`
	Data   RequirementDTO `json:"data"`
}

type ComplianceResultResponse struct {
	Status string              `json:"status"`
	Data   ComplianceResultDTO `json:"data"`
}

type ComplianceReportResponse struct {
	Status string                `json:"status"`
	AsOf   string                `json:"as_of"`
	Data   []ComplianceResultDTO `json:"data"`
}

type MunicipalityListResponse struct {
	Status string            `json:"status"`
	Data   []MunicipalityDTO `json:"data"`
}

type OffsetResponse struct {
	Status string    `json:"status"`
	Data   OffsetDTO `json:"data"`
}

type OffsetListResponse struct {
	Status string      `json:"status"`
	Data   []OffsetDTO `json:"data"`
}

type SupersedeOffsetResponse struct {
	Status string             `json:"status"`
	Data   SupersedeOffsetDTO `json:"data"`
}

type EventResponse struct {
	Status string   `json:"status"`
	Data   EventDTO `json:"data"`
}

type EventListResponse struct {
	Status string     `json:"status"`
	Data   []EventDTO `json:"data"`
}

type ReallocationResponse struct {
	Status string          `json:"status"`
	Data   ReallocationDTO `json:"data"`
}

type ReallocationOutcomeResponse struct {
	Status string                 `json:"status"`
	Data   ReallocationOutcomeDTO `json:"data"`
}

type ReallocationListResponse struct {
	Status string            `json:"status"`
	Data   []ReallocationDTO `json:"data"`
}

type RefreshCensusResponse struct {
	Status string           `json:"status"`
	Data   CensusRefreshDTO `json:"data"`
}

type SnapshotListResponse struct {
	Status string        `json:"status"`
	Data   []SnapshotDTO `json:"data"`
}

// LedgerListRequest carries the optional filters of the ledger listing endpoints.
type LedgerListRequest struct {
	MunicipalityID string
	Status         string
	AsOf           string
}
