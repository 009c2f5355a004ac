package postgresadapter

import (
	"encoding/json"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"github.com/shopspring/decimal"
)

type municipalityModel struct {
	MunicipalityID string    `gorm:"column:municipality_id;primaryKey"`
	Name           string    `gorm:"column:name;uniqueIndex:idx_municipalities_name"`
	Population     int64     `gorm:"column:population"`
	Tier           string    `gorm:"column:tier"`
	Region         string    `gorm:"column:region"`
	Province       string    `gorm:"column:province"`
	CensusYear     int       `gorm:"column:census_year"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (municipalityModel) TableName() string {
	return "compliance_municipalities"
}

func municipalityModelFromEntity(m entities.Municipality) municipalityModel {
	return municipalityModel{
		MunicipalityID: m.MunicipalityID,
		Name:           m.Name,
		Population:     m.Population,
		Tier:           m.Tier,
		Region:         m.Region,
		Province:       m.Province,
		CensusYear:     m.CensusYear,
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func (m municipalityModel) toEntity() entities.Municipality {
	return entities.Municipality{
		MunicipalityID: m.MunicipalityID,
		Name:           m.Name,
		Population:     m.Population,
		Tier:           m.Tier,
		Region:         m.Region,
		Province:       m.Province,
		CensusYear:     m.CensusYear,
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type siteModel struct {
	SiteID         string     `gorm:"column:site_id;primaryKey"`
	MunicipalityID string     `gorm:"column:municipality_id;index:idx_sites_municipality"`
	Name           string     `gorm:"column:name"`
	OperatorType   string     `gorm:"column:operator_type"`
	SiteType       string     `gorm:"column:site_type"`
	Programs       string     `gorm:"column:programs;type:text"`
	ActiveFrom     time.Time  `gorm:"column:active_from"`
	DeactivatedAt  *time.Time `gorm:"column:deactivated_at"`
}

func (siteModel) TableName() string {
	return "compliance_sites"
}

func siteModelFromEntity(site entities.Site) (siteModel, error) {
	programs := site.Programs
	if programs == nil {
		programs = []string{}
	}
	raw, err := json.Marshal(programs)
	if err != nil {
		return siteModel{}, err
	}
	return siteModel{
		SiteID:         site.SiteID,
		MunicipalityID: site.MunicipalityID,
		Name:           site.Name,
		OperatorType:   string(site.OperatorType),
		SiteType:       site.SiteType,
		Programs:       string(raw),
		ActiveFrom:     site.ActiveFrom.UTC(),
		DeactivatedAt:  utcPtr(site.DeactivatedAt),
	}, nil
}

func (m siteModel) toEntity() entities.Site {
	var programs []string
	if m.Programs != "" {
		_ = json.Unmarshal([]byte(m.Programs), &programs)
	}
	return entities.Site{
		SiteID:         m.SiteID,
		MunicipalityID: m.MunicipalityID,
		Name:           m.Name,
		OperatorType:   entities.OperatorType(m.OperatorType),
		SiteType:       m.SiteType,
		Programs:       programs,
		ActiveFrom:     m.ActiveFrom.UTC(),
		DeactivatedAt:  utcPtr(m.DeactivatedAt),
	}
}

type adjacencyModel struct {
	MunicipalityID string `gorm:"column:municipality_id;primaryKey"`
	NeighbourID    string `gorm:"column:neighbour_id;primaryKey"`
}

func (adjacencyModel) TableName() string {
	return "compliance_adjacency"
}

// offsetModel carries a partial unique index so only one live offset exists per
// municipality and year.
type offsetModel struct {
	OffsetID           string          `gorm:"column:offset_id;primaryKey"`
	MunicipalityID     string          `gorm:"column:municipality_id;uniqueIndex:idx_offsets_live_year,where:superseded_by = ''"`
	EffectiveYear      int             `gorm:"column:effective_year;uniqueIndex:idx_offsets_live_year,where:superseded_by = ''"`
	Percentage         decimal.Decimal `gorm:"column:percentage;type:numeric(6,3)"`
	AnnualPickupVolume int64           `gorm:"column:annual_pickup_volume"`
	EffectiveDate      time.Time       `gorm:"column:effective_date"`
	SupersededBy       string          `gorm:"column:superseded_by;not null;default:''"`
	SupersededAt       *time.Time      `gorm:"column:superseded_at"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
}

func (offsetModel) TableName() string {
	return "compliance_offsets"
}

func offsetModelFromEntity(offset entities.Offset) offsetModel {
	return offsetModel{
		OffsetID:           offset.OffsetID,
		MunicipalityID:     offset.MunicipalityID,
		EffectiveYear:      offset.EffectiveYear(),
		Percentage:         offset.Percentage,
		AnnualPickupVolume: offset.AnnualPickupVolume,
		EffectiveDate:      offset.EffectiveDate.UTC(),
		SupersededBy:       offset.SupersededBy,
		SupersededAt:       utcPtr(offset.SupersededAt),
		CreatedAt:          offset.CreatedAt.UTC(),
	}
}

func (m offsetModel) toEntity() entities.Offset {
	return entities.Offset{
		OffsetID:           m.OffsetID,
		MunicipalityID:     m.MunicipalityID,
		Percentage:         m.Percentage,
		AnnualPickupVolume: m.AnnualPickupVolume,
		EffectiveDate:      m.EffectiveDate.UTC(),
		SupersededBy:       m.SupersededBy,
		SupersededAt:       utcPtr(m.SupersededAt),
		CreatedAt:          m.CreatedAt.UTC(),
	}
}

type eventModel struct {
	EventID        string    `gorm:"column:event_id;primaryKey"`
	MunicipalityID string    `gorm:"column:municipality_id;index:idx_events_municipality"`
	Description    string    `gorm:"column:description"`
	Credit         int       `gorm:"column:credit"`
	ValidFrom      time.Time `gorm:"column:valid_from"`
	ValidTo        time.Time `gorm:"column:valid_to"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (eventModel) TableName() string {
	return "compliance_events"
}

func eventModelFromEntity(record entities.EventRecord) eventModel {
	return eventModel{
		EventID:        record.EventID,
		MunicipalityID: record.MunicipalityID,
		Description:    record.Description,
		Credit:         record.Credit,
		ValidFrom:      record.ValidFrom.UTC(),
		ValidTo:        record.ValidTo.UTC(),
		CreatedAt:      record.CreatedAt.UTC(),
	}
}

func (m eventModel) toEntity() entities.EventRecord {
	return entities.EventRecord{
		EventID:        m.EventID,
		MunicipalityID: m.MunicipalityID,
		Description:    m.Description,
		Credit:         m.Credit,
		ValidFrom:      m.ValidFrom.UTC(),
		ValidTo:        m.ValidTo.UTC(),
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type reallocationModel struct {
	ReallocationID  string     `gorm:"column:reallocation_id;primaryKey"`
	DonorID         string     `gorm:"column:donor_id;index:idx_reallocations_donor"`
	RecipientID     string     `gorm:"column:recipient_id;index:idx_reallocations_recipient"`
	Quantity        int        `gorm:"column:quantity"`
	Reason          string     `gorm:"column:reason"`
	Justification   string     `gorm:"column:justification;type:text"`
	Status          string     `gorm:"column:status"`
	ProposedAt      time.Time  `gorm:"column:proposed_at"`
	CommittedAt     *time.Time `gorm:"column:committed_at"`
	ReversedAt      *time.Time `gorm:"column:reversed_at"`
	ReversalReason  string     `gorm:"column:reversal_reason"`
	DonorExcessSeen int        `gorm:"column:donor_excess_seen"`
}

func (reallocationModel) TableName() string {
	return "compliance_reallocations"
}

func reallocationModelFromEntity(realloc entities.Reallocation) (reallocationModel, error) {
	raw, err := json.Marshal(realloc.Justification)
	if err != nil {
		return reallocationModel{}, err
	}
	return reallocationModel{
		ReallocationID:  realloc.ReallocationID,
		DonorID:         realloc.DonorID,
		RecipientID:     realloc.RecipientID,
		Quantity:        realloc.Quantity,
		Reason:          realloc.Reason,
		Justification:   string(raw),
		Status:          string(realloc.Status),
		ProposedAt:      realloc.ProposedAt.UTC(),
		CommittedAt:     utcPtr(realloc.CommittedAt),
		ReversedAt:      utcPtr(realloc.ReversedAt),
		ReversalReason:  realloc.ReversalReason,
		DonorExcessSeen: realloc.DonorExcessSeen,
	}, nil
}

func (m reallocationModel) toEntity() (entities.Reallocation, error) {
	var justification entities.Justification
	if m.Justification != "" {
		if err := json.Unmarshal([]byte(m.Justification), &justification); err != nil {
			return entities.Reallocation{}, err
		}
	}
	return entities.Reallocation{
		ReallocationID:  m.ReallocationID,
		DonorID:         m.DonorID,
		RecipientID:     m.RecipientID,
		Quantity:        m.Quantity,
		Reason:          m.Reason,
		Justification:   justification,
		Status:          entities.ReallocationStatus(m.Status),
		ProposedAt:      m.ProposedAt.UTC(),
		CommittedAt:     utcPtr(m.CommittedAt),
		ReversedAt:      utcPtr(m.ReversedAt),
		ReversalReason:  m.ReversalReason,
		DonorExcessSeen: m.DonorExcessSeen,
	}, nil
}

type snapshotModel struct {
	SnapshotID          string    `gorm:"column:snapshot_id;primaryKey"`
	Label               string    `gorm:"column:label;index:idx_snapshots_label"`
	CapturedAt          time.Time `gorm:"column:captured_at"`
	MunicipalityID      string    `gorm:"column:municipality_id;index:idx_snapshots_municipality"`
	MunicipalityName    string    `gorm:"column:municipality_name"`
	Population          int64     `gorm:"column:population"`
	BaseRequirement     int       `gorm:"column:base_requirement"`
	Tier                string    `gorm:"column:tier"`
	OffsetID            string    `gorm:"column:offset_id"`
	OffsetSitesReduced  int       `gorm:"column:offset_sites_reduced"`
	EventCreditApplied  int       `gorm:"column:event_credit_applied"`
	EventCreditOffered  int       `gorm:"column:event_credit_offered"`
	ReallocatedIn       int       `gorm:"column:reallocated_in"`
	ReallocatedOut      int       `gorm:"column:reallocated_out"`
	AdjustedRequirement int       `gorm:"column:adjusted_requirement"`
	ActiveSiteCount     int       `gorm:"column:active_site_count"`
	EventSiteCount      int       `gorm:"column:event_site_count"`
	Status              string    `gorm:"column:status"`
	Shortfall           int       `gorm:"column:shortfall"`
	Excess              int       `gorm:"column:excess"`
	EvaluatedAt         time.Time `gorm:"column:evaluated_at"`
	Issues              string    `gorm:"column:issues;type:text"`
}

func (snapshotModel) TableName() string {
	return "compliance_snapshots"
}

func snapshotModelFromEntity(snapshot entities.ComplianceSnapshot) (snapshotModel, error) {
	result := snapshot.Result
	issues := result.Issues
	if issues == nil {
		issues = []entities.Issue{}
	}
	raw, err := json.Marshal(issues)
	if err != nil {
		return snapshotModel{}, err
	}
	return snapshotModel{
		SnapshotID:          snapshot.SnapshotID,
		Label:               snapshot.Label,
		CapturedAt:          snapshot.CapturedAt.UTC(),
		MunicipalityID:      result.MunicipalityID,
		MunicipalityName:    result.MunicipalityName,
		Population:          result.Requirement.Population,
		BaseRequirement:     result.Requirement.BaseRequirement,
		Tier:                string(result.Requirement.Tier),
		OffsetID:            result.OffsetID,
		OffsetSitesReduced:  result.OffsetSitesReduced,
		EventCreditApplied:  result.EventCreditApplied,
		EventCreditOffered:  result.EventCreditOffered,
		ReallocatedIn:       result.ReallocatedIn,
		ReallocatedOut:      result.ReallocatedOut,
		AdjustedRequirement: result.AdjustedRequirement,
		ActiveSiteCount:     result.ActiveSiteCount,
		EventSiteCount:      result.EventSiteCount,
		Status:              string(result.Status),
		Shortfall:           result.Shortfall,
		Excess:              result.Excess,
		EvaluatedAt:         result.EvaluatedAt.UTC(),
		Issues:              string(raw),
	}, nil
}

func (m snapshotModel) toEntity() entities.ComplianceSnapshot {
	var issues []entities.Issue
	if m.Issues != "" {
		_ = json.Unmarshal([]byte(m.Issues), &issues)
	}
	if len(issues) == 0 {
		issues = nil
	}
	return entities.ComplianceSnapshot{
		SnapshotID: m.SnapshotID,
		Label:      m.Label,
		CapturedAt: m.CapturedAt.UTC(),
		Result: entities.ComplianceResult{
			MunicipalityID:   m.MunicipalityID,
			MunicipalityName: m.MunicipalityName,
			Requirement: entities.RequirementSnapshot{
				MunicipalityID:  m.MunicipalityID,
				Population:      m.Population,
				BaseRequirement: m.BaseRequirement,
				Tier:            entities.RequirementTier(m.Tier),
				ComputedAt:      m.EvaluatedAt.UTC(),
			},
			OffsetID:            m.OffsetID,
			OffsetSitesReduced:  m.OffsetSitesReduced,
			EventCreditApplied:  m.EventCreditApplied,
			EventCreditOffered:  m.EventCreditOffered,
			ReallocatedIn:       m.ReallocatedIn,
			ReallocatedOut:      m.ReallocatedOut,
			AdjustedRequirement: m.AdjustedRequirement,
			ActiveSiteCount:     m.ActiveSiteCount,
			EventSiteCount:      m.EventSiteCount,
			Status:              entities.ComplianceStatus(m.Status),
			Shortfall:           m.Shortfall,
			Excess:              m.Excess,
			EvaluatedAt:         m.EvaluatedAt.UTC(),
			Issues:              issues,
		},
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index:idx_compliance_outbox_status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "compliance_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
