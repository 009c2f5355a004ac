package entities

import (
	"strings"
	"time"
)

type OperatorType string

const (
	OperatorMunicipal        OperatorType = "municipal"
	OperatorFirstNation      OperatorType = "first_nation"
	OperatorRegionalDistrict OperatorType = "regional_district"
	OperatorPrivate          OperatorType = "private"
	OperatorReturnToRetail   OperatorType = "return_to_retail"
	OperatorEvent            OperatorType = "event"
	OperatorOther            OperatorType = "other"
)

const SiteTypeEvent = "event"

// ParseOperatorType normalizes free-form operator labels from imported rows.
func ParseOperatorType(raw string) OperatorType {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(value)
	switch value {
	case "municipal", "municipality":
		return OperatorMunicipal
	case "first_nation", "first_nations", "indigenous", "first_nation_indigenous":
		return OperatorFirstNation
	case "regional_district", "regional":
		return OperatorRegionalDistrict
	case "private":
		return OperatorPrivate
	case "return_to_retail", "rtr", "retail":
		return OperatorReturnToRetail
	case "event":
		return OperatorEvent
	default:
		return OperatorOther
	}
}

// Site is a registered collection site. Sites are never deleted; deactivation
// removes them from active counts but keeps them for audit.
type Site struct {
	SiteID         string
	MunicipalityID string
	Name           string
	OperatorType   OperatorType
	SiteType       string
	Programs       []string
	ActiveFrom     time.Time
	DeactivatedAt  *time.Time
}

func (s Site) ActiveAt(t time.Time) bool {
	if s.ActiveFrom.After(t) {
		return false
	}
	return s.DeactivatedAt == nil || s.DeactivatedAt.After(t)
}

// IsEventSite reports temporary event sites; they count through the event ledger
// rather than the permanent inventory.
func (s Site) IsEventSite() bool {
	return s.OperatorType == OperatorEvent || strings.EqualFold(strings.TrimSpace(s.SiteType), SiteTypeEvent)
}

// ExclusionReason returns why the site cannot back a reallocation, or "" when it can.
func (s Site) ExclusionReason() string {
	switch {
	case s.IsEventSite():
		return "event site"
	case s.OperatorType == OperatorMunicipal:
		return "municipal operator"
	case s.OperatorType == OperatorFirstNation:
		return "first nation operator"
	case s.OperatorType == OperatorRegionalDistrict:
		return "regional district operator"
	default:
		return ""
	}
}

func (s Site) ReallocationEligible() bool {
	return s.ExclusionReason() == ""
}
