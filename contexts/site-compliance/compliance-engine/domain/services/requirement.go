package services

import (
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
)

const (
	exemptBelow      = 1000
	linearCeiling    = 500000
	linearDivisor    = 15000
	urbanBaseline    = 34
	urbanStepDivisor = 50000
)

// ComputeRequirement maps population to the base number of collection sites.
// Negative populations are treated as zero.
func ComputeRequirement(population int64) int {
	count, _ := requirementTier(population)
	return count
}

// RequirementFor returns the base requirement together with the tier that produced it.
func RequirementFor(municipality entities.Municipality, at time.Time) entities.RequirementSnapshot {
	count, tier := requirementTier(municipality.Population)
	return entities.RequirementSnapshot{
		MunicipalityID:  municipality.MunicipalityID,
		Population:      municipality.Population,
		BaseRequirement: count,
		Tier:            tier,
		ComputedAt:      at.UTC(),
	}
}

func requirementTier(population int64) (int, entities.RequirementTier) {
	switch {
	case population < exemptBelow:
		return 0, entities.TierExempt
	case population <= linearCeiling:
		return int(ceilDiv(population, linearDivisor)), entities.TierLinear
	default:
		return urbanBaseline + int(ceilDiv(population-linearCeiling, urbanStepDivisor)), entities.TierUrban
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
