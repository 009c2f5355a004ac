package entities

import (
	"strings"
	"time"
)

type Municipality struct {
	MunicipalityID string
	Name           string
	Population     int64
	Tier           string
	Region         string
	Province       string
	CensusYear     int
	UpdatedAt      time.Time
}

func (m Municipality) Valid() bool {
	return strings.TrimSpace(m.MunicipalityID) != "" &&
		strings.TrimSpace(m.Name) != "" &&
		m.Population >= 0
}
