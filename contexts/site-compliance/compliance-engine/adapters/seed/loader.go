package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"

	"gopkg.in/yaml.v3"
)

// Writer is implemented by the memory store and the gorm repository.
type Writer interface {
	UpsertMunicipality(ctx context.Context, municipality entities.Municipality) error
	UpsertSite(ctx context.Context, site entities.Site) error
	AddAdjacency(ctx context.Context, municipalityID string, neighbourID string) error
}

type Jurisdiction struct {
	Municipalities []MunicipalityRow   `yaml:"municipalities"`
	Sites          []SiteRow           `yaml:"sites"`
	Adjacency      map[string][]string `yaml:"adjacency"`
}

type MunicipalityRow struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Population int64  `yaml:"population"`
	Tier       string `yaml:"tier"`
	Region     string `yaml:"region"`
	Province   string `yaml:"province"`
	CensusYear int    `yaml:"census_year"`
}

type SiteRow struct {
	ID            string   `yaml:"id"`
	Municipality  string   `yaml:"municipality"`
	Name          string   `yaml:"name"`
	OperatorType  string   `yaml:"operator_type"`
	SiteType      string   `yaml:"site_type"`
	Programs      []string `yaml:"programs"`
	ActiveFrom    string   `yaml:"active_from"`
	DeactivatedAt string   `yaml:"deactivated_at"`
}

func LoadFile(path string) (Jurisdiction, error) {
	file, err := os.Open(path)
	if err != nil {
		return Jurisdiction{}, err
	}
	defer file.Close()
	return Parse(file)
}

func Parse(r io.Reader) (Jurisdiction, error) {
	var jurisdiction Jurisdiction
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&jurisdiction); err != nil {
		if err == io.EOF {
			return Jurisdiction{}, nil
		}
		return Jurisdiction{}, fmt.Errorf("decode seed: %w", err)
	}
	return jurisdiction, nil
}

// Apply writes municipalities, then sites, then adjacency. Adjacency is stored
// in both directions whatever way round the file lists it.
func Apply(ctx context.Context, writer Writer, jurisdiction Jurisdiction) error {
	for _, row := range jurisdiction.Municipalities {
		if err := writer.UpsertMunicipality(ctx, entities.Municipality{
			MunicipalityID: strings.TrimSpace(row.ID),
			Name:           strings.TrimSpace(row.Name),
			Population:     row.Population,
			Tier:           row.Tier,
			Region:         row.Region,
			Province:       row.Province,
			CensusYear:     row.CensusYear,
		}); err != nil {
			return fmt.Errorf("seed municipality %s: %w", row.ID, err)
		}
	}

	for _, row := range jurisdiction.Sites {
		site, err := row.toEntity()
		if err != nil {
			return fmt.Errorf("seed site %s: %w", row.ID, err)
		}
		if err := writer.UpsertSite(ctx, site); err != nil {
			return fmt.Errorf("seed site %s: %w", row.ID, err)
		}
	}

	for municipalityID, neighbours := range jurisdiction.Adjacency {
		for _, neighbourID := range neighbours {
			a, b := strings.TrimSpace(municipalityID), strings.TrimSpace(neighbourID)
			if a == b {
				continue
			}
			if err := writer.AddAdjacency(ctx, a, b); err != nil {
				return fmt.Errorf("seed adjacency %s-%s: %w", a, b, err)
			}
			if err := writer.AddAdjacency(ctx, b, a); err != nil {
				return fmt.Errorf("seed adjacency %s-%s: %w", b, a, err)
			}
		}
	}
	return nil
}

func (row SiteRow) toEntity() (entities.Site, error) {
	activeFrom, err := parseDate(row.ActiveFrom)
	if err != nil {
		return entities.Site{}, err
	}
	site := entities.Site{
		SiteID:         strings.TrimSpace(row.ID),
		MunicipalityID: strings.TrimSpace(row.Municipality),
		Name:           row.Name,
		OperatorType:   entities.ParseOperatorType(row.OperatorType),
		SiteType:       strings.TrimSpace(row.SiteType),
		Programs:       row.Programs,
		ActiveFrom:     activeFrom,
	}
	if strings.TrimSpace(row.DeactivatedAt) != "" {
		deactivated, err := parseDate(row.DeactivatedAt)
		if err != nil {
			return entities.Site{}, err
		}
		site.DeactivatedAt = &deactivated
	}
	return site, nil
}

// parseDate accepts a bare date or an RFC 3339 timestamp. An empty value means
// the site has always been active.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t.UTC(), nil
}
