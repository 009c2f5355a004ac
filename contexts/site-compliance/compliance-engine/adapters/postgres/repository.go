package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository implements every ledger and registry port over gorm. It runs on
// postgres in production and on sqlite for local runs and tests.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the compliance tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&municipalityModel{},
		&siteModel{},
		&adjacencyModel{},
		&offsetModel{},
		&eventModel{},
		&reallocationModel{},
		&snapshotModel{},
		&outboxModel{},
	)
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) UpsertMunicipality(ctx context.Context, municipality entities.Municipality) error {
	if !municipality.Valid() {
		return domainerrors.Reject(domainerrors.ErrValidation, "upsert municipality", "id, name and non-negative population are required",
			domainerrors.Municipality(municipality.MunicipalityID))
	}
	row := municipalityModelFromEntity(municipality)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "municipality_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "population", "tier", "region", "province", "census_year", "updated_at"}),
		}).
		Create(&row).
		Error
	if isUniqueViolation(err) {
		return domainerrors.Reject(domainerrors.ErrConflict, "upsert municipality", "name already used",
			domainerrors.Municipality(municipality.MunicipalityID))
	}
	return err
}

func (r *Repository) UpsertSite(ctx context.Context, site entities.Site) error {
	if strings.TrimSpace(site.SiteID) == "" || strings.TrimSpace(site.MunicipalityID) == "" {
		return domainerrors.Reject(domainerrors.ErrValidation, "upsert site", "site id and municipality are required", domainerrors.Record(site.SiteID))
	}
	if _, err := r.GetMunicipality(ctx, site.MunicipalityID); err != nil {
		return err
	}
	row, err := siteModelFromEntity(site)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "site_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"municipality_id", "name", "operator_type", "site_type", "programs", "active_from", "deactivated_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) AddAdjacency(ctx context.Context, municipalityID string, neighbourID string) error {
	for _, id := range []string{municipalityID, neighbourID} {
		if _, err := r.GetMunicipality(ctx, id); err != nil {
			return err
		}
	}
	row := adjacencyModel{MunicipalityID: municipalityID, NeighbourID: neighbourID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error
}

func (r *Repository) ListMunicipalities(ctx context.Context) ([]entities.Municipality, error) {
	var rows []municipalityModel
	if err := r.db.WithContext(ctx).
		Order("municipality_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Municipality, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetMunicipality(ctx context.Context, municipalityID string) (entities.Municipality, error) {
	var row municipalityModel
	err := r.db.WithContext(ctx).
		Where("municipality_id = ?", strings.TrimSpace(municipalityID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Municipality{}, domainerrors.Reject(domainerrors.ErrNotFound, "get municipality", "", domainerrors.Municipality(municipalityID))
		}
		return entities.Municipality{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdatePopulation(ctx context.Context, update ports.PopulationUpdate, event ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&municipalityModel{}).
			Where("municipality_id = ?", update.MunicipalityID).
			Updates(map[string]any{
				"population":  update.Population,
				"census_year": update.CensusYear,
				"updated_at":  update.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.Reject(domainerrors.ErrNotFound, "update population", "", domainerrors.Municipality(update.MunicipalityID))
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) ListActiveSites(ctx context.Context, asOf time.Time) ([]entities.Site, error) {
	asOf = asOf.UTC()
	var rows []siteModel
	if err := r.db.WithContext(ctx).
		Where("active_from <= ? AND (deactivated_at IS NULL OR deactivated_at > ?)", asOf, asOf).
		Order("site_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return sitesToEntities(rows), nil
}

func (r *Repository) ListSitesByMunicipality(ctx context.Context, municipalityID string) ([]entities.Site, error) {
	var rows []siteModel
	if err := r.db.WithContext(ctx).
		Where("municipality_id = ?", municipalityID).
		Order("site_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return sitesToEntities(rows), nil
}

func (r *Repository) Adjacency(ctx context.Context, municipalityID string) ([]string, error) {
	if _, err := r.GetMunicipality(ctx, municipalityID); err != nil {
		return nil, err
	}
	var neighbours []string
	if err := r.db.WithContext(ctx).
		Model(&adjacencyModel{}).
		Where("municipality_id = ?", municipalityID).
		Order("neighbour_id ASC").
		Pluck("neighbour_id", &neighbours).
		Error; err != nil {
		return nil, err
	}
	return neighbours, nil
}

func (r *Repository) ListOffsets(ctx context.Context, municipalityID string) ([]entities.Offset, error) {
	tx := r.db.WithContext(ctx).Model(&offsetModel{})
	if municipalityID != "" {
		tx = tx.Where("municipality_id = ?", municipalityID)
	}
	var rows []offsetModel
	if err := tx.Order("created_at ASC").Order("offset_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Offset, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetOffset(ctx context.Context, offsetID string) (entities.Offset, error) {
	var row offsetModel
	err := r.db.WithContext(ctx).
		Where("offset_id = ?", strings.TrimSpace(offsetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Offset{}, domainerrors.Reject(domainerrors.ErrNotFound, "get offset", "", domainerrors.Record(offsetID))
		}
		return entities.Offset{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) AppendOffset(ctx context.Context, offset entities.Offset, event ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := offsetModelFromEntity(offset)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.Reject(domainerrors.ErrConflict, "append offset", "an offset already exists for this year",
					domainerrors.Municipality(offset.MunicipalityID))
			}
			return err
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) SupersedeOffset(ctx context.Context, previousID string, replacement entities.Offset, event ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The previous row leaves the live index before the replacement enters it.
		result := tx.Model(&offsetModel{}).
			Where("offset_id = ? AND superseded_by = ?", previousID, "").
			Updates(map[string]any{
				"superseded_by": replacement.OffsetID,
				"superseded_at": replacement.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&offsetModel{}).Where("offset_id = ?", previousID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.Reject(domainerrors.ErrNotFound, "supersede offset", "", domainerrors.Record(previousID))
			}
			return domainerrors.Reject(domainerrors.ErrStaleState, "supersede offset", "already superseded", domainerrors.Record(previousID))
		}

		row := offsetModelFromEntity(replacement)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.Reject(domainerrors.ErrConflict, "supersede offset", "an offset already exists for this year",
					domainerrors.Municipality(replacement.MunicipalityID))
			}
			return err
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) ListEvents(ctx context.Context, municipalityID string) ([]entities.EventRecord, error) {
	tx := r.db.WithContext(ctx).Model(&eventModel{})
	if municipalityID != "" {
		tx = tx.Where("municipality_id = ?", municipalityID)
	}
	var rows []eventModel
	if err := tx.Order("valid_from ASC").Order("event_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.EventRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetEvent(ctx context.Context, eventID string) (entities.EventRecord, error) {
	var row eventModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.EventRecord{}, domainerrors.Reject(domainerrors.ErrNotFound, "get event", "", domainerrors.Record(eventID))
		}
		return entities.EventRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) AppendEvent(ctx context.Context, record entities.EventRecord, event ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := eventModelFromEntity(record)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.Reject(domainerrors.ErrConflict, "append event", "event id already exists", domainerrors.Record(record.EventID))
			}
			return err
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) ListReallocations(ctx context.Context, municipalityID string) ([]entities.Reallocation, error) {
	tx := r.db.WithContext(ctx).Model(&reallocationModel{})
	if municipalityID != "" {
		tx = tx.Where("donor_id = ? OR recipient_id = ?", municipalityID, municipalityID)
	}
	var rows []reallocationModel
	if err := tx.Order("proposed_at ASC").Order("reallocation_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Reallocation, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, fmt.Errorf("decode reallocation %s: %w", row.ReallocationID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) GetReallocation(ctx context.Context, reallocationID string) (entities.Reallocation, error) {
	var row reallocationModel
	err := r.db.WithContext(ctx).
		Where("reallocation_id = ?", strings.TrimSpace(reallocationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Reallocation{}, domainerrors.Reject(domainerrors.ErrNotFound, "get reallocation", "", domainerrors.Record(reallocationID))
		}
		return entities.Reallocation{}, err
	}
	return row.toEntity()
}

func (r *Repository) AppendReallocation(ctx context.Context, realloc entities.Reallocation, event ports.OutboxEvent) error {
	row, err := reallocationModelFromEntity(realloc)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.Reject(domainerrors.ErrConflict, "append reallocation", "reallocation id already exists",
					domainerrors.Record(realloc.ReallocationID))
			}
			return err
		}
		return insertOutbox(tx, event)
	})
}

// TransitionReallocation only touches rows still in the expected status.
func (r *Repository) TransitionReallocation(ctx context.Context, transition ports.ReallocationTransition, event ports.OutboxEvent) error {
	updates := map[string]any{"status": string(transition.To)}
	switch transition.To {
	case entities.ReallocationCommitted:
		updates["committed_at"] = transition.At.UTC()
	case entities.ReallocationReversed:
		updates["reversed_at"] = transition.At.UTC()
		updates["reversal_reason"] = transition.Reason
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&reallocationModel{}).
			Where("reallocation_id = ? AND status = ?", transition.ReallocationID, string(transition.From)).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var row reallocationModel
			if err := tx.Select("status").Where("reallocation_id = ?", transition.ReallocationID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.Reject(domainerrors.ErrNotFound, "transition reallocation", "", domainerrors.Record(transition.ReallocationID))
				}
				return err
			}
			return domainerrors.Reject(domainerrors.ErrStaleState, "transition reallocation",
				"expected status "+string(transition.From)+", found "+row.Status,
				domainerrors.Record(transition.ReallocationID))
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) AppendSnapshots(ctx context.Context, snapshots []entities.ComplianceSnapshot, event ports.OutboxEvent) error {
	rows := make([]snapshotModel, 0, len(snapshots))
	for _, snapshot := range snapshots {
		row, err := snapshotModelFromEntity(snapshot)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrRepositoryInvariantBroke
				}
				return err
			}
		}
		return insertOutbox(tx, event)
	})
}

func (r *Repository) ListSnapshots(ctx context.Context, municipalityID string) ([]entities.ComplianceSnapshot, error) {
	tx := r.db.WithContext(ctx).Model(&snapshotModel{})
	if municipalityID != "" {
		tx = tx.Where("municipality_id = ?", municipalityID)
	}
	var rows []snapshotModel
	if err := tx.Order("captured_at ASC").Order("municipality_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.ComplianceSnapshot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.Reject(domainerrors.ErrNotFound, "mark outbox sent", "", domainerrors.Record(outboxID))
	}
	return nil
}

func insertOutbox(tx *gorm.DB, event ports.OutboxEvent) error {
	if strings.TrimSpace(event.EventID) == "" {
		return nil
	}
	envelope, err := event.Envelope()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if err := tx.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func sitesToEntities(rows []siteModel) []entities.Site {
	items := make([]entities.Site, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

// isUniqueViolation covers raw pgx errors and gorm's translated form, which is
// what the sqlite dialector returns when TranslateError is on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
