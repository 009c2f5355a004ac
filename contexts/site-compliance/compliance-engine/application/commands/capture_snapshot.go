package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type CaptureSnapshotCommand struct {
	Label string
	// AsOf defaults to the current instant when zero.
	AsOf time.Time
}

type CaptureSnapshotUseCase struct {
	State       application.StateReader
	Snapshots   ports.SnapshotStore
	Locker      ports.Locker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CaptureSnapshotUseCase) Execute(ctx context.Context, cmd CaptureSnapshotCommand) ([]entities.ComplianceSnapshot, error) {
	logger := application.ResolveLogger(u.Logger)
	now := nowFrom(u.Clock)
	asOf := cmd.AsOf.UTC()
	if cmd.AsOf.IsZero() {
		asOf = now
	}
	label := strings.TrimSpace(cmd.Label)
	if label == "" {
		label = asOf.Format(time.DateOnly)
	}

	release, err := u.Locker.Lock(ctx, jurisdictionSnapshotLockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	results, err := u.State.EvaluateAll(ctx, asOf)
	if err != nil {
		logger.Error("capture snapshot evaluation failed",
			"event", "compliance_snapshot_evaluate_failed",
			"module", application.LogModule,
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}

	snapshots := make([]entities.ComplianceSnapshot, 0, len(results))
	for _, result := range results {
		snapshotID, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, entities.ComplianceSnapshot{
			SnapshotID: snapshotID,
			Label:      label,
			CapturedAt: now,
			Result:     result,
		})
	}

	event, err := newOutboxEvent(ctx, u.IDGenerator, EventSnapshotCaptured, label, now, map[string]any{
		"label":              label,
		"as_of":              asOf.Format(time.RFC3339),
		"municipality_count": len(snapshots),
	})
	if err != nil {
		return nil, err
	}
	if err := u.Snapshots.AppendSnapshots(ctx, snapshots, event); err != nil {
		logger.Error("capture snapshot write failed",
			"event", "compliance_snapshot_write_failed",
			"module", application.LogModule,
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}

	logger.Info("compliance snapshot captured",
		"event", "compliance_snapshot_captured",
		"module", application.LogModule,
		"layer", "application",
		"label", label,
		"municipality_count", len(snapshots),
	)
	return snapshots, nil
}
