package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/memory"
	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"

	"github.com/shopspring/decimal"
)

type harness struct {
	store   *memory.Store
	state   application.StateReader
	now     time.Time
	mu      sync.Mutex
	propose ProposeReallocationUseCase
	commit  CommitReallocationUseCase
	reverse ReverseReallocationUseCase
	offset  ApplyOffsetUseCase
	replace SupersedeOffsetUseCase
	census  RefreshCensusUseCase
	capture CaptureSnapshotUseCase
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// newHarness seeds four municipalities:
// north: base 3, five sites (one municipal), excess 2
// south: base 4, one site, shortfall 3
// east:  base 2, two sites, compliant
// west:  base 1, three sites (two municipal), excess 2 but one eligible
// north and west border south; north borders east.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{store: memory.NewStore(), now: time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)}
	h.store.SetClock(h.clock)

	for _, m := range []entities.Municipality{
		{MunicipalityID: "north", Name: "Northvale", Population: 45000, CensusYear: 2021},
		{MunicipalityID: "south", Name: "Southport", Population: 60000, CensusYear: 2021},
		{MunicipalityID: "east", Name: "Eastbrook", Population: 30000, CensusYear: 2021},
		{MunicipalityID: "west", Name: "Westfield", Population: 15000, CensusYear: 2021},
	} {
		if err := h.store.UpsertMunicipality(ctx, m); err != nil {
			t.Fatalf("seed municipality: %v", err)
		}
	}
	for _, s := range []entities.Site{
		{SiteID: "n1", MunicipalityID: "north", OperatorType: entities.OperatorPrivate},
		{SiteID: "n2", MunicipalityID: "north", OperatorType: entities.OperatorReturnToRetail},
		{SiteID: "n3", MunicipalityID: "north", OperatorType: entities.OperatorPrivate},
		{SiteID: "n4", MunicipalityID: "north", OperatorType: entities.OperatorMunicipal},
		{SiteID: "n5", MunicipalityID: "north", OperatorType: entities.OperatorPrivate},
		{SiteID: "s1", MunicipalityID: "south", OperatorType: entities.OperatorPrivate},
		{SiteID: "e1", MunicipalityID: "east", OperatorType: entities.OperatorPrivate},
		{SiteID: "e2", MunicipalityID: "east", OperatorType: entities.OperatorPrivate},
		{SiteID: "w1", MunicipalityID: "west", OperatorType: entities.OperatorMunicipal},
		{SiteID: "w2", MunicipalityID: "west", OperatorType: entities.OperatorRegionalDistrict},
		{SiteID: "w3", MunicipalityID: "west", OperatorType: entities.OperatorPrivate},
	} {
		if err := h.store.UpsertSite(ctx, s); err != nil {
			t.Fatalf("seed site: %v", err)
		}
	}
	for _, pair := range [][2]string{{"north", "south"}, {"north", "east"}, {"west", "south"}} {
		if err := h.store.AddAdjacency(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("seed adjacency: %v", err)
		}
		if err := h.store.AddAdjacency(ctx, pair[1], pair[0]); err != nil {
			t.Fatalf("seed adjacency: %v", err)
		}
	}

	h.state = application.StateReader{
		Municipalities: h.store,
		Sites:          h.store,
		Offsets:        h.store,
		Events:         h.store,
		Reallocations:  h.store,
	}
	h.propose = ProposeReallocationUseCase{State: h.state, Adjacency: h.store, Reallocations: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.commit = CommitReallocationUseCase{State: h.state, Reallocations: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.reverse = ReverseReallocationUseCase{Reallocations: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.offset = ApplyOffsetUseCase{Municipalities: h.store, Offsets: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.replace = SupersedeOffsetUseCase{Offsets: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.census = RefreshCensusUseCase{Municipalities: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	h.capture = CaptureSnapshotUseCase{State: h.state, Snapshots: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	return h
}

func (h *harness) evaluate(t *testing.T, municipalityID string) entities.ComplianceResult {
	t.Helper()
	result, err := h.state.Evaluate(context.Background(), municipalityID, h.clock())
	if err != nil {
		t.Fatalf("evaluate %s: %v", municipalityID, err)
	}
	return result
}

func TestProposeRejectsNonAdjacentPair(t *testing.T) {
	h := newHarness(t)
	_, err := h.propose.Execute(context.Background(), ProposeReallocationCommand{DonorID: "west", RecipientID: "east", Quantity: 1})
	if !errors.Is(err, domainerrors.ErrAdjacency) {
		t.Fatalf("expected adjacency error, got %v", err)
	}
}

func TestProposeRejectsIneligibleCapacity(t *testing.T) {
	h := newHarness(t)
	_, err := h.propose.Execute(context.Background(), ProposeReallocationCommand{DonorID: "west", RecipientID: "south", Quantity: 2})
	if !errors.Is(err, domainerrors.ErrEligibility) {
		t.Fatalf("expected eligibility error, got %v", err)
	}
	rejection, ok := domainerrors.AsRejection(err)
	if !ok || rejection.Available == nil || *rejection.Available != 1 {
		t.Fatalf("expected available=1 on the rejection, got %+v", rejection)
	}

	if _, err := h.propose.Execute(context.Background(), ProposeReallocationCommand{DonorID: "west", RecipientID: "south", Quantity: 1}); err != nil {
		t.Fatalf("expected the single eligible site to be transferable, got %v", err)
	}
}

func TestProposeValidation(t *testing.T) {
	h := newHarness(t)
	cases := []ProposeReallocationCommand{
		{DonorID: "north", RecipientID: "north", Quantity: 1},
		{DonorID: "north", RecipientID: "south", Quantity: 0},
		{DonorID: "north", RecipientID: "south", Quantity: 3},
		{DonorID: "north", RecipientID: "east", Quantity: 1},
	}
	for _, cmd := range cases {
		if _, err := h.propose.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrValidation) {
			t.Fatalf("%+v: expected validation error, got %v", cmd, err)
		}
	}
	if _, err := h.propose.Execute(context.Background(), ProposeReallocationCommand{DonorID: "north", RecipientID: "nowhere", Quantity: 1}); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown recipient, got %v", err)
	}
}

func TestProposeRecordsJustification(t *testing.T) {
	h := newHarness(t)
	result, err := h.propose.Execute(context.Background(), ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 2, Reason: "shared depot"})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	realloc := result.Reallocation
	if realloc.Status != entities.ReallocationProposed || realloc.DonorExcessSeen != 2 {
		t.Fatalf("unexpected proposal: %+v", realloc)
	}
	if got := realloc.Justification.IncludedSiteIDs; len(got) != 2 || got[0] != "n1" || got[1] != "n2" {
		t.Fatalf("expected n1,n2 to justify the transfer, got %v", got)
	}
	if len(realloc.Justification.Excluded) != 1 || realloc.Justification.Excluded[0].SiteID != "n4" {
		t.Fatalf("expected municipal site n4 to be excluded, got %+v", realloc.Justification.Excluded)
	}
	if h.evaluate(t, "south").ReallocatedIn != 0 {
		t.Fatalf("a proposal must not move capacity")
	}
}

func TestCommitConservesTotalRequirement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	before := h.evaluate(t, "north").AdjustedRequirement + h.evaluate(t, "south").AdjustedRequirement

	proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 2})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	committed, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if committed.Donor.Status != entities.StatusCompliant || committed.Recipient.Shortfall != 1 {
		t.Fatalf("unexpected post-commit state: donor=%+v recipient=%+v", committed.Donor, committed.Recipient)
	}
	after := committed.Donor.AdjustedRequirement + committed.Recipient.AdjustedRequirement
	if before != after {
		t.Fatalf("total requirement changed: before=%d after=%d", before, after)
	}

	if _, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict on second commit, got %v", err)
	}
}

func TestConcurrentCommitsOnlyOneSucceeds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.store.UpsertSite(ctx, entities.Site{SiteID: "n6", MunicipalityID: "north", OperatorType: entities.OperatorPrivate}); err != nil {
		t.Fatalf("seed site: %v", err)
	}
	if excess := h.evaluate(t, "north").Excess; excess != 3 {
		t.Fatalf("expected donor excess 3 before commits, got %d", excess)
	}

	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 2})
		if err != nil {
			t.Fatalf("propose %d: %v", i, err)
		}
		ids = append(ids, proposed.Reallocation.ReallocationID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.commit.Execute(ctx, id)
		}(i, id)
	}
	wg.Wait()

	succeeded, stale := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrStaleState):
			stale++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	if succeeded != 1 || stale != 1 {
		t.Fatalf("expected one commit and one stale rejection, got %d/%d", succeeded, stale)
	}
	if excess := h.evaluate(t, "north").Excess; excess != 1 {
		t.Fatalf("expected donor excess 1 after a single commit of 2, got %d", excess)
	}
	if shortfall := h.evaluate(t, "south").Shortfall; shortfall != 1 {
		t.Fatalf("expected recipient shortfall 1, got %d", shortfall)
	}
}

func TestCommitStaleWhenRecipientShortfallAlreadyCovered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.store.UpsertMunicipality(ctx, entities.Municipality{MunicipalityID: "tiny", Name: "Tinyton", Population: 15000, CensusYear: 2021}); err != nil {
		t.Fatalf("seed municipality: %v", err)
	}
	for _, donor := range []string{"north", "west"} {
		if err := h.store.AddAdjacency(ctx, donor, "tiny"); err != nil {
			t.Fatalf("seed adjacency: %v", err)
		}
		if err := h.store.AddAdjacency(ctx, "tiny", donor); err != nil {
			t.Fatalf("seed adjacency: %v", err)
		}
	}
	total := func() int {
		return h.evaluate(t, "north").AdjustedRequirement + h.evaluate(t, "west").AdjustedRequirement + h.evaluate(t, "tiny").AdjustedRequirement
	}
	before := total()

	fromNorth, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "tiny", Quantity: 1})
	if err != nil {
		t.Fatalf("propose north: %v", err)
	}
	fromWest, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "west", RecipientID: "tiny", Quantity: 1})
	if err != nil {
		t.Fatalf("propose west: %v", err)
	}
	if _, err := h.commit.Execute(ctx, fromNorth.Reallocation.ReallocationID); err != nil {
		t.Fatalf("commit north: %v", err)
	}

	_, err = h.commit.Execute(ctx, fromWest.Reallocation.ReallocationID)
	if !errors.Is(err, domainerrors.ErrStaleState) {
		t.Fatalf("expected stale state once the recipient shortfall is covered, got %v", err)
	}
	rejection, ok := domainerrors.AsRejection(err)
	if !ok || rejection.Available == nil || *rejection.Available != 0 {
		t.Fatalf("expected available=0 on the rejection, got %+v", rejection)
	}

	stored, err := h.store.GetReallocation(ctx, fromWest.Reallocation.ReallocationID)
	if err != nil {
		t.Fatalf("get reallocation: %v", err)
	}
	if stored.Status != entities.ReallocationProposed {
		t.Fatalf("stale commit must leave the proposal untouched, got %s", stored.Status)
	}
	if excess := h.evaluate(t, "west").Excess; excess != 2 {
		t.Fatalf("expected west excess untouched at 2, got %d", excess)
	}
	if after := total(); after != before {
		t.Fatalf("total requirement changed: before=%d after=%d", before, after)
	}
}

func TestApplyEventValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	apply := ApplyEventUseCase{Municipalities: h.store, Events: h.store, Locker: h.store, Clock: h.store, IDGenerator: h.store}
	from := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		cmd  ApplyEventCommand
		want error
	}{
		{"zero credit", ApplyEventCommand{MunicipalityID: "south", Credit: 0, ValidFrom: from, ValidTo: to}, domainerrors.ErrValidation},
		{"negative credit", ApplyEventCommand{MunicipalityID: "south", Credit: -2, ValidFrom: from, ValidTo: to}, domainerrors.ErrValidation},
		{"inverted window", ApplyEventCommand{MunicipalityID: "south", Credit: 1, ValidFrom: to, ValidTo: from}, domainerrors.ErrValidation},
		{"missing window", ApplyEventCommand{MunicipalityID: "south", Credit: 1, ValidFrom: from}, domainerrors.ErrValidation},
		{"missing municipality", ApplyEventCommand{Credit: 1, ValidFrom: from, ValidTo: to}, domainerrors.ErrValidation},
		{"unknown municipality", ApplyEventCommand{MunicipalityID: "nowhere", Credit: 1, ValidFrom: from, ValidTo: to}, domainerrors.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := apply.Execute(ctx, tc.cmd); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	events, err := h.store.ListEvents(ctx, "south")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rejected events must not be recorded, got %d", len(events))
	}
	if got := h.evaluate(t, "south").EventCreditApplied; got != 0 {
		t.Fatalf("expected no event credit, got %d", got)
	}

	for _, credit := range []int{1, 1} {
		if _, err := apply.Execute(ctx, ApplyEventCommand{MunicipalityID: "south", Credit: credit, ValidFrom: from, ValidTo: to}); err != nil {
			t.Fatalf("apply event: %v", err)
		}
	}
	if got := h.evaluate(t, "south"); got.EventCreditApplied != 2 || got.Shortfall != 1 {
		t.Fatalf("expected two concurrent credits to reduce shortfall to 1, got applied=%d shortfall=%d", got.EventCreditApplied, got.Shortfall)
	}
}

func TestCommitStaleWhenJustificationOverlapsCommittedTransfer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("propose first: %v", err)
	}
	second, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("propose second: %v", err)
	}
	if _, err := h.commit.Execute(ctx, first.Reallocation.ReallocationID); err != nil {
		t.Fatalf("commit first: %v", err)
	}
	if _, err := h.commit.Execute(ctx, second.Reallocation.ReallocationID); !errors.Is(err, domainerrors.ErrStaleState) {
		t.Fatalf("expected stale state for a site already cited, got %v", err)
	}

	fresh, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("re-propose: %v", err)
	}
	if got := fresh.Reallocation.Justification.IncludedSiteIDs; len(got) != 1 || got[0] != "n2" {
		t.Fatalf("expected the fresh proposal to skip cited n1, got %v", got)
	}
	if _, err := h.commit.Execute(ctx, fresh.Reallocation.ReallocationID); err != nil {
		t.Fatalf("commit fresh proposal: %v", err)
	}
}

func TestCommitStaleWhenJustifyingSiteDeactivated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	closedAt := h.clock().Add(-time.Minute)
	if err := h.store.UpsertSite(ctx, entities.Site{SiteID: "n1", MunicipalityID: "north", OperatorType: entities.OperatorPrivate, DeactivatedAt: &closedAt}); err != nil {
		t.Fatalf("deactivate site: %v", err)
	}
	if _, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID); !errors.Is(err, domainerrors.ErrStaleState) {
		t.Fatalf("expected stale state, got %v", err)
	}
	stored, err := h.store.GetReallocation(ctx, proposed.Reallocation.ReallocationID)
	if err != nil {
		t.Fatalf("get reallocation: %v", err)
	}
	if stored.Status != entities.ReallocationProposed {
		t.Fatalf("a stale commit must leave the proposal untouched, got %s", stored.Status)
	}
}

func TestReverseCommittedTransferRestoresRequirements(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 2})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID); err != nil {
		t.Fatalf("commit: %v", err)
	}
	committedAt := h.clock()
	h.advance(24 * time.Hour)

	reversed, err := h.reverse.Execute(ctx, ReverseReallocationCommand{ReallocationID: proposed.Reallocation.ReallocationID, Reason: "entered in error"})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if reversed.Status != entities.ReallocationReversed || reversed.ReversalReason != "entered in error" {
		t.Fatalf("unexpected reversed record: %+v", reversed)
	}
	if got := h.evaluate(t, "south"); got.ReallocatedIn != 0 || got.Shortfall != 3 {
		t.Fatalf("expected recipient shortfall restored, got %+v", got)
	}

	historical, err := h.state.Evaluate(ctx, "south", committedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("evaluate history: %v", err)
	}
	if historical.ReallocatedIn != 2 {
		t.Fatalf("expected the transfer to still count before the reversal instant, got %d", historical.ReallocatedIn)
	}

	if _, err := h.reverse.Execute(ctx, ReverseReallocationCommand{ReallocationID: proposed.Reallocation.ReallocationID}); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict reversing twice, got %v", err)
	}
}

func TestReverseWithdrawsProposal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := h.reverse.Execute(ctx, ReverseReallocationCommand{ReallocationID: proposed.Reallocation.ReallocationID}); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if _, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict committing a withdrawn proposal, got %v", err)
	}
}

func TestApplyOffsetOncePerYearThenSupersede(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	applied, err := h.offset.Execute(ctx, ApplyOffsetCommand{
		MunicipalityID:     "south",
		Percentage:         decimal.RequireFromString("50"),
		AnnualPickupVolume: 1200,
		EffectiveDate:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("apply offset: %v", err)
	}
	if applied.Status != entities.LedgerStatusActive {
		t.Fatalf("expected active offset, got %s", applied.Status)
	}
	if got := h.evaluate(t, "south"); got.OffsetSitesReduced != 2 || got.AdjustedRequirement != 2 {
		t.Fatalf("expected 50%% of 4 to reduce two sites, got %+v", got)
	}

	_, err = h.offset.Execute(ctx, ApplyOffsetCommand{MunicipalityID: "south", Percentage: decimal.RequireFromString("10"), AnnualPickupVolume: 5})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict for a second offset this year, got %v", err)
	}

	h.advance(time.Hour)
	replaced, err := h.replace.Execute(ctx, SupersedeOffsetCommand{OffsetID: applied.Offset.OffsetID, Percentage: decimal.RequireFromString("25"), AnnualPickupVolume: 900})
	if err != nil {
		t.Fatalf("supersede: %v", err)
	}
	if replaced.Previous.SupersededBy != replaced.Replacement.OffsetID {
		t.Fatalf("expected previous to point at its replacement, got %+v", replaced.Previous)
	}
	if got := h.evaluate(t, "south"); got.OffsetID != replaced.Replacement.OffsetID || got.OffsetSitesReduced != 1 || len(got.Issues) != 0 {
		t.Fatalf("expected the replacement alone to apply, got %+v", got)
	}

	_, err = h.replace.Execute(ctx, SupersedeOffsetCommand{OffsetID: applied.Offset.OffsetID, Percentage: decimal.RequireFromString("20"), AnnualPickupVolume: 1})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict superseding twice, got %v", err)
	}

	history, err := h.store.ListOffsets(ctx, "south")
	if err != nil {
		t.Fatalf("list offsets: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected both records kept for audit, got %d", len(history))
	}
}

func TestApplyOffsetValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cases := []ApplyOffsetCommand{
		{MunicipalityID: "south", Percentage: decimal.RequireFromString("100.01"), AnnualPickupVolume: 1},
		{MunicipalityID: "south", Percentage: decimal.RequireFromString("-0.5"), AnnualPickupVolume: 1},
		{MunicipalityID: "south", Percentage: decimal.RequireFromString("10"), AnnualPickupVolume: -1},
		{MunicipalityID: "", Percentage: decimal.RequireFromString("10"), AnnualPickupVolume: 1},
	}
	for _, cmd := range cases {
		if _, err := h.offset.Execute(ctx, cmd); !errors.Is(err, domainerrors.ErrValidation) {
			t.Fatalf("%+v: expected validation error, got %v", cmd, err)
		}
	}
	_, err := h.offset.Execute(ctx, ApplyOffsetCommand{MunicipalityID: "nowhere", Percentage: decimal.RequireFromString("10"), AnnualPickupVolume: 1})
	if !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyOffsetForNextYearIsPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.offset.Execute(ctx, ApplyOffsetCommand{MunicipalityID: "south", Percentage: decimal.RequireFromString("10"), AnnualPickupVolume: 1}); err != nil {
		t.Fatalf("apply this year: %v", err)
	}
	next, err := h.offset.Execute(ctx, ApplyOffsetCommand{
		MunicipalityID:     "south",
		Percentage:         decimal.RequireFromString("20"),
		AnnualPickupVolume: 1,
		EffectiveDate:      time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("apply next year: %v", err)
	}
	if next.Status != entities.LedgerStatusPending {
		t.Fatalf("expected pending status, got %s", next.Status)
	}
}

func TestRefreshCensusRecomputesRequirement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.census.Execute(ctx, RefreshCensusCommand{MunicipalityID: "east", Population: 90000, CensusYear: 2026})
	if err != nil {
		t.Fatalf("refresh census: %v", err)
	}
	if result.Before.BaseRequirement != 2 || result.After.BaseRequirement != 6 {
		t.Fatalf("unexpected requirement change: %+v -> %+v", result.Before, result.After)
	}
	if got := h.evaluate(t, "east"); got.Status != entities.StatusShortfall || got.Shortfall != 4 {
		t.Fatalf("expected east to fall short after growth, got %+v", got)
	}

	_, err = h.census.Execute(ctx, RefreshCensusCommand{MunicipalityID: "east", Population: 10, CensusYear: 2016})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict for an older census year, got %v", err)
	}
}

func TestCaptureSnapshotIsImmutableHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	snapshots, err := h.capture.Execute(ctx, CaptureSnapshotCommand{Label: "2026-q2"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(snapshots) != 4 {
		t.Fatalf("expected one snapshot per municipality, got %d", len(snapshots))
	}
	if _, err := h.census.Execute(ctx, RefreshCensusCommand{MunicipalityID: "east", Population: 90000}); err != nil {
		t.Fatalf("refresh census: %v", err)
	}

	stored, err := h.store.ListSnapshots(ctx, "east")
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(stored) != 1 || stored[0].Result.Requirement.BaseRequirement != 2 || stored[0].Label != "2026-q2" {
		t.Fatalf("expected the captured result to be unchanged, got %+v", stored)
	}
}

func TestWritesStageOutboxEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	proposed, err := h.propose.Execute(ctx, ProposeReallocationCommand{DonorID: "north", RecipientID: "south", Quantity: 1})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := h.commit.Execute(ctx, proposed.Reallocation.ReallocationID); err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := h.store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 outbox rows, got %d", len(pending))
	}
	seen := map[string]bool{}
	for _, msg := range pending {
		seen[msg.EventType] = true
		if msg.PartitionKey != "north" {
			t.Fatalf("expected donor partition key, got %q", msg.PartitionKey)
		}
	}
	if !seen[EventReallocationProposed] || !seen[EventReallocationCommitted] {
		t.Fatalf("unexpected event types: %v", seen)
	}
}
