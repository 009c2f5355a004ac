package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOffsetStatusAt(t *testing.T) {
	effective := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	offset := Offset{OffsetID: "o1", EffectiveDate: effective, Percentage: decimal.NewFromInt(10)}

	cases := []struct {
		at   time.Time
		want LedgerStatus
	}{
		{effective.Add(-time.Nanosecond), LedgerStatusPending},
		{effective, LedgerStatusActive},
		{time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC), LedgerStatusActive},
		{time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), LedgerStatusExpired},
	}
	for _, tc := range cases {
		if got := offset.StatusAt(tc.at); got != tc.want {
			t.Fatalf("status at %s: expected %s, got %s", tc.at, tc.want, got)
		}
	}

	supersededAt := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	offset.SupersededBy = "o2"
	offset.SupersededAt = &supersededAt
	if got := offset.StatusAt(supersededAt.Add(-time.Second)); got != LedgerStatusActive {
		t.Fatalf("expected active before supersession, got %s", got)
	}
	if got := offset.StatusAt(supersededAt); got != LedgerStatusExpired {
		t.Fatalf("expected expired once superseded, got %s", got)
	}
}

func TestSitesReducedFloors(t *testing.T) {
	cases := []struct {
		base int
		pct  string
		want int
	}{
		{4, "50", 2},
		{3, "50", 1},
		{7, "33.3", 2},
		{10, "100", 10},
		{10, "0", 0},
		{10, "100.5", 0},
		{0, "50", 0},
	}
	for _, tc := range cases {
		if got := SitesReduced(tc.base, decimal.RequireFromString(tc.pct)); got != tc.want {
			t.Fatalf("SitesReduced(%d, %s): expected %d, got %d", tc.base, tc.pct, tc.want, got)
		}
	}
}

func TestEventStatusIsInclusiveByDay(t *testing.T) {
	event := EventRecord{
		ValidFrom: time.Date(2026, time.June, 10, 15, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
	}
	if got := event.StatusAt(time.Date(2026, time.June, 10, 0, 0, 1, 0, time.UTC)); got != LedgerStatusActive {
		t.Fatalf("expected active on the first day, got %s", got)
	}
	if got := event.StatusAt(time.Date(2026, time.June, 12, 23, 59, 0, 0, time.UTC)); got != LedgerStatusActive {
		t.Fatalf("expected active through the last day, got %s", got)
	}
	if got := event.StatusAt(time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC)); got != LedgerStatusExpired {
		t.Fatalf("expected expired after the window, got %s", got)
	}
	if got := event.StatusAt(time.Date(2026, time.June, 9, 23, 59, 0, 0, time.UTC)); got != LedgerStatusPending {
		t.Fatalf("expected pending before the window, got %s", got)
	}
}

func TestReallocationTransitions(t *testing.T) {
	proposed := Reallocation{Status: ReallocationProposed}
	committed := Reallocation{Status: ReallocationCommitted}
	reversed := Reallocation{Status: ReallocationReversed}

	if !proposed.CanTransition(ReallocationCommitted) || !proposed.CanTransition(ReallocationReversed) {
		t.Fatal("proposed must move to committed or reversed")
	}
	if committed.CanTransition(ReallocationProposed) || !committed.CanTransition(ReallocationReversed) {
		t.Fatal("committed may only be reversed")
	}
	if reversed.CanTransition(ReallocationCommitted) || reversed.CanTransition(ReallocationReversed) {
		t.Fatal("reversed is terminal")
	}
}

func TestReallocationEffectiveAt(t *testing.T) {
	committedAt := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	reversedAt := committedAt.Add(48 * time.Hour)
	realloc := Reallocation{Status: ReallocationReversed, CommittedAt: &committedAt, ReversedAt: &reversedAt}

	if realloc.EffectiveAt(committedAt.Add(-time.Second)) {
		t.Fatal("not effective before commit")
	}
	if !realloc.EffectiveAt(committedAt) || !realloc.EffectiveAt(reversedAt.Add(-time.Second)) {
		t.Fatal("effective between commit and reversal")
	}
	if realloc.EffectiveAt(reversedAt) {
		t.Fatal("not effective from the reversal instant")
	}
	if (Reallocation{Status: ReallocationProposed}).EffectiveAt(committedAt) {
		t.Fatal("proposals never move capacity")
	}
}

func TestSiteEligibility(t *testing.T) {
	cases := map[OperatorType]bool{
		OperatorPrivate:          true,
		OperatorReturnToRetail:   true,
		OperatorOther:            true,
		OperatorMunicipal:        false,
		OperatorFirstNation:      false,
		OperatorRegionalDistrict: false,
		OperatorEvent:            false,
	}
	for operator, want := range cases {
		if got := (Site{OperatorType: operator}).ReallocationEligible(); got != want {
			t.Fatalf("%s: expected eligible=%v, got %v", operator, want, got)
		}
	}
	if (Site{OperatorType: OperatorPrivate, SiteType: "Event"}).ReallocationEligible() {
		t.Fatal("event site type must be excluded whatever the operator")
	}
	if ParseOperatorType("First Nations") != OperatorFirstNation || ParseOperatorType("RTR") != OperatorReturnToRetail {
		t.Fatal("operator labels not normalized")
	}
}
