package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	complianceengine "sitecompliance/contexts/site-compliance/compliance-engine"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/seed"
	compliancehttp "sitecompliance/contexts/site-compliance/compliance-engine/transport/http"
)

const testJurisdiction = `
municipalities:
  - {id: north, name: Northvale, population: 45000}
  - {id: south, name: Southport, population: 60000}
  - {id: east, name: Eastbrook, population: 30000}
sites:
  - {id: n1, municipality: north, operator_type: private}
  - {id: n2, municipality: north, operator_type: return_to_retail}
  - {id: n3, municipality: north, operator_type: private}
  - {id: n4, municipality: north, operator_type: municipal}
  - {id: n5, municipality: north, operator_type: private}
  - {id: s1, municipality: south, operator_type: private}
  - {id: e1, municipality: east, operator_type: private}
  - {id: e2, municipality: east, operator_type: private}
adjacency:
  north: [south, east]
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	module := complianceengine.NewInMemoryModule(nil)
	module.Store.SetClock(func() time.Time {
		return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	})
	jurisdiction, err := seed.Parse(strings.NewReader(testJurisdiction))
	if err != nil {
		t.Fatalf("parse jurisdiction: %v", err)
	}
	if err := seed.Apply(context.Background(), module.Store, jurisdiction); err != nil {
		t.Fatalf("seed jurisdiction: %v", err)
	}
	return New(module, nil, "")
}

func doJSON(t *testing.T, server *Server, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func TestComplianceRequirementEndpoint(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/compliance/v1/requirements?population=500001", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp compliancehttp.RequirementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.BaseRequirement != 35 || resp.Data.Tier != "urban" {
		t.Fatalf("expected 35 urban sites, got %+v", resp.Data)
	}
}

func TestComplianceRequirementRejectsNegativePopulation(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/compliance/v1/requirements?population=-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/requirements?population=lots", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestComplianceEvaluateUnknownMunicipality(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/compliance/v1/municipalities/nowhere/compliance", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestComplianceReportCoversEveryMunicipality(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/compliance/v1/compliance?as_of=2026-06-15", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp compliancehttp.ComplianceReportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Data))
	}
	byID := map[string]compliancehttp.ComplianceResultDTO{}
	for _, item := range resp.Data {
		byID[item.MunicipalityID] = item
	}
	if byID["north"].Status != "excess" || byID["north"].Excess != 2 {
		t.Fatalf("unexpected north result: %+v", byID["north"])
	}
	if byID["south"].Status != "shortfall" || byID["south"].Shortfall != 3 {
		t.Fatalf("unexpected south result: %+v", byID["south"])
	}
	if byID["east"].Status != "compliant" {
		t.Fatalf("unexpected east result: %+v", byID["east"])
	}
}

func TestComplianceApplyOffsetAndDuplicateYear(t *testing.T) {
	server := newTestServer(t)

	body := `{"municipality_id":"south","percentage":"25","annual_pickup_volume":1200,"effective_date":"2026-01-01"}`
	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/offsets", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created compliancehttp.OffsetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Status != "active" {
		t.Fatalf("expected active offset, got %+v", created.Data)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/compliance/v1/offsets", body)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second offset in the year, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/municipalities/south/compliance", "")
	var result compliancehttp.ComplianceResultResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Data.OffsetSitesReduced != 1 || result.Data.AdjustedRequirement != 3 {
		t.Fatalf("expected 25%% of 4 to reduce one site, got %+v", result.Data)
	}
}

func TestComplianceApplyOffsetRejectsOutOfRangePercentage(t *testing.T) {
	server := newTestServer(t)

	for _, percentage := range []string{`"100.5"`, `"-1"`, `"abc"`} {
		body := `{"municipality_id":"south","percentage":` + percentage + `,"annual_pickup_volume":10}`
		rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/offsets", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("percentage %s: expected 400, got %d body=%s", percentage, rr.Code, rr.Body.String())
		}
	}
}

func TestComplianceReallocationLifecycle(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations",
		`{"donor_id":"north","recipient_id":"south","quantity":2,"reason":"shared depot"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var proposed compliancehttp.ReallocationOutcomeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &proposed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := proposed.Data.Reallocation.ReallocationID
	if proposed.Data.Reallocation.Status != "proposed" || len(proposed.Data.Reallocation.IncludedSiteIDs) != 2 {
		t.Fatalf("unexpected proposal: %+v", proposed.Data.Reallocation)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations/"+id+"/commit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on commit, got %d body=%s", rr.Code, rr.Body.String())
	}
	var committed compliancehttp.ReallocationOutcomeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &committed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if committed.Data.Donor.Status != "compliant" || committed.Data.Recipient.Shortfall != 1 {
		t.Fatalf("unexpected post-commit state: donor=%+v recipient=%+v", committed.Data.Donor, committed.Data.Recipient)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations/"+id+"/commit", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second commit, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations/"+id+"/reverse", `{"reason":"entered in error"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on reverse, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/reallocations?municipality_id=south&status=reversed", "")
	var listed compliancehttp.ReallocationListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].ReversalReason != "entered in error" {
		t.Fatalf("expected the reversed record to be kept, got %+v", listed.Data)
	}
}

func TestComplianceReallocationRejections(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations",
		`{"donor_id":"south","recipient_id":"east","quantity":1}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-adjacent pair, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/compliance/v1/reallocations",
		`{"donor_id":"north","recipient_id":"south","quantity":3}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when quantity exceeds excess, got %d body=%s", rr.Code, rr.Body.String())
	}
	var errResp compliancehttp.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Available == nil || *errResp.Available != 2 {
		t.Fatalf("expected available=2 in rejection, got %+v", errResp)
	}
}

func TestComplianceEventCreditWindow(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/events",
		`{"municipality_id":"south","description":"spring roundup","credit":5,"valid_from":"2026-06-01","valid_to":"2026-06-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/municipalities/south/compliance?as_of=2026-06-10T23:00:00Z", "")
	var inWindow compliancehttp.ComplianceResultResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &inWindow); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inWindow.Data.EventCreditApplied != 3 || inWindow.Data.Status != "compliant" {
		t.Fatalf("expected credit capped at shortfall, got %+v", inWindow.Data)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/municipalities/south/compliance?as_of=2026-06-11", "")
	var after compliancehttp.ComplianceResultResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.Data.EventCreditApplied != 0 || after.Data.Shortfall != 3 {
		t.Fatalf("expected no credit the day after the window, got %+v", after.Data)
	}
}

func TestComplianceRejectsMalformedBody(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/events", `{"credit":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestComplianceSnapshotsSurviveCensusRefresh(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/compliance/v1/snapshots", `{"label":"q2"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPut, "/api/compliance/v1/municipalities/east/census", `{"population":90000,"census_year":2026}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/compliance/v1/snapshots?municipality_id=east", "")
	var snapshots compliancehttp.SnapshotListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &snapshots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snapshots.Data) != 1 || snapshots.Data[0].Result.Requirement.Population != 30000 {
		t.Fatalf("expected snapshot to keep the old population, got %+v", snapshots.Data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
