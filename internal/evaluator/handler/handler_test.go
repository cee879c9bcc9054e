package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

type fakeSnapshots struct {
	rankings map[string][]string
}

func (f *fakeSnapshots) Ranking(ctx context.Context, variant, query string) ([]string, error) {
	if docs, ok := f.rankings[variant+"/"+query]; ok {
		return docs, nil
	}
	return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, http.StatusNotFound,
		"no snapshot for variant %q and query %q", variant, query)
}

func (f *fakeSnapshots) Variants(ctx context.Context, query string) ([]string, error) {
	var variants []string
	for key := range f.rankings {
		if parts := strings.SplitN(key, "/", 2); len(parts) == 2 && parts[1] == query {
			variants = append(variants, parts[0])
		}
	}
	sort.Strings(variants)
	return variants, nil
}

func testHandler(snapshots SnapshotSource) *Handler {
	eval := evaluator.New(config.EvaluatorConfig{})
	return New(eval, nil, nil, snapshots, nil, false)
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) evaluator.Result {
	t.Helper()
	var result evaluator.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return result
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return body["error"]
}

func TestCompare(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare",
		strings.NewReader(`{"s": ["a", "b", "c"], "t": ["a", "b", "c"]}`))
	rec := httptest.NewRecorder()
	h.Compare(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if result.Measure != evaluator.MeasureRBO {
		t.Errorf("Measure = %q, want rbo", result.Measure)
	}
	if result.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", result.Score)
	}
	if result.Common != 3 {
		t.Errorf("Common = %d, want 3", result.Common)
	}
}

func TestCompareInvalidBody(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.Compare(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "invalid JSON body" {
		t.Errorf("error = %q", msg)
	}
}

func TestCompareDuplicateItems(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare",
		strings.NewReader(`{"s": ["a", "a"], "t": ["a", "b"]}`))
	rec := httptest.NewRecorder()
	h.Compare(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestCompareInsufficientOverlap(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare",
		strings.NewReader(`{"s": ["a", "b"], "t": ["x", "y"], "measure": "kendall"}`))
	rec := httptest.NewRecorder()
	h.Compare(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestCompareSnapshots(t *testing.T) {
	snapshots := &fakeSnapshots{rankings: map[string][]string{
		"control/espresso":   {"d1", "d2", "d3"},
		"treatment/espresso": {"d3", "d2", "d1"},
	}}
	h := testHandler(snapshots)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/compare/snapshots?query=espresso&baseline=control&candidate=treatment&measure=rbo_ext&persistence=0.9", nil)
	rec := httptest.NewRecorder()
	h.CompareSnapshots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if result.Measure != evaluator.MeasureRBOExt {
		t.Errorf("Measure = %q, want rbo_ext", result.Measure)
	}
	if result.Persistence != 0.9 {
		t.Errorf("Persistence = %v, want 0.9", result.Persistence)
	}
	if result.SLength != 3 || result.TLength != 3 {
		t.Errorf("lengths = %d/%d, want 3/3", result.SLength, result.TLength)
	}
	if result.Score <= 0 || result.Score >= 1 {
		t.Errorf("Score = %v, want a value strictly between 0 and 1 for reversed lists", result.Score)
	}
}

func TestCompareSnapshotsMissingParams(t *testing.T) {
	h := testHandler(&fakeSnapshots{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compare/snapshots?query=espresso", nil)
	rec := httptest.NewRecorder()
	h.CompareSnapshots(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCompareSnapshotsNotFound(t *testing.T) {
	h := testHandler(&fakeSnapshots{rankings: map[string][]string{}})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/compare/snapshots?query=espresso&baseline=control&candidate=treatment", nil)
	rec := httptest.NewRecorder()
	h.CompareSnapshots(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestCompareSnapshotsUnconfigured(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/compare/snapshots?query=q&baseline=a&candidate=b", nil)
	rec := httptest.NewRecorder()
	h.CompareSnapshots(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSnapshotVariants(t *testing.T) {
	snapshots := &fakeSnapshots{rankings: map[string][]string{
		"control/espresso":   {"d1"},
		"treatment/espresso": {"d2"},
		"control/kettle":     {"d3"},
	}}
	h := testHandler(snapshots)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/variants?query=espresso", nil)
	rec := httptest.NewRecorder()
	h.SnapshotVariants(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Query    string   `json:"query"`
		Variants []string `json:"variants"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Query != "espresso" {
		t.Errorf("query = %q", body.Query)
	}
	if len(body.Variants) != 2 || body.Variants[0] != "control" || body.Variants[1] != "treatment" {
		t.Errorf("variants = %v, want [control treatment]", body.Variants)
	}
}

func TestSnapshotVariantsMissingQuery(t *testing.T) {
	h := testHandler(&fakeSnapshots{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/variants", nil)
	rec := httptest.NewRecorder()
	h.SnapshotVariants(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCacheEndpointsUnconfigured(t *testing.T) {
	h := testHandler(nil)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheStats status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}

func TestReasonLabel(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{apperrors.ErrDuplicateItem, "duplicate_item"},
		{apperrors.ErrInsufficientOverlap, "insufficient_overlap"},
		{apperrors.ErrSnapshotNotFound, "snapshot_not_found"},
		{context.DeadlineExceeded, "internal"},
	}
	for _, tc := range cases {
		if got := reasonLabel(tc.err); got != tc.want {
			t.Errorf("reasonLabel(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
