package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/advisor"
	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
	"github.com/warp/budget-engine/session"
)

// stubAdvisor returns canned proposals or a fixed error.
type stubAdvisor struct {
	proposal *advisor.AllocationProposal
	plan     *advisor.EmergencyPlan
	err      error
}

func (s *stubAdvisor) ProposeAllocations(context.Context, advisor.AllocationInput) (*advisor.AllocationProposal, error) {
	return s.proposal, s.err
}

func (s *stubAdvisor) ProposeEmergencyPlan(context.Context, advisor.EmergencyInput) (*advisor.EmergencyPlan, error) {
	return s.plan, s.err
}

func newServer(t *testing.T, adv advisor.Advisor) *httptest.Server {
	t.Helper()
	clock := budget.FixedClock{Date: budget.NewDate(2025, time.April, 15)}
	sessions := session.New(store.NewMemory(), clock, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(sessions, clock, adv, zerolog.Nop())))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) api.SnapshotDTO {
	t.Helper()
	var snap api.SnapshotDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func TestGetBudget_SeedsAndReturnsSnapshot(t *testing.T) {
	srv := newServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/budget", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, resp)
	assert.Equal(t, float64(2000), snap.Document.MonthlyIncome)
	assert.Contains(t, snap.Document.Categories, "Food")
	// Both seeded bills are due on the 1st and already posted by the 15th.
	assert.Equal(t, float64(950), snap.Metrics.Bills)
	assert.Len(t, snap.Document.Transactions, 2)
}

func TestLogExpense_AcceptedAndReflectedInMetrics(t *testing.T) {
	srv := newServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/transactions", api.LogExpenseRequest{
		Category: "Food", Amount: 40, Description: "groceries",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, resp)
	assert.Equal(t, float64(40), snap.Metrics.RealSpent["Food"])
}

func TestLogExpense_RejectionShape(t *testing.T) {
	// GIVEN: Food allocated 300
	// WHEN: Spending 301
	// THEN: 422 with the rule code and the allocation as the limit

	srv := newServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/transactions", api.LogExpenseRequest{
		Category: "Food", Amount: 301,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "expense", body.Code)
	require.NotNil(t, body.Limit)
	assert.Equal(t, float64(300), *body.Limit)
}

func TestDeleteCategory_ErrorMapping(t *testing.T) {
	srv := newServer(t, nil)

	resp := do(t, http.MethodDelete, srv.URL+"/api/categories/Food", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/categories/Nothing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsersAreIsolatedByHeader(t *testing.T) {
	srv := newServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/transactions",
		bytes.NewBufferString(`{"category":"Food","amount":50}`))
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The default user never sees alice's spending.
	other := do(t, http.MethodGet, srv.URL+"/api/budget", nil)
	snap := decodeSnapshot(t, other)
	assert.Equal(t, float64(0), snap.Metrics.RealSpent["Food"])
}

func TestAdvisor_UnconfiguredAndFailing(t *testing.T) {
	srv := newServer(t, nil)
	resp := do(t, http.MethodPost, srv.URL+"/api/advisor/allocations", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	failing := newServer(t, &stubAdvisor{err: errors.New("model unreachable")})
	resp = do(t, http.MethodPost, failing.URL+"/api/advisor/allocations", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAdvisor_ProposeAndApply(t *testing.T) {
	srv := newServer(t, &stubAdvisor{
		proposal: &advisor.AllocationProposal{
			Allocations: map[string]decimal.Decimal{
				"Food": decimal.NewFromInt(250),
				"Fuel": decimal.NewFromInt(120),
			},
			Advice: "Trim fuel, you drive less than you budget.",
			Score:  0.8,
		},
	})

	resp := do(t, http.MethodPost, srv.URL+"/api/advisor/allocations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var proposal advisor.AllocationProposal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&proposal))
	require.NotNil(t, proposal.Allocations)

	apply := do(t, http.MethodPost, srv.URL+"/api/advisor/allocations/apply", api.ApplyAllocationsRequest{
		Allocations: map[string]float64{"Food": 250, "Fuel": 120},
	})
	require.Equal(t, http.StatusOK, apply.StatusCode)
	snap := decodeSnapshot(t, apply)
	assert.Equal(t, float64(250), snap.Document.BaseAllocations["Food"])
	assert.Equal(t, float64(120), snap.Document.BaseAllocations["Fuel"])
}
