// controller/admin_controller_test.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/tokengate/audit"
	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

type stubAuditService struct {
	logs    []audit.DecisionLog
	gotFrom time.Time
	gotTo   time.Time
	gotUser string
}

func (s *stubAuditService) LogDecision(ctx context.Context, log audit.DecisionLog) error {
	return nil
}

func (s *stubAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID string) ([]audit.DecisionLog, error) {
	s.gotFrom, s.gotTo, s.gotUser = from, to, userID
	return s.logs, nil
}

func newAdminTest(svc *stubMembershipService, auditSvc audit.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAdminController(svc, auditSvc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAdminGetUser(t *testing.T) {
	svc := newStubMembershipService()
	svc.users["42"] = &model.UserRecord{ID: "42", Wallet: validWallet, Name: "Alice"}
	r := newAdminTest(svc, nil)

	w := get(r, "/api/v1/users/42")
	require.Equal(t, http.StatusOK, w.Code)

	var user model.UserRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, validWallet, user.Wallet)
}

func TestAdminGetUserNotFound(t *testing.T) {
	r := newAdminTest(newStubMembershipService(), nil)

	w := get(r, "/api/v1/users/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCheckUser(t *testing.T) {
	svc := newStubMembershipService()
	svc.decision = &model.AccessDecision{Granted: true, Balance: 75000, HasBalance: true}
	r := newAdminTest(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/users/42/check", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var decision model.AccessDecision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.True(t, decision.Granted)
}

func TestAdminCheckUserNoWallet(t *testing.T) {
	svc := newStubMembershipService()
	svc.checkErr = gate_errors.ErrNoWalletRegistered
	r := newAdminTest(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/users/42/check", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCheckUserZeroBalanceInBody(t *testing.T) {
	svc := newStubMembershipService()
	svc.decision = &model.AccessDecision{Balance: 0, HasBalance: true, Shortfall: 50000,
		Rationale: "balance 0.00 below minimum 50000.00, missing 50000.00"}
	r := newAdminTest(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/users/42/check", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0`)
}

func TestAdminQueryAudit(t *testing.T) {
	auditSvc := &stubAuditService{logs: []audit.DecisionLog{
		{UserID: "42", Trigger: model.TriggerVerify, Granted: true, Balance: 75000},
	}}
	r := newAdminTest(newStubMembershipService(), auditSvc)

	w := get(r, "/api/v1/audit?from=2026-08-01T00:00:00Z&to=2026-08-31T00:00:00Z&user=42")
	require.Equal(t, http.StatusOK, w.Code)

	var logs []audit.DecisionLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "42", logs[0].UserID)

	assert.Equal(t, "42", auditSvc.gotUser)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), auditSvc.gotFrom.UTC())
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), auditSvc.gotTo.UTC())
}

func TestAdminQueryAuditBadTimestamp(t *testing.T) {
	r := newAdminTest(newStubMembershipService(), &stubAuditService{})

	w := get(r, "/api/v1/audit?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminQueryAuditUnconfigured(t *testing.T) {
	r := newAdminTest(newStubMembershipService(), nil)

	w := get(r, "/api/v1/audit")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newAdminTest(newStubMembershipService(), nil)
	w := get(r, "/api/v1/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
