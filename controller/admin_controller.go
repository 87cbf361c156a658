// controller/admin_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/tokengate/audit"
	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/model"
	"github.com/dev-mohitbeniwal/tokengate/service"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

// AdminController exposes read-only registry access, manual
// re-evaluation, and the decision audit trail for operators.
type AdminController struct {
	membershipService service.IMembershipService
	auditService      audit.Service
}

// NewAdminController creates the operator API. auditService may be nil
// when no audit backend is configured; the audit endpoint then reports
// itself unavailable.
func NewAdminController(membershipService service.IMembershipService, auditService audit.Service) *AdminController {
	return &AdminController{
		membershipService: membershipService,
		auditService:      auditService,
	}
}

// RegisterRoutes registers the admin API routes
func (ac *AdminController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", ac.ListUsers)
		users.GET("/:id", ac.GetUser)
		users.POST("/:id/check", ac.CheckUser)
	}
	r.GET("/audit", ac.QueryAudit)
	r.GET("/healthz", ac.Health)
}

// ListUsers endpoint
func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.membershipService.ListUsers(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser endpoint
func (ac *AdminController) GetUser(c *gin.Context) {
	user, err := ac.membershipService.GetUser(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to get user", err)
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// CheckUser endpoint re-evaluates one user on demand.
func (ac *AdminController) CheckUser(c *gin.Context) {
	decision, err := ac.membershipService.CheckBalance(c, c.Param("id"), model.TriggerManualCheck)
	if err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrNoWalletRegistered):
			util.RespondWithError(c, http.StatusNotFound, "No wallet registered", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to check user", gate_errors.ErrInternalServer)
		}
		return
	}
	c.JSON(http.StatusOK, decision)
}

// QueryAudit endpoint returns decision logs within a time range,
// optionally filtered by user. from/to are RFC 3339; from defaults to
// the zero time and to defaults to now.
func (ac *AdminController) QueryAudit(c *gin.Context) {
	if ac.auditService == nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "Audit trail not configured", gate_errors.ErrInternalServer)
		return
	}

	var from time.Time
	to := time.Now()
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
		to = parsed
	}

	logs, err := ac.auditService.QueryLogs(c, from, to, c.Query("user"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Health endpoint
func (ac *AdminController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
