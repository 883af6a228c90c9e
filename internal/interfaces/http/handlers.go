package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/application/service"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
	"github.com/lumenhr/bonus-approval/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	bonusService    service.BonusService
	approvalService service.ApprovalService
	bulkService     service.BulkService
	exportService   service.ExportService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	bonusService service.BonusService,
	approvalService service.ApprovalService,
	bulkService service.BulkService,
	exportService service.ExportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		bonusService:    bonusService,
		approvalService: approvalService,
		bulkService:     bulkService,
		exportService:   exportService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`

	// BlockingLevel is set on ordering-violation errors so the UI can
	// name the level that must act first.
	BlockingLevel int `json:"blocking_level,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EnterBonusRequest is the body of POST /api/employees/:id/bonus
type EnterBonusRequest struct {
	Amount float64 `json:"amount"`
}

// DecideRequest is the body of POST /api/employees/:id/decision
type DecideRequest struct {
	Level    int    `json:"level"`
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

// BulkApproveRequest is the body of POST /api/approvals/bulk
type BulkApproveRequest struct {
	Comments string `json:"comments"`
}

// EmployeeResponse represents an employee with its approval state
type EmployeeResponse struct {
	EmployeeID           string          `json:"employee_id"`
	FullName             string          `json:"full_name"`
	Bonus2024            float64         `json:"bonus_2024"`
	Bonus2025            float64         `json:"bonus_2025"`
	SupervisorID         string          `json:"supervisor_id"`
	SubmittedForApproval bool            `json:"submitted_for_approval"`
	SubmittedAt          *string         `json:"submitted_at,omitempty"`
	Levels               []LevelResponse `json:"levels"`
}

// LevelResponse represents one approval level in API responses
type LevelResponse struct {
	Level      int     `json:"level"`
	ApproverID string  `json:"approver_id,omitempty"`
	Status     string  `json:"status"`
	ApprovedBy string  `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	Comments   string  `json:"comments,omitempty"`
}

// QueueResponse represents one level's approval queue
type QueueResponse struct {
	Level     int                `json:"level"`
	Employees []EmployeeResponse `json:"employees"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// EnterBonus handles POST /api/employees/:id/bonus
func (h *Handlers) EnterBonus(c *gin.Context) {
	var req EnterBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	if err := utils.ValidateEmployeeID(c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if err := utils.ValidateBonusAmount(req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	caller := callerFrom(c)
	rec, err := h.bonusService.EnterBonus(c.Request.Context(), c.Param("id"), caller.EmployeeID, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toEmployeeResponse(rec)})
}

// SubmitForApproval handles POST /api/approvals/submit
func (h *Handlers) SubmitForApproval(c *gin.Context) {
	caller := callerFrom(c)
	count, err := h.bonusService.SubmitForApproval(c.Request.Context(), caller.EmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"count": count}})
}

// Decide handles POST /api/employees/:id/decision
func (h *Handlers) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	if err := utils.ValidateEmployeeID(c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	caller := callerFrom(c)
	rec, err := h.approvalService.Decide(
		c.Request.Context(),
		c.Param("id"),
		req.Level,
		caller.EmployeeID,
		approval.Action(req.Action),
		utils.SanitizeComment(req.Comments),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toEmployeeResponse(rec)})
}

// ListMyApprovals handles GET /api/approvals/mine
func (h *Handlers) ListMyApprovals(c *gin.Context) {
	caller := callerFrom(c)
	queues, err := h.approvalService.ListMyApprovals(c.Request.Context(), caller.EmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]QueueResponse, 0, len(queues))
	for _, q := range queues {
		qr := QueueResponse{Level: q.Level}
		for _, rec := range q.Employees {
			qr.Employees = append(qr.Employees, toEmployeeResponse(rec))
		}
		resp = append(resp, qr)
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// BulkApprove handles POST /api/approvals/bulk
func (h *Handlers) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	caller := callerFrom(c)
	result, err := h.bulkService.BulkApprove(c.Request.Context(), caller.EmployeeID, utils.SanitizeComment(req.Comments))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CheckCompletion handles GET /api/approvals/completion
func (h *Handlers) CheckCompletion(c *gin.Context) {
	report, err := h.approvalService.CheckAllApprovalsCompleted(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// ExportResults handles GET /api/export/results
func (h *Handlers) ExportResults(c *gin.Context) {
	caller := callerFrom(c)
	if caller.Role != entity.RoleHR && caller.Role != entity.RoleAdmin {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "export requires the hr role"})
		return
	}

	data, err := h.exportService.ExportResults(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("bonus_results_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// respondError maps domain error kinds to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	resp := Response{Success: false, Error: err.Error()}

	var status int
	switch {
	case errors.Is(err, approval.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, approval.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, approval.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, approval.ErrPreviousLevelPending):
		status = http.StatusConflict
		resp.BlockingLevel = approval.BlockingLevel(err)
	case errors.Is(err, approval.ErrNotSubmitted),
		errors.Is(err, approval.ErrBonusMissing),
		errors.Is(err, approval.ErrAlreadyProcessed),
		errors.Is(err, approval.ErrAlreadySubmitted),
		errors.Is(err, service.ErrApprovalsIncomplete):
		status = http.StatusConflict
	default:
		h.logger.Error("Unhandled error", "error", err)
		resp.Error = "internal error"
		status = http.StatusInternalServerError
	}

	c.JSON(status, resp)
}

// toEmployeeResponse converts a record to the API representation
func toEmployeeResponse(rec *port.EmployeeRecord) EmployeeResponse {
	emp, st := rec.Employee, rec.Status

	resp := EmployeeResponse{
		EmployeeID:           emp.EmployeeID,
		FullName:             emp.FullName,
		Bonus2024:            emp.Bonus2024,
		Bonus2025:            emp.Bonus2025,
		SupervisorID:         emp.SupervisorID,
		SubmittedForApproval: st.SubmittedForApproval,
	}
	if st.SubmittedAt != nil {
		s := st.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &s
	}

	for level := 1; level <= entity.NumApprovalLevels; level++ {
		d := st.Level(level)
		lr := LevelResponse{
			Level:      level,
			ApproverID: emp.ApproverAt(level),
			Status:     d.Status.String(),
			ApprovedBy: d.ApprovedBy,
			Comments:   d.Comments,
		}
		if d.ApprovedAt != nil {
			s := d.ApprovedAt.Format(time.RFC3339)
			lr.ApprovedAt = &s
		}
		resp.Levels = append(resp.Levels, lr)
	}

	return resp
}
