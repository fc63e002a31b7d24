package api

import (
	"context"
	"errors"
	"net/http"

	"nightgate/internal/domain/scan"
	reqdto "nightgate/internal/handler/dto/request"
	resdto "nightgate/internal/handler/dto/response"
	"nightgate/internal/handler/httperr"
	"nightgate/internal/handler/middleware"
	"nightgate/internal/monitoring"
	"nightgate/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// ManualLimiter throttles manual credential entry. Satisfied by
// middleware.ManualEntryLimiter.
type ManualLimiter interface {
	Allow(ctx context.Context, deviceID string) (bool, error)
}

type ScanHandler struct {
	scanUseCase commands.ScanCommands
	limiter     ManualLimiter
}

func NewScanHandler(scanUseCase commands.ScanCommands, limiter ManualLimiter) *ScanHandler {
	return &ScanHandler{
		scanUseCase: scanUseCase,
		limiter:     limiter,
	}
}

// Verify decides a scan. Business rejections are 200 with success=false so
// gate devices always get a verdict to display; non-200 means no verdict.
func (h *ScanHandler) Verify(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.VerifyScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	method := scan.Method(req.Method)
	if !method.IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Unknown scan method", nil)
		return
	}

	if method == scan.MethodManual && !h.allowManualEntry(c, deviceID) {
		return
	}

	result, err := h.scanUseCase.Verify(c.Request.Context(), commands.VerifyScanParams{
		Credential: req.Credential,
		Method:     method,
		DeviceID:   deviceID,
		EventID:    req.EventID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidScanMethod):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Unknown scan method", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	monitoring.RecordScan(method.String(), scanOutcome(result.Accepted, result.Reason), result.ReEntry)
	c.JSON(http.StatusOK, resdto.FromVerifyScanResult(result))
}

func (h *ScanHandler) CheckInGuestPass(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.GuestPassCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	method := scan.Method(req.Method)
	if !method.IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Unknown scan method", nil)
		return
	}

	if method == scan.MethodManual && !h.allowManualEntry(c, deviceID) {
		return
	}

	result, err := h.scanUseCase.CheckInGuestPass(c.Request.Context(), commands.GuestPassCheckInParams{
		Credential: req.Credential,
		Method:     method,
		DeviceID:   deviceID,
		EventID:    req.EventID,
	})
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	monitoring.RecordScan(method.String(), scanOutcome(result.Accepted, result.Reason), result.ReEntry)
	c.JSON(http.StatusOK, resdto.FromGuestPassCheckInResult(result))
}

func (h *ScanHandler) allowManualEntry(c *gin.Context, deviceID string) bool {
	allowed, err := h.limiter.Allow(c.Request.Context(), deviceID)
	if err != nil {
		// Redis down must not close the door; let the entry through.
		return true
	}
	if !allowed {
		httperr.AbortWithError(c, http.StatusTooManyRequests, nil, "Too many manual entries, wait a minute", nil)
		return false
	}
	return true
}

func scanOutcome(accepted bool, reason scan.Reason) string {
	if accepted {
		return "accepted"
	}
	return reason.String()
}
