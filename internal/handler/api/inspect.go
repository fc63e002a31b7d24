package api

import (
	"net/http"
	"strconv"

	resdto "nightgate/internal/handler/dto/response"
	"nightgate/internal/handler/httperr"
	"nightgate/internal/infra"
	"nightgate/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InspectHandler struct {
	inspection queries.InspectionQueries
}

func NewInspectHandler(inspection queries.InspectionQueries) *InspectHandler {
	return &InspectHandler{inspection: inspection}
}

func (h *InspectHandler) RecentScans(c *gin.Context) {
	views, err := h.inspection.RecentScans(c.Request.Context(), parseLimit(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.ScanAuditResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromScanAuditView(v)
	}
	c.JSON(http.StatusOK, response)
}

func (h *InspectHandler) RecentEmailJobs(c *gin.Context) {
	views, err := h.inspection.RecentEmailJobs(c.Request.Context(), parseLimit(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.EmailJobResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromEmailJobView(v)
	}
	c.JSON(http.StatusOK, response)
}

func (h *InspectHandler) EmailJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid job ID format", nil)
		return
	}

	view, err := h.inspection.EmailJob(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Email job not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromEmailJobView(view))
}

// EventSnapshot feeds gate devices the admissible-credential set they cache
// for offline operation.
func (h *InspectHandler) EventSnapshot(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid event ID format", nil)
		return
	}

	views, err := h.inspection.EventSnapshot(c.Request.Context(), eventID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.SnapshotEntryResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromSnapshotEntry(v)
	}
	c.JSON(http.StatusOK, response)
}

func parseLimit(c *gin.Context) int32 {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 32)
	if err != nil {
		return 100
	}
	return int32(limit)
}
