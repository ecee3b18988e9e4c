package handlers

import (
	"net/http"
	"strconv"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	Attribution *services.AttributionService
	Reporting   *services.ReportingService
}

func NewAffiliateHandler(attribution *services.AttributionService, reporting *services.ReportingService) *AffiliateHandler {
	return &AffiliateHandler{Attribution: attribution, Reporting: reporting}
}

type EnsureProfileRequest struct {
	UserId      uint   `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

// EnsureProfile returns the caller's affiliate profile, creating one with a
// fresh code on first use.
func (h *AffiliateHandler) EnsureProfile(c *gin.Context) {
	var req EnsureProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	profile, err := h.Attribution.EnsureProfile(req.UserId, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(profile, "Profile ready"))
}

// RecordClick tracks a landing through an affiliate link. It always returns
// 200; unknown codes are counted nowhere but never error.
func (h *AffiliateHandler) RecordClick(c *gin.Context) {
	h.Attribution.RecordClick(c.Param("code"))
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Click recorded"))
}

func (h *AffiliateHandler) GetSummary(c *gin.Context) {
	profile, err := h.Attribution.GetProfileByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Affiliate not found", nil, http.StatusNotFound))
		return
	}

	summary, err := h.Reporting.GetAffiliateSummary(profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(summary, "Summary fetched"))
}

func (h *AffiliateHandler) ListConversions(c *gin.Context) {
	profile, err := h.Attribution.GetProfileByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Affiliate not found", nil, http.StatusNotFound))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.Reporting.ListConversions(services.ConversionQueryDTO{
		AffiliateId: profile.ID,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
