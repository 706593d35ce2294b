package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService services.CampaignService
	recalcService   services.RecalculationService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService services.CampaignService, recalcService services.RecalculationService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		recalcService:   recalcService,
	}
}

// currentUserID extracts the authenticated user's ObjectID from the gin
// context populated by the JWT middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return primitive.NilObjectID, false
	}
	hex, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateCampaignRequest is the payload for POST /campaigns
type CreateCampaignRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Prize       string             `json:"prize"`
	UserID      string             `json:"userId" binding:"required"`
	Type        string             `json:"type" binding:"required"` // QUANTITY or VALUE
	Target      float64            `json:"target"`
	Criteria    []models.Criterion `json:"criteria"`
	StartDate   string             `json:"startDate" binding:"required"`
	EndDate     string             `json:"endDate" binding:"required"`
}

// CreateCampaign handles POST /campaigns (admin)
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId format"})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format (YYYY-MM-DD)"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format (YYYY-MM-DD)"})
		return
	}
	if req.Type != string(models.CampaignTypeQuantity) && req.Type != string(models.CampaignTypeValue) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign type (QUANTITY or VALUE)"})
		return
	}

	campaign := &models.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Prize:       req.Prize,
		UserID:      userID,
		Type:        models.CampaignType(req.Type),
		Target:      req.Target,
		Criteria:    req.Criteria,
		StartDate:   startDate,
		EndDate:     endDate,
	}
	if err := h.campaignService.CreateCampaign(c.Request.Context(), campaign); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create campaign: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// GetCampaigns handles GET /campaigns
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}
	filter := models.CampaignFilter{
		Status:           models.CampaignStatus(c.Query("status")),
		AcceptanceStatus: models.AcceptanceStatus(c.Query("acceptance")),
	}
	campaigns, err := h.campaignService.GetCampaignsForUser(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve campaigns: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// GetCampaignByID handles GET /campaigns/:id
func (h *CampaignHandler) GetCampaignByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve campaign: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// AcceptCampaign handles POST /campaigns/:id/accept
func (h *CampaignHandler) AcceptCampaign(c *gin.Context) {
	h.decideAcceptance(c, true)
}

// RejectCampaign handles POST /campaigns/:id/reject
func (h *CampaignHandler) RejectCampaign(c *gin.Context) {
	h.decideAcceptance(c, false)
}

func (h *CampaignHandler) decideAcceptance(c *gin.Context, accept bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	var campaign *models.Campaign
	if accept {
		campaign, err = h.campaignService.AcceptCampaign(c.Request.Context(), id, userID)
	} else {
		campaign, err = h.campaignService.RejectCampaign(c.Request.Context(), id, userID)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCampaignNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		case errors.Is(err, services.ErrAcceptanceDecided):
			c.JSON(http.StatusConflict, gin.H{"error": "Campaign acceptance has already been decided"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// GetProgress handles GET /campaigns/:id/progress
func (h *CampaignHandler) GetProgress(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	progress, err := h.campaignService.GetProgress(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate progress: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Recalculate handles POST /campaigns/:id/recalculate
func (h *CampaignHandler) Recalculate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	result, err := h.recalcService.Recalculate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecalculateAll handles POST /admin/campaigns/recalculate. An optional
// userId query narrows the batch to one broker's campaigns.
func (h *CampaignHandler) RecalculateAll(c *gin.Context) {
	var userID *primitive.ObjectID
	if hex := c.Query("userId"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId format"})
			return
		}
		userID = &id
	}
	summary, err := h.recalcService.RecalculateAll(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch recalculation failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteCampaign handles DELETE /campaigns/:id (admin)
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	if err := h.campaignService.DeleteCampaign(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete campaign: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
}
