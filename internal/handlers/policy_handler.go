package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PolicyHandler handles policy-related HTTP requests
type PolicyHandler struct {
	policyService services.PolicyService
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(policyService services.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
	}
}

// RegisterPolicyRequest is the payload for POST /policies
type RegisterPolicyRequest struct {
	PolicyNumber string  `json:"policyNumber" binding:"required"`
	PolicyType   string  `json:"policyType" binding:"required"`
	ContractType string  `json:"contractType"`
	PremiumValue float64 `json:"premiumValue" binding:"required"`
	InsuredName  string  `json:"insuredName"`
	IssuedAt     string  `json:"issuedAt"`
}

// RegisterPolicy handles POST /policies. The policy is stored, linked to
// the broker's open campaigns and their progress is recalculated.
func (h *PolicyHandler) RegisterPolicy(c *gin.Context) {
	var req RegisterPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	policy := &models.Policy{
		UserID:       userID,
		PolicyNumber: req.PolicyNumber,
		PolicyType:   models.PolicyType(req.PolicyType),
		ContractType: models.ContractType(req.ContractType),
		PremiumValue: req.PremiumValue,
		InsuredName:  req.InsuredName,
	}
	if req.IssuedAt != "" {
		issuedAt, err := time.Parse("2006-01-02", req.IssuedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issuedAt format (YYYY-MM-DD)"})
			return
		}
		policy.IssuedAt = issuedAt
	}

	created, err := h.policyService.RegisterPolicy(c.Request.Context(), policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to register policy: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetPolicies handles GET /policies
func (h *PolicyHandler) GetPolicies(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	policies, err := h.policyService.GetPoliciesForUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve policies: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, policies)
}

// UnlinkPolicy handles DELETE /campaigns/:id/links/:linkId
func (h *PolicyHandler) UnlinkPolicy(c *gin.Context) {
	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID format"})
		return
	}
	linkID, err := primitive.ObjectIDFromHex(c.Param("linkId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID format"})
		return
	}
	if err := h.policyService.UnlinkPolicy(c.Request.Context(), linkID, campaignID); err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Policy link not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlink policy: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Policy unlinked"})
}
