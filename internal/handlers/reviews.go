package handlers

import (
	"errors"
	"net/http"

	"gametracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewHandler handles review-related requests
type ReviewHandler struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(db *gorm.DB, validate *validator.Validate, logger *zap.Logger) *ReviewHandler {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{db: db, validate: validate, logger: logger}
}

// GetReviewsByGame returns all reviews for a game, newest first
func (h *ReviewHandler) GetReviewsByGame(c *gin.Context) {
	gameID := c.Param("game_id")

	reviews := []models.Review{}
	if err := h.db.Where("game_id = ?", gameID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		h.logger.Error("list reviews failed", zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReview attaches a new review to a game
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := models.Validate(h.validate, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Verify game exists
	var game models.Game
	if err := h.db.First(&game, "id = ?", req.GameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch game"})
		return
	}

	review := models.Review{GameID: game.ID}
	req.Apply(&review)

	if err := h.db.Create(&review).Error; err != nil {
		h.logger.Error("create review failed", zap.String("game_id", game.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

// UpdateReview replaces the mutable fields of a review
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	review, ok := h.findReview(c, c.Param("id"))
	if !ok {
		return
	}

	var req models.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := models.Validate(h.validate, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Apply(&review)
	if err := h.db.Model(&review).Select("*").Omit("created_at", "game_id").Updates(&review).Error; err != nil {
		h.logger.Error("update review failed", zap.String("review_id", review.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview removes a review
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	review, ok := h.findReview(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.db.Delete(&review).Error; err != nil {
		h.logger.Error("delete review failed", zap.String("review_id", review.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

func (h *ReviewHandler) findReview(c *gin.Context, id string) (models.Review, bool) {
	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		} else {
			h.logger.Error("load review failed", zap.String("review_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch review"})
		}
		return review, false
	}
	return review, true
}
