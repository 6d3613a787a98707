package handlers

import (
	"net/http"

	"gametracker/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsHandler summarizes the library
type StatsHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(db *gorm.DB, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{db: db, logger: logger}
}

type genreCount struct {
	Genre models.Genre `json:"genre"`
	Total int64        `json:"total"`
}

// GetStats returns library totals, per-genre counts and the latest reviews
func (h *StatsHandler) GetStats(c *gin.Context) {
	var stats models.LibraryStats

	if err := h.db.Model(&models.Game{}).Count(&stats.TotalGames).Error; err != nil {
		h.fail(c, err)
		return
	}
	if err := h.db.Model(&models.Game{}).Where("completed = ?", true).Count(&stats.CompletedGames).Error; err != nil {
		h.fail(c, err)
		return
	}
	if err := h.db.Model(&models.Review{}).Count(&stats.TotalReviews).Error; err != nil {
		h.fail(c, err)
		return
	}

	var avg struct{ Score *float64 }
	if err := h.db.Model(&models.Review{}).Select("AVG(score) AS score").Scan(&avg).Error; err != nil {
		h.fail(c, err)
		return
	}
	if avg.Score != nil {
		stats.AverageScore = *avg.Score
	}

	var genres []genreCount
	if err := h.db.Model(&models.Game{}).
		Select("genre, COUNT(*) AS total").
		Group("genre").
		Order("total DESC, genre ASC").
		Scan(&genres).Error; err != nil {
		h.fail(c, err)
		return
	}
	stats.ByGenre = make(map[models.Genre]int64, len(genres))
	for _, g := range genres {
		stats.ByGenre[g.Genre] = g.Total
	}

	stats.RecentReviews = []models.Review{}
	if err := h.db.Order("created_at DESC").Limit(models.RecentReviewsLimit).Find(&stats.RecentReviews).Error; err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) fail(c *gin.Context, err error) {
	h.logger.Error("load stats failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
}
