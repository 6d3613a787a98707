package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gametracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameHandler handles game-related requests
type GameHandler struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(db *gorm.DB, validate *validator.Validate, logger *zap.Logger) *GameHandler {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameHandler{db: db, validate: validate, logger: logger}
}

// ListGames returns every game in the catalog, newest first
func (h *GameHandler) ListGames(c *gin.Context) {
	games := []models.Game{}
	if err := h.db.Order("created_at DESC").Find(&games).Error; err != nil {
		h.logger.Error("list games failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch games"})
		return
	}

	c.JSON(http.StatusOK, games)
}

// GetGame returns a single game
func (h *GameHandler) GetGame(c *gin.Context) {
	game, ok := h.findGame(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, game)
}

// CreateGame adds a game to the catalog
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req models.GameInput
	if !h.bindGame(c, &req) {
		return
	}

	var game models.Game
	req.Apply(&game)

	if err := h.db.Create(&game).Error; err != nil {
		h.logger.Error("create game failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, game)
}

// UpdateGame replaces the editable fields of a game
func (h *GameHandler) UpdateGame(c *gin.Context) {
	game, ok := h.findGame(c, c.Param("id"))
	if !ok {
		return
	}

	var req models.GameInput
	if !h.bindGame(c, &req) {
		return
	}
	req.Apply(&game)

	// Select("*") so false/zero values such as completed=false are written.
	if err := h.db.Model(&game).Select("*").Omit("created_at", clause.Associations).Updates(&game).Error; err != nil {
		h.logger.Error("update game failed", zap.String("game_id", game.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update game"})
		return
	}

	c.JSON(http.StatusOK, game)
}

// DeleteGame removes a game together with its reviews
func (h *GameHandler) DeleteGame(c *gin.Context) {
	game, ok := h.findGame(c, c.Param("id"))
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&game).Error
	})
	if err != nil {
		h.logger.Error("delete game failed", zap.String("game_id", game.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
}

// SearchGames filters and sorts the catalog. Every provided parameter must
// match; omitted parameters impose nothing.
func (h *GameHandler) SearchGames(c *gin.Context) {
	filter, err := models.ParseSearchFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := h.db.Model(&models.Game{})
	if filter.Title != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(filter.Title))+"%")
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	desc := filter.Order == models.OrderDesc
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: string(filter.SortBy)}, Desc: desc})
	if filter.SortBy != models.SortByTitle {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "title"}, Desc: desc})
	}

	games := []models.Game{}
	if err := query.Find(&games).Error; err != nil {
		h.logger.Error("search games failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search games"})
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) findGame(c *gin.Context, id string) (models.Game, bool) {
	var game models.Game
	if err := h.db.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		} else {
			h.logger.Error("load game failed", zap.String("game_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch game"})
		}
		return game, false
	}
	return game, true
}

func (h *GameHandler) bindGame(c *gin.Context, req *models.GameInput) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Developer = strings.TrimSpace(req.Developer)
	req.CoverImage = strings.TrimSpace(req.CoverImage)

	if err := models.Validate(h.validate, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
