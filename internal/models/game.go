package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genre is one of the fixed catalog genres
type Genre string

const (
	GenreAction       Genre = "Action"
	GenreRPG          Genre = "RPG"
	GenreAdventure    Genre = "Adventure"
	GenreSports       Genre = "Sports"
	GenreRoguelike    Genre = "Roguelike"
	GenreShooter      Genre = "Shooter"
	GenreMetroidvania Genre = "Metroidvania"
	GenreHorror       Genre = "Horror"
)

// Genres lists every genre in display order
var Genres = []Genre{
	GenreAction, GenreRPG, GenreAdventure, GenreSports,
	GenreRoguelike, GenreShooter, GenreMetroidvania, GenreHorror,
}

// Valid reports whether g is a known genre
func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Platform is one of the fixed catalog platforms
type Platform string

const (
	PlatformPC          Platform = "PC"
	PlatformPlayStation Platform = "PlayStation"
	PlatformXbox        Platform = "Xbox"
	PlatformNintendo    Platform = "Nintendo"
	PlatformMobile      Platform = "Mobile"
)

// Platforms lists every platform in display order
var Platforms = []Platform{
	PlatformPC, PlatformPlayStation, PlatformXbox, PlatformNintendo, PlatformMobile,
}

// Valid reports whether p is a known platform
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Game represents a tracked game in the catalog
type Game struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;index" json:"title"`
	Genre       Genre     `gorm:"index" json:"genre"`
	Platform    Platform  `gorm:"index" json:"platform"`
	ReleaseYear int       `json:"releaseYear"`
	Developer   string    `json:"developer"`
	CoverImage  string    `json:"coverImage"`
	Description string    `json:"description"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Reviews     []Review  `gorm:"foreignKey:GameID" json:"-"`
}

// BeforeCreate assigns a fresh identity to new games
func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GameInput is the request body for creating or updating a game
type GameInput struct {
	Title       string   `json:"title" validate:"required"`
	Genre       Genre    `json:"genre" validate:"required,genre"`
	Platform    Platform `json:"platform" validate:"required,platform"`
	ReleaseYear int      `json:"releaseYear" validate:"gte=0,lte=9999"`
	Developer   string   `json:"developer" validate:"required"`
	CoverImage  string   `json:"coverImage" validate:"omitempty,coverurl"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
}

// Apply copies the input onto g
func (in GameInput) Apply(g *Game) {
	g.Title = in.Title
	g.Genre = in.Genre
	g.Platform = in.Platform
	g.ReleaseYear = in.ReleaseYear
	g.Developer = in.Developer
	g.CoverImage = in.CoverImage
	g.Description = in.Description
	g.Completed = in.Completed
}

// InputFromGame returns the editable fields of g
func InputFromGame(g Game) GameInput {
	return GameInput{
		Title:       g.Title,
		Genre:       g.Genre,
		Platform:    g.Platform,
		ReleaseYear: g.ReleaseYear,
		Developer:   g.Developer,
		CoverImage:  g.CoverImage,
		Description: g.Description,
		Completed:   g.Completed,
	}
}
