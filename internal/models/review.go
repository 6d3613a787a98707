package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty is how hard the reviewer found the game
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every difficulty in display order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

const (
	MinScore = 1
	MaxScore = 5
)

// Review represents one review attached to a game. A game can have many.
type Review struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	GameID         string     `gorm:"not null;index" json:"juegoId"`
	Score          int        `gorm:"not null" json:"score"`
	Text           string     `json:"text"`
	HoursPlayed    float64    `json:"hoursPlayed"`
	Difficulty     Difficulty `json:"difficulty"`
	WouldRecommend bool       `json:"wouldRecommend"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns a fresh identity to new reviews
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReviewInput carries the mutable review fields
type ReviewInput struct {
	Score          int        `json:"score" validate:"min=1,max=5"`
	Text           string     `json:"text"`
	HoursPlayed    float64    `json:"hoursPlayed" validate:"gte=0"`
	Difficulty     Difficulty `json:"difficulty" validate:"required,difficulty"`
	WouldRecommend bool       `json:"wouldRecommend"`
}

// CreateReviewRequest is the body of POST /reviews
type CreateReviewRequest struct {
	GameID string `json:"juegoId" validate:"required"`
	ReviewInput
}

// Apply copies the input onto r
func (in ReviewInput) Apply(r *Review) {
	r.Score = in.Score
	r.Text = in.Text
	r.HoursPlayed = in.HoursPlayed
	r.Difficulty = in.Difficulty
	r.WouldRecommend = in.WouldRecommend
}
