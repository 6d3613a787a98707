package reviews

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gametracker/internal/models"
)

// Field names accepted by Controller.UpdateField
const (
	FieldScore          = "score"
	FieldText           = "text"
	FieldHoursPlayed    = "hoursPlayed"
	FieldDifficulty     = "difficulty"
	FieldWouldRecommend = "wouldRecommend"
)

// Draft is the in-progress review form
type Draft struct {
	Score          int
	Text           string
	HoursPlayed    float64
	Difficulty     models.Difficulty
	WouldRecommend bool
}

// DefaultDraft is the empty form: five stars, normal difficulty, recommended
func DefaultDraft() Draft {
	return Draft{
		Score:          models.MaxScore,
		Difficulty:     models.DifficultyNormal,
		WouldRecommend: true,
	}
}

// DraftFromReview copies the mutable fields of r
func DraftFromReview(r models.Review) Draft {
	return Draft{
		Score:          r.Score,
		Text:           r.Text,
		HoursPlayed:    r.HoursPlayed,
		Difficulty:     r.Difficulty,
		WouldRecommend: r.WouldRecommend,
	}
}

// Input converts the draft to the request payload
func (d Draft) Input() models.ReviewInput {
	return models.ReviewInput{
		Score:          d.Score,
		Text:           d.Text,
		HoursPlayed:    d.HoursPlayed,
		Difficulty:     d.Difficulty,
		WouldRecommend: d.WouldRecommend,
	}
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return fmt.Errorf("%w: score must be between %d and %d", models.ErrValidation, models.MinScore, models.MaxScore)
	}
	return nil
}

func checkHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return fmt.Errorf("%w: hoursPlayed must be a number", models.ErrValidation)
	}
	if hours < 0 {
		return fmt.Errorf("%w: hoursPlayed must be at least 0", models.ErrValidation)
	}
	return nil
}

func checkDifficulty(d models.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", models.ErrValidation, d)
	}
	return nil
}

// with returns a copy of d with field parsed from value
func (d Draft) with(field, value string) (Draft, error) {
	switch field {
	case FieldScore:
		score, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return d, fmt.Errorf("%w: score must be a whole number", models.ErrValidation)
		}
		if err := checkScore(score); err != nil {
			return d, err
		}
		d.Score = score
	case FieldText:
		d.Text = value
	case FieldHoursPlayed:
		raw := strings.TrimSpace(value)
		if raw == "" {
			raw = "0"
		}
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return d, fmt.Errorf("%w: hoursPlayed must be a number", models.ErrValidation)
		}
		if err := checkHours(hours); err != nil {
			return d, err
		}
		d.HoursPlayed = hours
	case FieldDifficulty:
		diff := models.Difficulty(value)
		if err := checkDifficulty(diff); err != nil {
			return d, err
		}
		d.Difficulty = diff
	case FieldWouldRecommend:
		rec, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return d, fmt.Errorf("%w: wouldRecommend must be true or false", models.ErrValidation)
		}
		d.WouldRecommend = rec
	default:
		return d, fmt.Errorf("%w: unknown review field %q", models.ErrValidation, field)
	}
	return d, nil
}
