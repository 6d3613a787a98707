package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks input rejected before any remote call or write
var ErrValidation = errors.New("validation failed")

var coverURLPattern = regexp.MustCompile(`^https?://.+\..+`)

// ValidCoverURL reports whether raw has the basic absolute URL shape required
// for cover images.
func ValidCoverURL(raw string) bool {
	return coverURLPattern.MatchString(raw)
}

// NewValidator returns a validator that knows the catalog enumerations and
// reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return Genre(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return Platform(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return Difficulty(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("coverurl", func(fl validator.FieldLevel) bool {
		return ValidCoverURL(fl.Field().String())
	})

	return v
}

// Validate runs v against s and folds any field errors into a single error
// wrapping ErrValidation.
func Validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "coverurl":
		return fe.Field() + " must be an http(s) URL"
	case "genre", "platform", "difficulty":
		return fmt.Sprintf("%s %q is not a known %s", fe.Field(), fe.Value(), fe.Tag())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
