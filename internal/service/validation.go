package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError turns the first validator failure into a domain error.
func validationError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := vErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "value missing"
	case "email":
		msg = "must be a valid email address"
	case "url":
		msg = "must be a valid URL"
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "gte":
		msg = "must be at least " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " validation"
	}
	return domain.NewValidationError(fe.Field(), msg)
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "must be greater than zero")
	}
	if quantity > domain.MaxItemQuantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("must be at most %d", domain.MaxItemQuantity))
	}
	return nil
}
