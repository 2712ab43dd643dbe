package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidTakeoff = errors.New("invalid takeoff")

var takeoffValidator = newTakeoffValidator()

func newTakeoffValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("boqcategory", func(fl validator.FieldLevel) bool {
		return ValidCategory(Category(fl.Field().String()))
	})
	v.RegisterValidation("confidence", func(fl validator.FieldLevel) bool {
		switch Confidence(fl.Field().String()) {
		case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
			return true
		}
		return false
	})
	return v
}

// ValidateTakeoff checks an extraction payload against the line item
// schema. Geometry is not checked; only the fields grouping depends on.
func ValidateTakeoff(t TakeoffResult) error {
	err := takeoffValidator.Struct(t)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidTakeoff, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidTakeoff, strings.Join(msgs, "; "))
}
