package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/entraide/matchd/internal/domain/geo"
)

// Sentinel kinds for profile contract violations.
var (
	ErrInvalidUserProfile = errors.New("invalid user profile")
	ErrInvalidTaskProfile = errors.New("invalid task profile")
)

var validate = newValidator() //nolint:gochecknoglobals // validator instances are designed to be shared

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// finitepoint rejects coordinates carrying NaN or Inf before they can
	// reach the distance computation.
	_ = v.RegisterValidation("finitepoint", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(geo.Point)
		if !ok {
			return false
		}
		return p.Valid()
	})

	return v
}

// ValidateUser checks the caller contract for a user profile.
// A violation names the offending field; it is never silently coerced.
func ValidateUser(u *UserProfile) error {
	if u == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidUserProfile)
	}
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUserProfile, describe(err))
	}
	if !finite(u.Reputation) {
		return fmt.Errorf("%w: field Reputation is not finite", ErrInvalidUserProfile)
	}
	return nil
}

// ValidateTask checks the caller contract for a task profile.
func ValidateTask(t *TaskProfile) error {
	if t == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidTaskProfile)
	}
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTaskProfile, describe(err))
	}
	if !finite(t.BudgetCredits) {
		return fmt.Errorf("%w: field BudgetCredits is not finite", ErrInvalidTaskProfile)
	}
	return nil
}

// describe flattens validator errors into a single field-naming message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %q constraint", fe.StructNamespace(), fe.Tag())
	}
	return err.Error()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
