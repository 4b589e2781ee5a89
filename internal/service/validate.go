package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/brightwash/catalog-server/internal/config"
)

const (
	minPasswordLength = config.MinPasswordLength
	maxPasswordBytes  = config.MaxPasswordBytes
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func hasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

// firstFieldError returns the first failing field, or nil when err is not a
// validation failure.
func firstFieldError(err error) validator.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil
	}
	return verrs[0]
}
