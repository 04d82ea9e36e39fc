package serverutils

import (
	"ai-roomviz-be/internal/dto"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and returns the first failure
// as a typed validation error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return dto.NewValidationError(first.Field(), "failed on rule '"+first.Tag()+"'")
		}
		return dto.NewValidationError("", err.Error())
	}
	return nil
}
