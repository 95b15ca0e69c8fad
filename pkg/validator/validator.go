package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

// ErrValidation is wrapped by every error Check returns.
var ErrValidation = errors.New("validation failed")

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	validate.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "IN" || v == "OUT"
	})
	validate.RegisterValidation("tx_status", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "SCHEDULED" || v == "COMPLETED"
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var failures []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			failures = append(failures, &element)
		}
	}
	return failures
}

// Check validates data and reports the first failure as an error.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
}
