package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the canonical record constraints, whatever source the
// record was read from.
func (r VisitRecord) Validate() error {
	return validateRecord(r)
}

func (r EmployeeRecord) Validate() error {
	return validateRecord(r)
}

func validateRecord(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
