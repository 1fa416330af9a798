package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RequestValidationError carries per-field messages for a 400 response.
type RequestValidationError struct {
	Details []string
}

func (e *RequestValidationError) Error() string {
	return strings.Join(e.Details, "; ")
}

// ValidateRequest runs struct tag validation and converts failures into a
// RequestValidationError the error middleware renders as 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		details := make([]string, 0, len(errs))
		for _, fe := range errs {
			details = append(details, fmt.Sprintf("field %s failed on the %s rule", fe.Field(), fe.Tag()))
		}
		return &RequestValidationError{Details: details}
	}
	return nil
}
