package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"policygen/pkg/wizard"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and reports the first failing
// field as a wizard.ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return &wizard.ValidationError{Field: "body", Message: err.Error()}
	}

	fe := verrs[0]
	return &wizard.ValidationError{
		Field:   lowerFirst(fe.Field()),
		Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
