package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Messenger is implemented by request structs that name their validation
// failures. Keys are "<GoField>.<tag>", e.g. "Title.required".
type Messenger interface {
	ValidationMessages() map[string]string
}

const InvalidBodyMessage = "Invalid request body"

// IsValidationError reports whether err came from struct tag validation
// (as opposed to a malformed JSON body).
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// ValidationMessage returns the message for the first failing rule in err.
func ValidationMessage(err error, req any) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return InvalidBodyMessage
	}
	fe := verrs[0]
	if m, ok := req.(Messenger); ok {
		if msg, ok := m.ValidationMessages()[fe.Field()+"."+fe.Tag()]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
}
