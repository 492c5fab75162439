package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/plant-catalog-api/internal/domain"
)

// v is the package-level singleton validator. Custom registrations must be
// made in init() before the first call to Struct.
var v = validator.New()

// Struct validates s using its validate tags. Failures are wrapped with
// domain.ErrBadRequest and list every offending field.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrBadRequest)
	}
	return nil
}
