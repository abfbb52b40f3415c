package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrDuplicateName is returned when an add or rename would reuse a name.
	ErrDuplicateName = errors.New("an entry with this name already exists")
	// ErrNotFound is returned when a mutation names an absent entry.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidEntry is returned for an empty name or secret.
	ErrInvalidEntry = errors.New("invalid entry")
)

// Entry is a named shared secret.
type Entry struct {
	Name   string `json:"name" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the entry has a usable name and a secret.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if strings.ContainsAny(e.Name, "\r\n") {
		return fmt.Errorf("%w: name must be a single line", ErrInvalidEntry)
	}
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if verrs[0].Tag() == "required" {
				return fmt.Errorf("%w: %s is required", ErrInvalidEntry, field)
			}
			return fmt.Errorf("%w: %s failed %q", ErrInvalidEntry, field, verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}
