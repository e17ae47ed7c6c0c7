// Package types provides the records shared by the time clock client, the
// punch history extractor and the snapshot store.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Credentials is the login/password pair posted to the time clock login form.
// Both values are passed through as entered. It is input only and never
// persisted.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"-" validate:"required"`
}

// Validate validates the Credentials using the validator.
func (c *Credentials) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// String hides the password so credentials can be passed to loggers safely.
func (c Credentials) String() string {
	return c.Email + ":<redacted>"
}
