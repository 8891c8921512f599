package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role name already exists")
	ErrRoleInUse       = errors.New("role is still assigned to users")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username already exists")
	ErrEmailInUse      = errors.New("email address is already in use by another account")
	ErrInvalidLogin    = errors.New("invalid credentials")
	ErrForbidden       = errors.New("forbidden")
	ErrPermissionsData = errors.New("stored permissions are invalid")
)

// ValidationError carries the field messages of a rejected input.
type ValidationError struct {
	Messages []string
	Err      error
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	return &ValidationError{Messages: []string{err.Error()}, Err: err}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Messages use the human label ("Role Name") rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Messages = append(ve.Messages, fieldMessage(fe))
	}
	sort.Strings(ve.Messages)
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}
