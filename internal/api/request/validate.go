package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vzeefun/vzee/internal/api/apierr"
	"github.com/vzeefun/vzee/internal/model"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameError(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("cliptitle", func(fl validator.FieldLevel) bool {
		return titleError(fl.Field().String()) == nil
	})
	return v
}

func usernameError(s string) error {
	return model.ValidateUsername(model.CanonicalUsername(s))
}

func titleError(s string) error {
	return model.ValidateTitle(model.CanonicalTitle(s))
}

// Decode reads a JSON body into dst and validates it
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return Validate(dst)
}

// Validate checks v's struct tags. A failing username or title rule returns
// the model's specific validation error; anything else is an invalid request.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "username":
			return usernameError(fmt.Sprint(fe.Value()))
		case "cliptitle":
			return titleError(fmt.Sprint(fe.Value()))
		}
		messages = append(messages, fieldError(fe))
	}
	return apierr.NewInvalidRequestError(strings.Join(messages, "; "))
}

func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
