package httpx

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return field.Name
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Validate checks the struct tags of v and returns a field name to message
// map, or nil when v is valid.
func Validate(v any) map[string]string {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"error": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if _, exists := fields[fieldErr.Field()]; exists {
			continue
		}
		fields[fieldErr.Field()] = message(fieldErr)
	}
	return fields
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "looseemail", "email":
		return "must be a well-formed email address"
	case "min":
		return "size must be at least " + fieldErr.Param()
	case "max":
		return "size must be at most " + fieldErr.Param()
	default:
		return "invalid value"
	}
}
