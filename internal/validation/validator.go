package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister("notblank", notBlank)
	mustRegister("positive", positive)
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// notBlank falla si el string queda vacío después de sacar espacios.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// positive acepta tipos con IsPositive() o números mayores que cero.
func positive(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.CanInterface() {
		if value, ok := field.Interface().(interface{ IsPositive() bool }); ok {
			return value.IsPositive()
		}
	}

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0
	case reflect.Float32, reflect.Float64:
		return field.Float() > 0
	default:
		return false
	}
}

// Validate corre la validación por tags de un struct.
func Validate(s any) error {
	return validate.Struct(s)
}

// Var valida un valor suelto contra una lista de tags ("required,max=10").
func Var(value any, tag string) error {
	return validate.Var(value, tag)
}

// FormatValidationErrors convierte validator.ValidationErrors en un mapa
// nombre de campo -> mensaje. Devuelve un mapa vacío si err no es de validación.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

// Message devuelve el mensaje del primer error de validación, útil con Var.
func Message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return formatFieldError(ve[0])
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "notblank":
		return "Must not be blank"
	case "positive":
		return "Must be greater than zero"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "url":
		return "Must be a valid URL"
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}
