package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator valida los DTO de entrada con las tags `validate` y reporta los campos por su
// nombre JSON (o de query string).
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{v: v}
}

// Struct devuelve un mensaje legible con el primer campo inválido, o "" si in es válido.
func (val *Validator) Struct(in any) string {
	err := val.v.Struct(in)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	e := verrs[0]
	return e.Field() + ": " + validationMessage(e)
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + e.Param() + " is not provided"
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "uuid":
		return "invalid UUID format"
	case "oneof":
		return "must be one of: " + e.Param()
	case "datetime":
		return "must be a date in format YYYY-MM-DD"
	default:
		return "invalid value"
	}
}

// bindBody decodifica el cuerpo JSON y lo valida; responde 400 si falla.
func (val *Validator) bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	if msg := val.Struct(out); msg != "" {
		return false, badRequest(c, "VALIDATION", msg)
	}
	return true, nil
}

// bindQuery decodifica la query string y la valida; responde 400 si falla.
func (val *Validator) bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, badRequest(c, "INVALID_QUERY", "parámetros inválidos: "+err.Error())
	}
	if msg := val.Struct(out); msg != "" {
		return false, badRequest(c, "VALIDATION", msg)
	}
	return true, nil
}
