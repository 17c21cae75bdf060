package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// validateStruct runs the struct tags and reports the first failure as a
// domain validation error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return &domain.ErrValidation{Field: "body", Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Campo obrigatório: %s.", fe.Field())
	case "max":
		return fmt.Sprintf("Campo %s excede o limite de %s caracteres.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Campo %s deve ser maior que zero.", fe.Field())
	case "datetime":
		return fmt.Sprintf("Campo %s deve estar no formato AAAA-MM-DD.", fe.Field())
	case "oneof":
		return fmt.Sprintf("Valor inválido para %s.", fe.Field())
	case "email":
		return "E-mail inválido."
	case "url":
		return fmt.Sprintf("URL inválida em %s.", fe.Field())
	}
	return fmt.Sprintf("Campo inválido: %s.", fe.Field())
}
