// models/validate.go
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках используем имена полей из JSON, а не из Go-структур
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct проверяет структуру по тегам validate и возвращает errs.Validation
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Internal(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return errs.Validation("Некорректные данные", fields)
}

// validateVar проверяет одно значение. field попадает в ответ клиенту.
func validateVar(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Internal(err)
	}
	return errs.Validation("Некорректные данные", map[string]string{field: describe(verrs[0])})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("минимум %s символов", fe.Param())
		}
		return fmt.Sprintf("не меньше %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("максимум %s символов", fe.Param())
		}
		return fmt.Sprintf("не больше %s", fe.Param())
	case "gte":
		return fmt.Sprintf("не меньше %s", fe.Param())
	case "lte":
		return fmt.Sprintf("не больше %s", fe.Param())
	default:
		return fmt.Sprintf("не проходит проверку %s", fe.Tag())
	}
}
