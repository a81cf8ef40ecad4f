package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mathevolve/mathevolve-api/internal/student"
)

// Validate is the shared validator. Field names in errors are the json names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("student_code", func(fl validator.FieldLevel) bool {
		return student.ValidCode(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("api: register student_code validation: %v", err))
	}
	return v
}

// FieldErrors flattens validation errors into {field: [tag, ...]}.
func FieldErrors(err error) map[string][]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out[field] = append(out[field], fe.Tag())
	}
	return out
}

// Bind decodes a JSON body into dst and validates it. On failure it writes a
// VALIDATION_ERROR envelope and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	return BindWithMessage(w, r, dst, "Invalid input")
}

// BindWithMessage is Bind with a caller-chosen error message.
func BindWithMessage(w http.ResponseWriter, r *http.Request, dst any, message string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Write(w, Err(CodeValidation, message, map[string][]string{"body": {"json"}}))
		return false
	}
	if err := Validate.Struct(dst); err != nil {
		Write(w, Err(CodeValidation, message, FieldErrors(err)))
		return false
	}
	return true
}
