package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/motoexpress/pedidos_api/internal/models"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,13}$`)

// New builds the validator used by the handlers. Violations are reported
// under the request's json field names.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("senha", validPassword)
	_ = v.RegisterValidation("telefone", validPhone)
	_ = v.RegisterValidation("order_status", validOrderStatus)

	return v
}

func validPassword(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

func validPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validOrderStatus(fl validator.FieldLevel) bool {
	return models.ValidStatus(fl.Field().String())
}

// StrongPassword reports whether s has at least 8 characters, at least one
// uppercase letter and at least one special (non-alphanumeric) character.
func StrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}

	var upper, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}

	return upper && special
}

// Details flattens a validator error into a field -> message map covering
// every violation, not just the first.
func Details(err error) map[string]string {
	details := make(map[string]string)

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["body"] = "invalid payload"
		return details
	}

	for _, fe := range verrs {
		details[fe.Field()] = messageFor(fe)
	}

	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "senha":
		return "must have at least 8 characters, one uppercase letter and one special character"
	case "telefone":
		return "must contain only digits (10 to 13)"
	case "order_status":
		return "must be one of " + strings.Join(models.OrderStatuses, ", ")
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
