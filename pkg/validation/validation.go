package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "carehub/pkg/domain-errors"
)

var defaultValidator = newValidator()

// slugPattern matches lowercase URL slugs such as "admissions-faq".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain
// error carrying one issue per failing field.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	issues := make([]dErrors.Issue, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fieldName(fe)
		issues = append(issues, dErrors.Issue{Path: field, Message: tagMessage(fe.ActualTag(), fe.Param())})
	}
	return dErrors.NewValidation(issues)
}

// Var checks a single value against a validator tag such as "email" or
// "max=100". It returns an issue message and false when the value fails.
func Var(value any, tag string) (string, bool) {
	err := defaultValidator.Var(value, tag)
	if err == nil {
		return "", true
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "is invalid", false
	}
	fe := validationErrs[0]
	return tagMessage(fe.ActualTag(), fe.Param()), false
}

// KnownTag reports whether tag can be evaluated by the validator. Used at
// schema declaration time so typos fail fast instead of at request time.
func KnownTag(tag string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = defaultValidator.Var("", tag)
	return true
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	field := fieldName(fe)
	if field == "" {
		return "invalid request body"
	}
	return fmt.Sprintf("%s %s", field, tagMessage(fe.ActualTag(), fe.Param()))
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return snakeCase(name)
}

// snakeCase turns Go field names into wire names: MaxBodyBytes becomes
// max_body_bytes and DatabaseURL becomes database_url.
func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isUpper(c) {
			b.WriteByte(c)
			continue
		}
		prevLower := i > 0 && !isUpper(name[i-1]) && name[i-1] != '_'
		nextLower := i > 0 && i+1 < len(name) && !isUpper(name[i+1]) && isUpper(name[i-1])
		if prevLower || nextLower {
			b.WriteByte('_')
		}
		b.WriteByte(c + ('a' - 'A'))
	}
	return b.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func tagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid url"
	case "e164":
		return "must be an E.164 phone number"
	case "uuid":
		return "must be a valid uuid"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "len":
		return fmt.Sprintf("must have length %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", param)
	case "notblank":
		return "must not be blank"
	case "slug":
		return "must be a lowercase slug"
	case "iso3166_1_alpha2":
		return "must be an ISO 3166-1 alpha-2 country code"
	default:
		return "is invalid"
	}
}
