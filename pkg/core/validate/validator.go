// Package validate holds the product's input rules. Every function returns
// nil or a *domain.ValidationError listing the offending fields.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/theme"
)

const maxURLLength = 2048

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	hexPattern      = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]{0,50}$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,28}[a-z0-9]$`)
	pixelIDPattern  = regexp.MustCompile(`^[0-9]{1,32}$`)
	buttonStyles    = map[domain.ButtonStyle]struct{}{
		domain.ButtonRounded: {}, domain.ButtonPill: {}, domain.ButtonSquare: {}, domain.ButtonOutline: {},
	}
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
			return IsHTTPURL(fl.Field().String())
		})
		_ = v.RegisterValidation("hex_color", func(fl validator.FieldLevel) bool {
			return hexPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("pixel_id", func(fl validator.FieldLevel) bool {
			return pixelIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
			_, ok := theme.Lookup(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("font", func(fl validator.FieldLevel) bool {
			_, ok := theme.LookupFont(domain.FontFamily(fl.Field().String()))
			return ok
		})
		_ = v.RegisterValidation("button_style", func(fl validator.FieldLevel) bool {
			_, ok := buttonStyles[domain.ButtonStyle(fl.Field().String())]
			return ok
		})
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			_, ok := theme.LookupPlatform(fl.Field().String())
			return ok
		})

		validateInst = v
	})

	return validateInst
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
// Every other scheme (javascript:, data:, ftp:, ...) is rejected because
// entries render as clickable anchors on public pages.
func IsHTTPURL(raw string) bool {
	if raw == "" || raw != strings.TrimSpace(raw) || len(raw) > maxURLLength {
		return false
	}
	if strings.ContainsAny(raw, "\x00\t\r\n ") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

func check(rules any) error {
	err := validatorInstance().Struct(rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationError{Errors: make([]domain.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, domain.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_blank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		if fe.Param() == "0" {
			return "must be empty"
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return "must not be empty"
	case "http_url":
		return "must be an absolute http or https URL"
	case "hex_color":
		return "must be a colour in #rrggbb form"
	case "slug":
		return "may only contain lowercase letters, digits and hyphens (max 50)"
	case "username":
		return "must be 3-30 lowercase letters, digits or hyphens, not starting or ending with a hyphen"
	case "pixel_id":
		return "must contain only digits"
	case "theme":
		return "unknown theme"
	case "font":
		return "unknown font family"
	case "button_style":
		return "unknown button style"
	case "platform":
		return "unknown social platform"
	case "unique":
		return "must not repeat a platform"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
