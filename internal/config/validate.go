package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/shelf/internal/query"
)

// configValidate is the validator instance for Config.
// Initialized in init() with the yaml tag name func and custom validators.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML key
	configValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = configValidate.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		return query.SortKey(fl.Field().String()).Valid()
	})
	_ = configValidate.RegisterValidation("sortorder", func(fl validator.FieldLevel) bool {
		return query.Order(fl.Field().String()).Valid()
	})
}

// Validate checks every field. The error lists each failing key.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// describe renders one failure as "<key>: <reason>".
func describe(fe validator.FieldError) string {
	// Namespace is "Config.defaults.limit"; drop the type name
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return key + ": required"
	case "url":
		return fmt.Sprintf("%s: %q is not a URL", key, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: %v is not one of [%s]", key, fe.Value(), fe.Param())
	case "sortkey":
		return fmt.Sprintf("%s: %v is not one of [title price rating]", key, fe.Value())
	case "sortorder":
		return fmt.Sprintf("%s: %v is not one of [asc desc]", key, fe.Value())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", key, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", key, fe.Tag())
	}
}
