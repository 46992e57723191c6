package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks configuration structs against their validate tags and
// reports failures by their config key rather than the Go field name
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the outpost-specific rules
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// A profile name is one segment of outpost/<profile>/<entity>
	_ = v.RegisterValidation("profile", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, "/*")
	})

	return &Validator{validate: v}
}

// Validate runs the tag rules on i
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Namespace is Config.save.profile; drop the root struct name
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		lines = append(lines, fmt.Sprintf("%s: fails %s (got %q)", key, rule, fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("%d setting(s) rejected:\n  %s", len(lines), strings.Join(lines, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
