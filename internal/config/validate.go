package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their TOML key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("ext", validateExt); err != nil {
		panic(fmt.Sprintf("registering ext validation: %v", err))
	}
	v.RegisterStructValidation(validateGameExts, GameConfig{})
	return v
}

// normalizeExt reduces an extension to the form file patterns are built
// from, folded to lower case for case-insensitive filesystems.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// validateGameExts rejects a backup extension that would match the game's
// own saves.
func validateGameExts(sl validator.StructLevel) {
	g := sl.Current().Interface().(GameConfig)
	if g.BackupExt != "" && normalizeExt(g.SaveExt) == normalizeExt(g.BackupExt) {
		sl.ReportError(g.BackupExt, "backup_ext", "BackupExt", "distinct_ext", "save_ext")
	}
}

// validateExt accepts a file extension with or without a leading dot,
// made of letters and digits only.
func validateExt(fl validator.FieldLevel) bool {
	ext := strings.TrimPrefix(fl.Field().String(), ".")
	if ext == "" {
		return false
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Validate checks every field against its constraints. The error lists
// each failing key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s: %s", key, describe(fe)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "ext":
		return "must be letters and digits only"
	case "distinct_ext":
		return "must differ from " + fe.Param() + " ignoring case and leading dot"
	default:
		return "failed " + fe.Tag()
	}
}
