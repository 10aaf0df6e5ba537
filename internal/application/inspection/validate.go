package inspection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
		return stages.Known(fl.Field().String())
	})
	_ = v.RegisterValidation("upload", func(fl validator.FieldLevel) bool {
		return domain.AllowedUpload(fl.Field().String())
	})
	return v
}

// validationError turns validator output into one readable ErrValidation.
func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "stage":
		return fmt.Sprintf("unknown stage %q (allowed: %s)", fe.Value(), strings.Join(stages.Names(), ", "))
	case "upload":
		return fmt.Sprintf("unsupported image %q (allowed: %s)", fe.Value(), strings.Join(domain.AllowedExtensions, ", "))
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d", strings.ToLower(fe.Field()), domain.MinDepth, domain.MaxDepth)
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	}
	return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
}
