package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matanmalka1/actiongate/internal/domain/auth"
)

// RegisterCustomValidators registers the engine-specific validation rules.
// Must be called before validating EngineConfig.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("endpoint_policy", validateEndpointPolicy); err != nil {
		return fmt.Errorf("register endpoint_policy validator: %w", err)
	}
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("register duration validator: %w", err)
	}
	return nil
}

// validateEndpointPolicy accepts "allow" or "deny".
func validateEndpointPolicy(fl validator.FieldLevel) bool {
	return auth.UnknownEndpointPolicy(fl.Field().String()).IsValid()
}

// validateDuration accepts anything time.ParseDuration accepts.
func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// Validate validates the EngineConfig using struct tags plus custom rules,
// returning actionable error messages.
func (c *EngineConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidators(v); err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return c.validateRuleIDsUnique()
}

// validateRuleIDsUnique rejects duplicate rule ids, which would make rule
// diagnostics ambiguous.
func (c *EngineConfig) validateRuleIDsUnique() error {
	seen := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// formatValidationErrors turns validator errors into readable messages.
func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "endpoint_policy":
			msgs = append(msgs, fmt.Sprintf("%s: must be \"allow\" or \"deny\"", fe.Namespace()))
		case "duration":
			msgs = append(msgs, fmt.Sprintf("%s: must be a duration like \"30s\"", fe.Namespace()))
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s: required", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %q validation", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
