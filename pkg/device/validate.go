package device

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	namePattern = regexp.MustCompile(`^[^\s=]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return Kind(fl.Field().Int()).Valid()
	})
}

// Validate checks every component on its own and the network as a whole:
// names are unique, terminals differ, values are finite and a VCCS carries
// both control nodes.
func Validate(components []Component) error {
	if len(components) == 0 {
		return &InvalidComponentError{Reason: "empty network"}
	}

	seen := make(map[string]bool, len(components))
	for _, c := range components {
		if err := validateComponent(c); err != nil {
			return err
		}
		if seen[c.Name] {
			return &InvalidComponentError{Component: c.Name, Reason: "duplicate name"}
		}
		seen[c.Name] = true
	}
	return nil
}

func validateComponent(c Component) error {
	if c.Kind == VCCS && c.ControlComponent != "" {
		return &InvalidComponentError{
			Component: c.Name,
			Reason:    fmt.Sprintf("control by component %q is not supported, give control nodes", c.ControlComponent),
		}
	}
	if err := validate.Struct(c); err != nil {
		return &InvalidComponentError{Component: c.Name, Reason: formatValidationError(err)}
	}
	if !namePattern.MatchString(c.Name) {
		return &InvalidComponentError{Component: c.Name, Reason: "name contains whitespace or '='"}
	}
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return &InvalidComponentError{Component: c.Name, Reason: fmt.Sprintf("value %v is not finite", c.Value)}
	}

	if c.Kind != VCCS {
		return nil
	}
	if *c.ControlNode1 == *c.ControlNode2 {
		return &InvalidComponentError{Component: c.Name, Reason: "control nodes must differ"}
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required for a VCCS", fe.Field())
	case "nefield":
		return "terminal nodes must differ"
	case "kind":
		return fmt.Sprintf("unknown component type %v", fe.Value())
	}
	return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
}
