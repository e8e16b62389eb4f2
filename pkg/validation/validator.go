package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/c3net/pkg/c3"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxRosterUnits = 1000
	MaxIDLength    = 64
	MaxNetworks    = 1000

	// Unit IDs appear inside "unitId:compIndex" member tokens.
	idPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("c3type", func(fl validator.FieldLevel) bool {
		return c3.NetworkType(fl.Field().String()).Valid()
	})
}

// ValidateUnit validates one roster unit.
func ValidateUnit(u *c3.Unit) error {
	if u == nil {
		return errors.New("unit cannot be nil")
	}
	if err := validate.Struct(u); err != nil {
		return formatValidationError(err)
	}
	if len(u.ID) > MaxIDLength {
		return fmt.Errorf("ID: exceeds maximum length of %d characters", MaxIDLength)
	}
	if !idPattern.MatchString(u.ID) {
		return fmt.Errorf("ID: '%s' contains invalid characters (only alphanumeric, dot, dash and underscore allowed)", u.ID)
	}
	return nil
}

// ValidateUnits validates a roster and checks that unit IDs are unique.
func ValidateUnits(units []c3.Unit) error {
	if len(units) > MaxRosterUnits {
		return fmt.Errorf("units: maximum %d units allowed, got %d", MaxRosterUnits, len(units))
	}
	seen := make(map[string]int, len(units))
	for i := range units {
		if err := ValidateUnit(&units[i]); err != nil {
			return fmt.Errorf("units[%d]: %w", i, err)
		}
		if j, dup := seen[units[i].ID]; dup {
			return fmt.Errorf("units[%d]: ID '%s' already used by units[%d]", i, units[i].ID, j)
		}
		seen[units[i].ID] = i
	}
	return nil
}

// ValidateNetwork checks that a network is well formed. Whether its links
// are legal for a roster is left to the engine's cleaning pass.
func ValidateNetwork(n *c3.Network) error {
	if n == nil {
		return errors.New("network cannot be nil")
	}
	if err := validate.Struct(n); err != nil {
		return formatValidationError(err)
	}
	if n.IsPeer() {
		if n.MasterID != "" || len(n.Members) > 0 {
			return fmt.Errorf("network %s: peer network cannot have a master or members", n.ID)
		}
		return nil
	}
	if n.MasterID == "" {
		return fmt.Errorf("network %s: MasterID: field is required", n.ID)
	}
	if len(n.PeerIDs) > 0 {
		return fmt.Errorf("network %s: master network cannot have peers", n.ID)
	}
	return nil
}

// ValidateNetworks validates each network and checks that IDs are unique.
func ValidateNetworks(networks []c3.Network) error {
	if len(networks) > MaxNetworks {
		return fmt.Errorf("networks: maximum %d networks allowed, got %d", MaxNetworks, len(networks))
	}
	seen := make(map[string]bool, len(networks))
	for i := range networks {
		if err := ValidateNetwork(&networks[i]); err != nil {
			return fmt.Errorf("networks[%d]: %w", i, err)
		}
		if seen[networks[i].ID] {
			return fmt.Errorf("networks[%d]: duplicate ID '%s'", i, networks[i].ID)
		}
		seen[networks[i].ID] = true
	}
	return nil
}

// ValidateGroups checks that every grouped unit exists and has a group name.
func ValidateGroups(groups map[string]string, units []c3.Unit) error {
	if len(groups) == 0 {
		return nil
	}
	if err := validate.Var(groups, "dive,keys,required,endkeys,required"); err != nil {
		return fmt.Errorf("groups: %w", formatValidationError(err))
	}
	known := make(map[string]bool, len(units))
	for _, u := range units {
		known[u.ID] = true
	}
	for id := range groups {
		if !known[id] {
			return fmt.Errorf("groups: unknown unit '%s'", id)
		}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "excludesall":
			return fmt.Errorf("%s: must not contain any of %q", field, param)
		case "hexcolor":
			return fmt.Errorf("%s: must be a hex colour", field)
		case "c3type":
			return fmt.Errorf("%s: unknown network type %q", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
