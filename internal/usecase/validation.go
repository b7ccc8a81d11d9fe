package usecase

import (
	"regexp"
	"strings"

	"github.com/vportela/leadcrm/internal/entity"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateCreateLeadInput collects one error per failing field, not
// fail-fast.
func ValidateCreateLeadInput(input CreateLeadInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errs = append(errs, ValidationError{"email", "is required"})
	} else if !emailPattern.MatchString(input.Email) {
		errs = append(errs, ValidationError{"email", "must be a valid email address"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	}

	if strings.TrimSpace(input.AssignedTo) == "" {
		errs = append(errs, ValidationError{"assigned_to", "is required"})
	}

	if input.Status != "" && !entity.LeadStatus(input.Status).Valid() {
		errs = append(errs, ValidationError{"status", "must be one of New, Contacted, In Progress, Won, Lost"})
	}

	return errs
}

// ValidateLeadPatch applies the create rules, but only to the fields present
// in the patch. Any failing field rejects the whole update.
func ValidateLeadPatch(patch LeadPatch) ValidationErrors {
	var errs ValidationErrors

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}

	if patch.Email != nil {
		if strings.TrimSpace(*patch.Email) == "" {
			errs = append(errs, ValidationError{"email", "is required"})
		} else if !emailPattern.MatchString(*patch.Email) {
			errs = append(errs, ValidationError{"email", "must be a valid email address"})
		}
	}

	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	}

	if patch.AssignedTo != nil && strings.TrimSpace(*patch.AssignedTo) == "" {
		errs = append(errs, ValidationError{"assigned_to", "is required"})
	}

	if patch.Status != nil && !entity.LeadStatus(*patch.Status).Valid() {
		errs = append(errs, ValidationError{"status", "must be one of New, Contacted, In Progress, Won, Lost"})
	}

	return errs
}
