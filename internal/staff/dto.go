package staff

import (
	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/internal/identity"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// CreateStaffInput carries the payload for an admin onboarding a staff member.
// When Password is empty a temporary credential is generated and returned.
type CreateStaffInput struct {
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password,omitempty"`
	DisplayName string            `json:"display_name" validate:"required"`
	AccountType enums.AccountType `json:"account_type" validate:"required"`
	Position    *string           `json:"position,omitempty"`
	Department  *string           `json:"department,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
}

// CreateStaffResult returns the new roster entry plus the temporary password
// when one was generated.
type CreateStaffResult struct {
	Principal    identity.PrincipalDTO `json:"principal"`
	TempPassword *string               `json:"temp_password,omitempty"`
}

// UpdateAccountTypeInput carries a role change.
type UpdateAccountTypeInput struct {
	AccountType enums.AccountType `json:"account_type" validate:"required"`
}

// UpdateProfileInput patches mutable profile fields on a roster entry.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name,omitempty"`
	Position    *string `json:"position,omitempty"`
	Department  *string `json:"department,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (in UpdateProfileInput) patch() map[string]any {
	patch := map[string]any{}
	if in.DisplayName != nil {
		patch["display_name"] = *in.DisplayName
	}
	if in.Position != nil {
		patch["position"] = *in.Position
	}
	if in.Department != nil {
		patch["department"] = *in.Department
	}
	if in.ImageURL != nil {
		patch["image_url"] = *in.ImageURL
	}
	return patch
}

// RosterEntry is the wire shape of a staff listing row.
type RosterEntry struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	AccountType enums.AccountType `json:"account_type"`
	Position    *string           `json:"position,omitempty"`
	Department  *string           `json:"department,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
}
