package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// SignUpRequest carries the payload for creating a credential plus profile.
type SignUpRequest struct {
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required,min=8"`
	DisplayName string            `json:"display_name" validate:"required"`
	AccountType enums.AccountType `json:"account_type" validate:"required"`
	AdminID     *uuid.UUID        `json:"admin_id,omitempty"`
	AdminName   *string           `json:"admin_name,omitempty"`
	Position    *string           `json:"position,omitempty"`
	Department  *string           `json:"department,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
}

// SignInRequest carries the credentials for authentication.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PrincipalDTO is the wire shape of a principal record.
type PrincipalDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	AccountType enums.AccountType `json:"account_type"`
	AdminID     *uuid.UUID        `json:"admin_id,omitempty"`
	AdminName   *string           `json:"admin_name,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
	Position    *string           `json:"position,omitempty"`
	Department  *string           `json:"department,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Session bundles the authenticated principal with its tokens.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Principal    PrincipalDTO `json:"principal"`
}

// FromModel maps a principal record into its wire shape.
func FromModel(p *models.Principal) PrincipalDTO {
	if p == nil {
		return PrincipalDTO{}
	}
	return PrincipalDTO{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AccountType: p.AccountType,
		AdminID:     p.AdminID,
		AdminName:   p.AdminName,
		ImageURL:    p.ImageURL,
		Position:    p.Position,
		Department:  p.Department,
		CreatedAt:   p.CreatedAt,
	}
}
