package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/identity"
	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/security"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

// Service manages an admin's staff roster: onboarding, role changes, and
// profile edits for principals linked to the admin via admin_id.
type Service interface {
	List(ctx context.Context, actor scope.Actor) ([]RosterEntry, error)
	Create(ctx context.Context, actor scope.Actor, input CreateStaffInput) (*CreateStaffResult, error)
	UpdateAccountType(ctx context.Context, actor scope.Actor, staffID uuid.UUID, input UpdateAccountTypeInput) error
	UpdateProfile(ctx context.Context, actor scope.Actor, staffID uuid.UUID, input UpdateProfileInput) error
}

type rosterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, types []enums.AccountType) ([]models.Principal, error)
	UpdateAccountType(ctx context.Context, id uuid.UUID, accountType enums.AccountType) error
	UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) error
}

type service struct {
	identity identity.Service
	roster   rosterRepository
	hub      *watch.Hub
}

// ServiceParams bundles the dependencies for the staff service.
type ServiceParams struct {
	Identity identity.Service
	Roster   rosterRepository
	Hub      *watch.Hub
}

// NewService constructs the staff service.
func NewService(params ServiceParams) (Service, error) {
	if params.Identity == nil {
		return nil, fmt.Errorf("identity service is required")
	}
	if params.Roster == nil {
		return nil, fmt.Errorf("roster repository is required")
	}
	return &service{
		identity: params.Identity,
		roster:   params.Roster,
		hub:      params.Hub,
	}, nil
}

// staffTypes are the roles an admin may grant to subordinates. SuperAdmin is
// never assignable through the roster surface.
var staffTypes = []enums.AccountType{
	enums.AccountTypeAdmin,
	enums.AccountTypeUser,
	enums.AccountTypeRestricted,
}

func isStaffType(t enums.AccountType) bool {
	for _, st := range staffTypes {
		if t == st {
			return true
		}
	}
	return false
}

// List returns the actor's direct subordinates.
func (s *service) List(ctx context.Context, actor scope.Actor) ([]RosterEntry, error) {
	if !actor.AccountType.IsAdminTier() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may view the staff roster")
	}

	roster, err := s.roster.ListByAdmin(ctx, actor.ID, staffTypes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff roster")
	}

	entries := make([]RosterEntry, 0, len(roster))
	for i := range roster {
		p := &roster[i]
		entries = append(entries, RosterEntry{
			ID:          p.ID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			AccountType: p.AccountType,
			Position:    p.Position,
			Department:  p.Department,
			ImageURL:    p.ImageURL,
		})
	}
	return entries, nil
}

// Create onboards a staff member under the acting admin. A missing password
// means a temporary one is generated and returned once in the response.
func (s *service) Create(ctx context.Context, actor scope.Actor, input CreateStaffInput) (*CreateStaffResult, error) {
	if !actor.AccountType.IsAdminTier() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may onboard staff")
	}
	if !isStaffType(input.AccountType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account type is not assignable to staff")
	}

	var tempPassword *string
	password := input.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(12)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temporary password")
		}
		password = generated
		tempPassword = &generated
	}

	adminID := actor.ID
	principal, err := s.identity.SignUp(ctx, identity.SignUpRequest{
		Email:       input.Email,
		Password:    password,
		DisplayName: input.DisplayName,
		AccountType: input.AccountType,
		AdminID:     &adminID,
		Position:    input.Position,
		Department:  input.Department,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	return &CreateStaffResult{Principal: *principal, TempPassword: tempPassword}, nil
}

// UpdateAccountType changes a subordinate's role. Only admin-tier actors may
// change roles, only for their direct subordinates, never for themselves, and
// never to super_admin.
func (s *service) UpdateAccountType(ctx context.Context, actor scope.Actor, staffID uuid.UUID, input UpdateAccountTypeInput) error {
	if !actor.AccountType.IsAdminTier() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change account types")
	}
	if staffID == actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own account type")
	}
	if !isStaffType(input.AccountType) {
		return pkgerrors.New(pkgerrors.CodeValidation, "account type is not assignable to staff")
	}

	target, err := s.loadSubordinate(ctx, actor, staffID)
	if err != nil {
		return err
	}

	if target.AccountType == input.AccountType {
		return nil
	}
	if err := s.roster.UpdateAccountType(ctx, staffID, input.AccountType); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account type")
	}

	if s.hub != nil {
		s.hub.Publish(watch.CollectionPrincipals)
	}
	return nil
}

// UpdateProfile patches a subordinate's profile fields.
func (s *service) UpdateProfile(ctx context.Context, actor scope.Actor, staffID uuid.UUID, input UpdateProfileInput) error {
	if !actor.AccountType.IsAdminTier() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may edit staff profiles")
	}

	if _, err := s.loadSubordinate(ctx, actor, staffID); err != nil {
		return err
	}

	patch := input.patch()
	if len(patch) == 0 {
		return nil
	}
	if err := s.roster.UpdateProfile(ctx, staffID, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff profile")
	}

	if s.hub != nil {
		s.hub.Publish(watch.CollectionPrincipals)
	}
	return nil
}

func (s *service) loadSubordinate(ctx context.Context, actor scope.Actor, staffID uuid.UUID) (*models.Principal, error) {
	target, err := s.roster.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff member")
	}
	if target.AdminID == nil || *target.AdminID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff member is not a direct subordinate")
	}
	return target, nil
}
