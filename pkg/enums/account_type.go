package enums

import "fmt"

// AccountType places a principal in the ownership hierarchy.
type AccountType string

const (
	AccountTypeSuperAdmin AccountType = "SuperAdmin"
	AccountTypeAdmin      AccountType = "Admin"
	AccountTypeUser       AccountType = "User"
	AccountTypeRestricted AccountType = "Restricted"
)

var validAccountTypes = []AccountType{
	AccountTypeSuperAdmin,
	AccountTypeAdmin,
	AccountTypeUser,
	AccountTypeRestricted,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsAdminTier reports whether the account type may manage staff and roles.
func (a AccountType) IsAdminTier() bool {
	return a == AccountTypeSuperAdmin || a == AccountTypeAdmin
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
