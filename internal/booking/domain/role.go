package domain

import (
	"fmt"
	"strings"
)

// Role is the identity a caller is acting as. It is a free switch, not an
// authenticated principal.
type Role string

const (
	RoleProvider    Role = "provider"
	RoleReceiver    Role = "receiver"
	RoleFacilitator Role = "facilitator"
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleProvider, RoleReceiver, RoleFacilitator}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleProvider, RoleReceiver, RoleFacilitator:
		return true
	default:
		return false
	}
}

// Abbreviation returns the short label used on printed records.
func (r Role) Abbreviation() string {
	switch r {
	case RoleProvider:
		return "SP"
	case RoleReceiver:
		return "SR"
	case RoleFacilitator:
		return "SF"
	default:
		return "??"
	}
}

// Title returns the long display name.
func (r Role) Title() string {
	switch r {
	case RoleProvider:
		return "Service Provider"
	case RoleReceiver:
		return "Service Receiver"
	case RoleFacilitator:
		return "Service Facilitator"
	default:
		return string(r)
	}
}

// ParseRole accepts the role name or its abbreviation, case-insensitively.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "provider", "sp":
		return RoleProvider, nil
	case "receiver", "sr":
		return RoleReceiver, nil
	case "facilitator", "sf":
		return RoleFacilitator, nil
	default:
		return "", fmt.Errorf("unknown role %q (use provider, receiver or facilitator)", value)
	}
}
