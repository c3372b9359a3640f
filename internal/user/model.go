package user

import "time"

// Role names kept from the original access groups; plain customers carry no
// role at all.
const (
	RoleManager  = "manager_base"
	RoleEmployee = "employee_base"
	RoleVendor   = "vendor_base"
)

var AllRoles = []string{RoleManager, RoleEmployee, RoleVendor}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	Roles        []string  `json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, r := range u.Roles {
			if r == want {
				return true
			}
		}
	}
	return false
}

// VendorInfo is the company record behind a user with the vendor role.
type VendorInfo struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	INN         string `json:"inn"`
	Description string `json:"description,omitempty"`
}

// Profile characteristic types a user may store about themselves.
const (
	InfoPhone     = "phone"
	InfoSex       = "sex"
	InfoBirthdate = "birthdate"
)

var AllInfoTypes = []string{InfoPhone, InfoSex, InfoBirthdate}

// UserInfo is one profile characteristic row, unique per (user, type).
type UserInfo struct {
	UserID    string `json:"user_id"`
	TypeInfo  string `json:"type_info"`
	ValueInfo string `json:"value_info"`
}

// Position is a staff job title.
type Position struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StaffInfo links an employee to their manager and position, one row per
// user. ManagerID and PositionID may be empty when unassigned.
type StaffInfo struct {
	UserID      string `json:"user_id"`
	ManagerID   string `json:"manager_id,omitempty"`
	PositionID  string `json:"position_id,omitempty"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description,omitempty"`
}
