// Package authz resolves every permission question as a single pure
// capability check, evaluated in the HTTP layer before a core operation runs.
package authz

import "github.com/avezhov/shop-api/internal/user"

type Action string

const (
	ManageItems      Action = "manage_items"      // create/update own items, CSV import
	ManageCategories Action = "manage_categories" // category CRUD
	ReadAddresses    Action = "read_addresses"    // list all addresses
	DriveWarehouse   Action = "drive_warehouse"   // collecting/collected/shipped/delivered
	UseBasket        Action = "use_basket"        // add to basket, start/cancel own order
	ReadOwn          Action = "read_own"          // own orders, own addresses
)

// Allow reports whether u may perform action on a resource owned by ownerID.
// ownerID is empty for actions with no concrete resource owner.
func Allow(u *user.User, action Action, ownerID string) bool {
	if u == nil || !u.IsActive {
		return false
	}
	switch action {
	case ManageItems:
		return u.HasRole(user.RoleVendor, user.RoleManager)
	case ManageCategories:
		return u.HasRole(user.RoleManager)
	case ReadAddresses:
		return u.HasRole(user.RoleManager, user.RoleEmployee)
	case DriveWarehouse:
		return u.HasRole(user.RoleManager, user.RoleEmployee)
	case UseBasket, ReadOwn:
		return ownerID == "" || ownerID == u.ID || u.HasRole(user.RoleManager)
	}
	return false
}
