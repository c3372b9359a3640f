package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avezhov/shop-api/internal/user"
)

func active(roles ...string) *user.User {
	return &user.User{ID: "u1", IsActive: true, Roles: roles}
}

func TestAllow_InactiveUserDeniedEverything(t *testing.T) {
	u := &user.User{ID: "u1", IsActive: false, Roles: []string{user.RoleManager}}
	for _, a := range []Action{ManageItems, ManageCategories, DriveWarehouse, UseBasket} {
		require.False(t, Allow(u, a, ""), "action %s", a)
	}
	require.False(t, Allow(nil, UseBasket, ""))
}

func TestAllow_RoleGates(t *testing.T) {
	require.True(t, Allow(active(user.RoleVendor), ManageItems, ""))
	require.False(t, Allow(active(user.RoleEmployee), ManageItems, ""))

	require.True(t, Allow(active(user.RoleManager), ManageCategories, ""))
	require.False(t, Allow(active(user.RoleVendor), ManageCategories, ""))

	require.True(t, Allow(active(user.RoleEmployee), DriveWarehouse, ""))
	require.False(t, Allow(active(), DriveWarehouse, ""))
}

func TestAllow_OwnershipForCustomers(t *testing.T) {
	u := active()
	require.True(t, Allow(u, UseBasket, "u1"))
	require.False(t, Allow(u, UseBasket, "someone-else"))

	// managers may read on behalf of anyone
	m := active(user.RoleManager)
	require.True(t, Allow(m, ReadOwn, "someone-else"))
}
