package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	perms := Permissions{
		ResourceProducts: {View: true, Create: true},
		ResourceOrders:   {View: true},
	}

	t.Run("admin bypasses the map entirely", func(t *testing.T) {
		assert.True(t, HasPermission(RoleAdmin, nil, ResourceUsers, ActionDelete))
		assert.True(t, HasPermission(RoleAdmin, Permissions{}, ResourceOrders, ActionCreate))
	})

	t.Run("granted actions", func(t *testing.T) {
		assert.True(t, HasPermission(RoleUser, perms, ResourceProducts, ActionView))
		assert.True(t, HasPermission(RoleUser, perms, ResourceProducts, ActionCreate))
		assert.True(t, HasPermission(RoleUser, perms, ResourceOrders, ActionView))
	})

	t.Run("missing flags deny", func(t *testing.T) {
		assert.False(t, HasPermission(RoleUser, perms, ResourceProducts, ActionDelete))
		assert.False(t, HasPermission(RoleUser, perms, ResourceOrders, ActionUpdate))
	})

	t.Run("missing resource key denies", func(t *testing.T) {
		assert.False(t, HasPermission(RoleUser, perms, ResourceClients, ActionView))
	})

	t.Run("unknown action denies", func(t *testing.T) {
		assert.False(t, HasPermission(RoleUser, perms, ResourceProducts, "approve"))
	})

	t.Run("nil map denies everything for non-admins", func(t *testing.T) {
		assert.False(t, HasPermission(RoleUser, nil, ResourceProducts, ActionView))
	})
}

func TestDefaultPermissions(t *testing.T) {
	p := DefaultPermissions()
	for _, r := range []string{ResourceProducts, ResourceOrders, ResourceComments, ResourceClients, ResourceUsers} {
		set, ok := p[r]
		assert.True(t, ok, r)
		assert.Equal(t, ActionSet{}, set, r)
	}
}
