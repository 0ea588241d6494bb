package model

// Resource names used as keys of the permission map. Every gated
// endpoint checks one of these together with an action.
const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceComments = "comments"
	ResourceClients  = "clients"
	ResourceUsers    = "users"
)

// Actions checked against an ActionSet.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ActionSet lists the capabilities a user holds on a single resource.
type ActionSet struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Permissions maps a resource name to its capability set. The map is
// persisted as a JSON column on the users table.
type Permissions map[string]ActionSet

// DefaultPermissions returns an all-false map covering every known
// resource, the shape new non-admin users start with.
func DefaultPermissions() Permissions {
	return Permissions{
		ResourceProducts: {},
		ResourceOrders:   {},
		ResourceComments: {},
		ResourceClients:  {},
		ResourceUsers:    {},
	}
}

// HasPermission decides whether a (role, permissions) pair authorizes
// the given resource/action. Admins are always authorized. For other
// roles a missing resource key or action flag means unauthorized.
func HasPermission(role string, perms Permissions, resource, action string) bool {
	if role == RoleAdmin {
		return true
	}
	set, ok := perms[resource]
	if !ok {
		return false
	}
	switch action {
	case ActionView:
		return set.View
	case ActionCreate:
		return set.Create
	case ActionUpdate:
		return set.Update
	case ActionDelete:
		return set.Delete
	}
	return false
}
