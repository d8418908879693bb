package domain

import "time"

// Tenant is the organizational scope all data access is restricted to.
// Every dataset row belongs to exactly one tenant; the executor applies the
// tenant predicate on every query regardless of user-supplied filters.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
