// Package permissions decides whether an actor may perform a request method,
// optionally against a specific resource. Policies are pure functions of their
// arguments; callers must pass a freshly loaded actor.
package permissions

import (
	"net/http"

	"yamdb/internal/models"
)

// Resource is anything owned by a single user.
type Resource interface {
	OwnerID() string
}

// Policy decides whether actor may perform method on resource.
// actor is nil for anonymous requests; resource is nil for list-level checks.
type Policy interface {
	Allows(actor *models.User, method string, resource Resource) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(actor *models.User, method string, resource Resource) bool

// Allows calls f.
func (f PolicyFunc) Allows(actor *models.User, method string, resource Resource) bool {
	return f(actor, method, resource)
}

// IsSafe reports whether method is read-only.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrReadOnly gates catalog curation: anyone reads, only admins write.
var AdminOrReadOnly Policy = PolicyFunc(func(actor *models.User, method string, _ Resource) bool {
	if IsSafe(method) {
		return true
	}
	return actor != nil && actor.IsAdmin()
})

// AuthorOrStaff gates user-generated content: anyone reads, authenticated
// users create, and only the author, a moderator or an admin may change an
// existing resource.
var AuthorOrStaff Policy = PolicyFunc(func(actor *models.User, method string, resource Resource) bool {
	if IsSafe(method) {
		return true
	}
	if actor == nil {
		return false
	}
	if resource == nil {
		return true
	}
	return actor.IsAdmin() || actor.IsModerator() || actor.ID == resource.OwnerID()
})

// AdminOnly requires an admin for every method, reads included.
var AdminOnly Policy = PolicyFunc(func(actor *models.User, _ string, _ Resource) bool {
	return actor != nil && actor.IsAdmin()
})

// Authenticated requires any signed-in actor.
var Authenticated Policy = PolicyFunc(func(actor *models.User, _ string, _ Resource) bool {
	return actor != nil
})

// All composes policies with logical AND. An empty composition allows everything.
func All(policies ...Policy) Policy {
	return PolicyFunc(func(actor *models.User, method string, resource Resource) bool {
		for _, p := range policies {
			if !p.Allows(actor, method, resource) {
				return false
			}
		}
		return true
	})
}
