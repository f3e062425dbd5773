package rbac

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/crewplane/crewd/pkg/observability"
)

// defaultCacheSize bounds the decision cache. Decisions are pure functions
// of (role, resource, permission), so cached entries never go stale within
// a process lifetime.
const defaultCacheSize = 4096

// Checker evaluates permission and role-floor checks against a fixed
// matrix. It is safe for concurrent use and never fails: missing or invalid
// input resolves to a denial, not an error.
type Checker struct {
	matrix  Matrix
	cache   *lru.Cache[string, bool]
	metrics *observability.Metrics
}

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithMetrics attaches metrics recording to the checker
func WithMetrics(metrics *observability.Metrics) CheckerOption {
	return func(c *Checker) {
		c.metrics = metrics
	}
}

// WithCacheSize overrides the decision cache size. A size of 0 disables
// the cache.
func WithCacheSize(size int) CheckerOption {
	return func(c *Checker) {
		c.cache = nil
		if size > 0 {
			cache, err := lru.New[string, bool](size)
			if err == nil {
				c.cache = cache
			}
		}
	}
}

// NewChecker creates a checker over the given matrix
func NewChecker(matrix Matrix, opts ...CheckerOption) *Checker {
	cache, _ := lru.New[string, bool](defaultCacheSize)
	c := &Checker{
		matrix: matrix,
		cache:  cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasPermission reports whether the user may perform permission on resource.
//
// A nil user is denied. super_admin passes unconditionally. Everyone else is
// checked against the explicit matrix entry for their role; absent entries
// deny.
func (c *Checker) HasPermission(user *User, resource Resource, permission Permission) bool {
	allowed := c.evaluate(user, resource, permission)
	if c.metrics != nil {
		c.metrics.RecordPermissionCheck(allowed)
	}
	return allowed
}

func (c *Checker) evaluate(user *User, resource Resource, permission Permission) bool {
	if user == nil {
		return false
	}
	if user.Role == RoleSuperAdmin {
		return true
	}

	if c.cache != nil {
		key := cacheKey(user.Role, resource, permission)
		if allowed, ok := c.cache.Get(key); ok {
			return allowed
		}
		allowed := c.matrix.Allows(user.Role, resource, permission)
		c.cache.Add(key, allowed)
		return allowed
	}

	return c.matrix.Allows(user.Role, resource, permission)
}

// HasRequiredRole reports whether the user's role sits at or above the
// required role in the hierarchy. This is the coarse role-floor check; it
// never consults the permission matrix.
func (c *Checker) HasRequiredRole(user *User, required Role) bool {
	allowed := user != nil && required.Valid() && user.Role.Level() >= required.Level()
	if c.metrics != nil {
		c.metrics.RecordRoleCheck(allowed)
	}
	return allowed
}

func cacheKey(role Role, resource Resource, permission Permission) string {
	return fmt.Sprintf("%s|%s|%s", role, resource, permission)
}
