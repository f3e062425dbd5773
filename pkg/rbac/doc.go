// Package rbac implements the role-based permission core: a fixed role
// hierarchy, a fully explicit per-role permission matrix, and a pure
// evaluator.
//
// Two distinct checks exist on purpose and are not unified:
//
//   - Checker.HasPermission evaluates a (role, resource, permission) triple
//     against the matrix. No inheritance: a role holds exactly the
//     permissions listed for it, and only super_admin bypasses the matrix.
//   - Checker.HasRequiredRole is a coarser role-floor comparison on the
//     numeric hierarchy and never consults the matrix.
//
// Callers must pick the check that matches their call site.
package rbac
