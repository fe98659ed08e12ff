// Package permissions checks a user's granted permissions against required
// ones, with wildcard support.
//
// Permission format:
//   - "*" - full access
//   - "eligibility.*" - all eligibility actions
//   - "eligibility.check" - a specific action
package permissions

import (
	"strings"
)

// Permissions guarding the eligibility service's operations.
const (
	PermissionCheck       = "eligibility.check"
	PermissionView        = "eligibility.view"
	PermissionIssueUpload = "eligibility.upload_links.issue"
)

// HasPermission checks if the user's permissions include the required
// permission. Supports wildcard matching: "*" matches everything,
// "eligibility.*" matches "eligibility.check", "eligibility.view", etc.
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true // No permission required
	}

	for _, p := range userPerms {
		if p == "*" {
			return true // Full admin access
		}
		if p == required {
			return true // Exact match
		}
		// Check wildcard patterns like "eligibility.*"
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the user has all of the required permissions.
func HasAllPermissions(userPerms []string, required []string) bool {
	for _, req := range required {
		if !HasPermission(userPerms, req) {
			return false
		}
	}
	return true
}
