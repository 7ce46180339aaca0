// Package auth guards the staff API.
//
// Staff endpoints (imports, progress, tasks, audit) require a bearer token
// whose bcrypt hash is configured in STAFF_TOKEN_HASH. When no hash is
// configured the guard lets every request through, which suits local use
// and the CLI. Public registry endpoints are never guarded.
//
// Generate a token and its hash with:
//
//	token, hash, err := auth.GenerateStaffToken(bcrypt.DefaultCost)
//
// Repeated bad tokens from one client address are locked out by the
// RateLimiter.
package auth
