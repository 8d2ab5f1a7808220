// Package auth provides JWT authentication for the gateway.
//
// Tokens are signed with HS256 using the configured secret. The subject claim
// identifies the user; an optional full_name claim carries the display name
// used to personalize agent prompts. Verified identity travels on the request
// context and is read back by tools that need user scoping.
package auth
