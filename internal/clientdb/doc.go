// Package clientdb stores client records and Google OAuth tokens in SQLite,
// scoped per user.
package clientdb
