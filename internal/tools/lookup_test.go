// ABOUTME: Tests for the client email lookup tool.
// ABOUTME: Covers every branch of the name disambiguation policy.

package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/clientdb"
)

func newTestDirectory(t *testing.T) *clientdb.Directory {
	t.Helper()
	dir, err := clientdb.Open(filepath.Join(t.TempDir(), "clients.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })
	return dir
}

func addClient(t *testing.T, dir *clientdb.Directory, userID, first, last, email, birthdate string) {
	t.Helper()
	err := dir.CreateClient(context.Background(), &clientdb.Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		FirstName: first,
		LastName:  last,
		Email:     email,
		Birthdate: birthdate,
	})
	require.NoError(t, err)
}

func lookup(t *testing.T, dir *clientdb.Directory, userID, fullName, birthdate string) string {
	t.Helper()
	lookupTool := EmailLookup(dir, nil)

	ctx := auth.WithUser(context.Background(), &auth.UserContext{UserID: userID})
	input, err := json.Marshal(map[string]string{
		"client_full_name": fullName,
		"birthdate":        birthdate,
	})
	require.NoError(t, err)

	result, err := lookupTool.Handler(ctx, input)
	require.NoError(t, err)
	return result.Content
}

func TestEmailLookup_NoMatch(t *testing.T) {
	dir := newTestDirectory(t)

	got := lookup(t, dir, "u1", "John Smith", "")
	assert.Equal(t, "Error: No client found with name John Smith.", got)
}

func TestEmailLookup_SingleMatch(t *testing.T) {
	dir := newTestDirectory(t)
	addClient(t, dir, "u1", "John", "Smith", "john@example.com", "1980-02-01")

	got := lookup(t, dir, "u1", "John Smith", "")
	assert.Equal(t, "john@example.com", got)
}

func TestEmailLookup_MultipleWithoutBirthdate(t *testing.T) {
	dir := newTestDirectory(t)
	addClient(t, dir, "u1", "John", "Smith", "john1@example.com", "1980-02-01")
	addClient(t, dir, "u1", "John", "Smith", "john2@example.com", "1991-07-15")

	got := lookup(t, dir, "u1", "John Smith", "")
	assert.Equal(t, "Error: Multiple clients found with name John Smith. Please specify the client's birthdate.", got)
}

func TestEmailLookup_BirthdateDisambiguates(t *testing.T) {
	dir := newTestDirectory(t)
	addClient(t, dir, "u1", "John", "Smith", "john1@example.com", "1980-02-01")
	addClient(t, dir, "u1", "John", "Smith", "john2@example.com", "1991-07-15")

	got := lookup(t, dir, "u1", "John Smith", "1991-07-15")
	assert.Equal(t, "john2@example.com", got)
}

func TestEmailLookup_MultipleEvenWithBirthdate(t *testing.T) {
	dir := newTestDirectory(t)
	addClient(t, dir, "u1", "John", "Smith", "john1@example.com", "1980-02-01")
	addClient(t, dir, "u1", "John", "Smith", "john2@example.com", "1980-02-01")

	got := lookup(t, dir, "u1", "John Smith", "1980-02-01")
	assert.Equal(t, "Error: Multiple clients found with name John Smith and that birthdate. Please verify the client details.", got)
}

func TestEmailLookup_ScopedToUser(t *testing.T) {
	dir := newTestDirectory(t)
	addClient(t, dir, "other-user", "John", "Smith", "john@example.com", "")

	got := lookup(t, dir, "u1", "John Smith", "")
	assert.Equal(t, "Error: No client found with name John Smith.", got)
}

func TestEmailLookup_InvalidFullName(t *testing.T) {
	dir := newTestDirectory(t)

	got := lookup(t, dir, "u1", "Cher", "")
	assert.Equal(t, "Error: Invalid full name format. Please provide first and last name.", got)
}

func TestEmailLookup_NoSession(t *testing.T) {
	dir := newTestDirectory(t)
	lookupTool := EmailLookup(dir, nil)

	result, err := lookupTool.Handler(context.Background(), json.RawMessage(`{"client_full_name": "John Smith"}`))
	require.NoError(t, err)
	assert.Equal(t, "Error: No user session for client lookup.", result.Content)
}

func TestParseFullName(t *testing.T) {
	first, last, err := ParseFullName("  Jane   Cooper  ")
	require.NoError(t, err)
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Cooper", last)

	_, _, err = ParseFullName("Jane")
	require.Error(t, err)
}
