// Tests for resource CRUD, cascade boundaries, and referential integrity on
// delete.
package sqlite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// setupStore creates an open Store on a fresh temp directory, closed via
// t.Cleanup.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, s.Open(config))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateResource(t *testing.T) {
	s := setupStore(t)

	doc := json.RawMessage(`{"name":"Cash"}`)
	r, err := s.CreateResource(1, "account", doc)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, "account", r.Type)

	got, err := s.GetResource(1)
	require.NoError(t, err)
	assert.Equal(t, "account", got.Type)
	assert.JSONEq(t, `{"name":"Cash"}`, string(got.Document))
}

func TestCreateResource_NilDocument(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)

	got, err := s.GetResource(1)
	require.NoError(t, err)
	assert.Nil(t, got.Document)
}

func TestCreateResource_DuplicateID(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)

	_, err = s.CreateResource(1, "account", nil)
	assert.ErrorIs(t, err, types.ErrDuplicateID)
}

func TestCreateResource_InvalidType(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidType)
}

func TestCreateResource_AssignsID(t *testing.T) {
	s := setupStore(t)

	r, err := s.CreateResource(0, "account", nil)
	require.NoError(t, err)
	assert.Positive(t, r.ID)

	got, err := s.GetResource(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestGetResource_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetResource(42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReplaceDocument(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", json.RawMessage(`{"name":"Cash"}`))
	require.NoError(t, err)

	require.NoError(t, s.ReplaceDocument(1, json.RawMessage(`{"name":"Savings"}`)))

	got, err := s.GetResource(1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Savings"}`, string(got.Document))
	assert.Equal(t, "account", got.Type, "type must survive document replacement")

	// Replacing with nil clears the document.
	require.NoError(t, s.ReplaceDocument(1, nil))
	got, err = s.GetResource(1)
	require.NoError(t, err)
	assert.Nil(t, got.Document)
}

func TestReplaceDocument_NotFound(t *testing.T) {
	s := setupStore(t)

	err := s.ReplaceDocument(42, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteResource_CascadesOwnAttributes(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAttribute(1, "name", types.StringValue("Cash")))
	require.NoError(t, s.AddAttribute(1, "opened", types.DateValue(mustDate(t, "2024-01-15"))))

	require.NoError(t, s.DeleteResource(1))

	_, err = s.GetResource(1)
	assert.ErrorIs(t, err, types.ErrNotFound)
	values, err := s.Attributes(1, types.KindString, "name")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDeleteResource_NotFound(t *testing.T) {
	s := setupStore(t)

	err := s.DeleteResource(42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteResource_BlockedByReferenceAttribute(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	_, err = s.CreateResource(2, "transaction", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAttribute(2, "account", types.ReferenceValue(1)))

	err = s.DeleteResource(1)
	assert.ErrorIs(t, err, types.ErrReferentialIntegrity)

	// The resource remains fully intact.
	r, err := s.GetResource(1)
	require.NoError(t, err)
	assert.Equal(t, "account", r.Type)

	// Removing the referencing attribute unblocks the delete.
	require.NoError(t, s.RemoveAttribute(2, "account", types.ReferenceValue(1)))
	assert.NoError(t, s.DeleteResource(1))
}

func TestDeleteResource_SelfReferenceDoesNotBlock(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAttribute(1, "self", types.ReferenceValue(1)))

	// The only hold on the resource is its own reference attribute, which
	// cascades with the delete.
	require.NoError(t, s.DeleteResource(1))

	_, err = s.GetResource(1)
	assert.ErrorIs(t, err, types.ErrNotFound)
	values, err := s.Attributes(1, types.KindReference, "self")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDeleteResource_SelfReferencePlusExternalStillBlocks(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	_, err = s.CreateResource(2, "transaction", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAttribute(1, "self", types.ReferenceValue(1)))
	require.NoError(t, s.AddAttribute(2, "account", types.ReferenceValue(1)))

	assert.ErrorIs(t, s.DeleteResource(1), types.ErrReferentialIntegrity)

	require.NoError(t, s.RemoveAttribute(2, "account", types.ReferenceValue(1)))
	assert.NoError(t, s.DeleteResource(1))
}

func TestDeleteResource_OwnReferenceAttributesReleaseTargets(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	_, err = s.CreateResource(2, "transaction", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAttribute(2, "account", types.ReferenceValue(1)))

	// Deleting the holder cascades its own reference attribute, so the
	// target becomes deletable.
	require.NoError(t, s.DeleteResource(2))
	assert.NoError(t, s.DeleteResource(1))
}

func TestListByType(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	_, err = s.CreateResource(2, "account", nil)
	require.NoError(t, err)
	_, err = s.CreateResource(3, "transaction", nil)
	require.NoError(t, err)

	accounts, err := s.ListByType("account")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	ids := map[int64]bool{}
	for _, r := range accounts {
		ids[r.ID] = true
		assert.Equal(t, "account", r.Type)
	}
	assert.True(t, ids[1] && ids[2])

	none, err := s.ListByType("group")
	require.NoError(t, err)
	assert.Empty(t, none)

	// The sequence is restartable: a second call sees the same rows.
	again, err := s.ListByType("account")
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestJournalRecordsLifecycle(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(1, "account", nil)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceDocument(1, json.RawMessage(`{}`)))
	require.NoError(t, s.DeleteResource(1))

	entries, err := s.JournalFor(1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, types.JournalOpCreate, entries[0].Op)
	assert.Equal(t, types.JournalOpReplace, entries[1].Op)
	assert.Equal(t, types.JournalOpDelete, entries[2].Op)
	assert.Equal(t, "account", entries[0].Detail)
}

func mustDate(t *testing.T, s string) types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return d
}
