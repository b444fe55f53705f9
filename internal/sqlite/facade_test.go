// Tests for the atomic multi-row operations: full rollback on failure and
// exactly-one-winner behavior under concurrent creation.
package sqlite

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

func TestCreateResourceWithAttributes(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResource(2, "group", nil)
	require.NoError(t, err)

	r, err := s.CreateResourceWithAttributes(1, "account", nil, []types.Attribute{
		{Name: "label", Value: types.StringValue("Cash")},
		{Name: "owner", Value: types.ReferenceValue(2)},
		{Name: "priority", Value: types.IntegerValue(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)

	labels, err := s.Attributes(1, types.KindString, "label")
	require.NoError(t, err)
	assert.Len(t, labels, 1)
	owners, err := s.Attributes(1, types.KindReference, "owner")
	require.NoError(t, err)
	assert.Len(t, owners, 1)
}

func TestCreateResourceWithAttributes_RollsBackOnDanglingReference(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResourceWithAttributes(1, "account", nil, []types.Attribute{
		{Name: "label", Value: types.StringValue("Cash")},
		{Name: "owner", Value: types.ReferenceValue(99)},
	})
	require.ErrorIs(t, err, types.ErrDanglingReference)

	// No trace of the resource or any of its other attributes.
	_, err = s.GetResource(1)
	assert.ErrorIs(t, err, types.ErrNotFound)
	labels, err := s.Attributes(1, types.KindString, "label")
	require.NoError(t, err)
	assert.Empty(t, labels)
	entries, err := s.JournalFor(1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateResourceWithAttributes_RollsBackOnDuplicateAttribute(t *testing.T) {
	s := setupStore(t)

	_, err := s.CreateResourceWithAttributes(1, "account", nil, []types.Attribute{
		{Name: "tag", Value: types.StringValue("liquid")},
		{Name: "tag", Value: types.StringValue("liquid")},
	})
	require.ErrorIs(t, err, types.ErrDuplicateAttribute)

	_, err = s.GetResource(1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestConcurrentCreate_SameID(t *testing.T) {
	s := setupStore(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateResource(1, "account", nil)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, types.ErrDuplicateID) || errors.Is(err, types.ErrConflict):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactly one creation wins")
	assert.Equal(t, workers-1, lost)

	// Exactly one row exists; nothing was merged or double-counted.
	resources, err := s.ListByType("account")
	require.NoError(t, err)
	assert.Len(t, resources, 1)
}

func TestConcurrentAttributeWrites_DisjointResources(t *testing.T) {
	s := setupStore(t)

	const n = 10
	for i := int64(1); i <= n; i++ {
		_, err := s.CreateResource(i, "account", nil)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := int64(1); i <= n; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			errs[i-1] = s.AddAttribute(i, "label", types.StringValue("acct"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i+1)
	}
	for i := int64(1); i <= n; i++ {
		values, err := s.Attributes(i, types.KindString, "label")
		require.NoError(t, err)
		assert.Len(t, values, 1)
	}
}
