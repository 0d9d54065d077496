package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStore_SingleTransactionPerProject(t *testing.T) {
	store := NewTransactionStore()
	project := ProjectID{Namespace: "ns", Name: "proj"}

	tx, err := store.Begin(t.Context(), project, TxUpdate)
	require.NoError(t, err)
	assert.Same(t, tx, store.Get(project))
	assert.Equal(t, 1, store.Len())

	_, err = store.Begin(t.Context(), project, TxUpload)
	assert.Error(t, err, "second sync for the same project must be rejected")

	// a different project is unaffected
	other := ProjectID{Namespace: "ns", Name: "other"}
	_, err = store.Begin(t.Context(), other, TxUpload)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestTransactionStore_RemoveIdempotent(t *testing.T) {
	store := NewTransactionStore()
	project := ProjectID{Namespace: "ns", Name: "proj"}

	tx, err := store.Begin(t.Context(), project, TxUpdate)
	require.NoError(t, err)

	store.Remove(project)
	assert.Nil(t, store.Get(project))
	assert.Error(t, tx.Context().Err(), "removal releases the transaction context")

	store.Remove(project) // no-op

	// the slot is free again
	_, err = store.Begin(t.Context(), project, TxUpload)
	assert.NoError(t, err)
}

func TestTransaction_CancelIdempotent(t *testing.T) {
	store := NewTransactionStore()
	tx, err := store.Begin(t.Context(), ProjectID{Namespace: "a", Name: "b"}, TxUpdate)
	require.NoError(t, err)

	tx.Cancel()
	tx.Cancel()
	assert.Error(t, tx.Context().Err())
}

func TestParseProjectID(t *testing.T) {
	id, err := ParseProjectID("alice/survey")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Namespace)
	assert.Equal(t, "survey", id.Name)
	assert.Equal(t, "alice/survey", id.FullName())

	for _, bad := range []string{"", "noslash", "/x", "x/"} {
		_, err := ParseProjectID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
