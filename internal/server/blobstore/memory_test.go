package blobstore

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	body := []byte(`{"name":"a","worlds":[]}`)
	require.NoError(t, m.Put(ctx, "folders/x.json", body))
	body[0] = 'X'

	got, err := m.Get(ctx, "folders/x.json")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a","worlds":[]}`, string(got))

	got[0] = 'Y'
	again, _ := m.Get(ctx, "folders/x.json")
	assert.Equal(t, byte('{'), again[0])

	require.NoError(t, m.Delete(ctx, "folders/x.json"))
	require.NoError(t, m.Delete(ctx, "folders/x.json"))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(ctx, "folders/x.json")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
