package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProvider(t *testing.T) {
	p := NewMemoryProvider()

	_, err := p.Get(KeyUsers)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, p.Set(KeyUsers, `[]`))

	value, err := p.Get(KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, p.Set(KeyUsers, `[{"id":"1"}]`))
	value, err = p.Get(KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, value)

	require.NoError(t, p.Remove(KeyUsers))
	_, err = p.Get(KeyUsers)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// 删除不存在的键不报错
	assert.NoError(t, p.Remove("missing"))
}
