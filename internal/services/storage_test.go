package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTripPerTenant(t *testing.T) {
	store := NewStorageService(t.TempDir())
	require.NoError(t, store.EnsureUploadDir())

	url, err := store.Save("tenant-a", "CV Jane.PDF", []byte("%PDF-1.4 data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "tenant-a/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	data, err := store.Load(url)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 data"), data)

	require.NoError(t, store.Delete(url))
	_, err = store.Load(url)
	assert.Error(t, err)
}

func TestStorageRejectsTraversal(t *testing.T) {
	store := NewStorageService(t.TempDir())

	for _, url := range []string{"../etc/passwd", "/etc/passwd", "", "tenant/../../x"} {
		_, err := store.Load(url)
		assert.Error(t, err, url)
	}

	_, err := store.Save("", "cv.pdf", nil)
	assert.Error(t, err)
}
