package parsecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullpx/pypm/internal/domain"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "parse.json"))
	_, ok := c.Get(domain.FileFingerprint{Path: "foo.py", Size: 1, ModTimeNanos: 2})
	assert.False(t, ok)
}

func TestPutThenGetSameFingerprintHits(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "parse.json"))
	fp := domain.FileFingerprint{Path: "foo.py", Size: 10, ModTimeNanos: 100}
	result := domain.ParseResult{
		Runtime: []domain.ModuleName{"requests"},
		Typing:  []domain.ModuleName{"mypy_extensions"},
	}
	c.Put(fp, result)

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, result.Runtime, got.Runtime)
	assert.Equal(t, result.Typing, got.Typing)
}

func TestGetMissesOnSizeChange(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "parse.json"))
	fp := domain.FileFingerprint{Path: "foo.py", Size: 10, ModTimeNanos: 100}
	c.Put(fp, domain.ParseResult{Runtime: []domain.ModuleName{"requests"}})

	changed := fp
	changed.Size = 11
	_, ok := c.Get(changed)
	assert.False(t, ok)
}

func TestGetMissesOnModTimeChange(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "parse.json"))
	fp := domain.FileFingerprint{Path: "foo.py", Size: 10, ModTimeNanos: 100}
	c.Put(fp, domain.ParseResult{Runtime: []domain.ModuleName{"requests"}})

	changed := fp
	changed.ModTimeNanos = 999
	_, ok := c.Get(changed)
	assert.False(t, ok)
}

func TestSaveThenLoadPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parse.json")
	fp := domain.FileFingerprint{Path: "foo.py", Size: 10, ModTimeNanos: 100}

	c1 := Load(path)
	c1.Put(fp, domain.ParseResult{Runtime: []domain.ModuleName{"requests"}, Dynamic: []domain.ModuleName{"plugins.x"}})
	require.NoError(t, c1.Save())

	c2 := Load(path)
	got, ok := c2.Get(fp)
	require.True(t, ok)
	assert.Equal(t, []domain.ModuleName{"requests"}, got.Runtime)
	assert.Equal(t, []domain.ModuleName{"plugins.x"}, got.Dynamic)
}

func TestSaveIsNoopWhenNotDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parse.json")
	c := Load(path)
	require.NoError(t, c.Save())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
