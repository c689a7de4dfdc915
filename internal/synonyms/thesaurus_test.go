package synonyms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalizesKeys(t *testing.T) {
	th := New(map[string][]string{
		"Hello": {"hi"},
		"hello": {"hey"},
		"  ":    {"ignored"},
	})
	assert.ElementsMatch(t, []string{"hi", "hey"}, th.Lookup("hello"))
	assert.Len(t, th, 1)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("like: [love, enjoy]\napp: [application, program]\n"), 0o644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"love", "enjoy"}, th.Lookup("like"))
	assert.Nil(t, th.Lookup("unknown"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("like: {nested: true}\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	assert.Nil(t, Thesaurus{}.Func())
	fn := New(map[string][]string{"bye": {"goodbye"}}).Func()
	require.NotNil(t, fn)
	assert.Equal(t, []string{"goodbye"}, fn("bye"))
}
