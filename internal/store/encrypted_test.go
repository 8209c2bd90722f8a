package store

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrumebox/scrume/internal/codec"
	"github.com/scrumebox/scrume/internal/models"
)

// staticKeys is a KeyProvider with a fixed key, standing in for the
// OS credential store.
type staticKeys struct{ key []byte }

func (s staticKeys) GetOrCreateKey() ([]byte, error) { return s.key, nil }

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newTestStore(t *testing.T) *EncryptedStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scrume_data.encrypted")
	return NewEncryptedStore(path, staticKeys{key: testKey(t)}, zap.NewNop())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("arbitrary bytes \x00\x01\xff including binary")

	blob, err := encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "arbitrary bytes")

	out, err := decrypt(blob, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestEncryptFreshNoncePerCall(t *testing.T) {
	key := testKey(t)
	a, err := encrypt([]byte("same input"), key)
	require.NoError(t, err)
	b, err := encrypt([]byte("same input"), key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must be unique per encryption")
}

func TestDecryptWrongKeyFails(t *testing.T) {
	blob, err := encrypt([]byte("secret"), testKey(t))
	require.NoError(t, err)

	_, err = decrypt(blob, testKey(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecryptTruncatedFails(t *testing.T) {
	key := testKey(t)
	blob, err := encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = decrypt(blob[:8], key)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = decrypt(blob[:len(blob)-1], key)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	projects, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := models.NewProject("Alpha", "first", 2)
	p.Backlog = []models.UserStory{
		models.NewStory("one", "", models.PriorityHigh, 3),
		models.NewStory("two", "", models.PriorityLow, 5),
	}
	require.NoError(t, s.Save([]models.Project{p}))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, p.Name, got[0].Name)
	require.Len(t, got[0].Backlog, 2)
	assert.Equal(t, p.Backlog[0].ID, got[0].Backlog[0].ID)
}

func TestSaveEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(nil))

	// The file exists and is a valid encrypted empty collection.
	_, err := os.Stat(s.Path())
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data", "scrume_data.encrypted")
	s := NewEncryptedStore(path, staticKeys{key: testKey(t)}, zap.NewNop())

	require.NoError(t, s.Save(nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileIsNotPlaintext(t *testing.T) {
	s := newTestStore(t)
	p := models.NewProject("TopSecretName", "", 2)
	require.NoError(t, s.Save([]models.Project{p}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "TopSecretName")
	assert.NotContains(t, string(raw), `"id"`)
}

func TestLoadCorruptFileFailsOpen(t *testing.T) {
	s := newTestStore(t)
	p := models.NewProject("Alpha", "", 2)
	require.NoError(t, s.Save([]models.Project{p}))

	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage garbage garbage"), 0o600))

	got, err := s.Load()
	require.NoError(t, err, "corruption must not propagate to the caller")
	assert.Empty(t, got)

	// The corrupt file itself is not deleted by Load.
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestLoadWrongKeyFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrume_data.encrypted")
	a := NewEncryptedStore(path, staticKeys{key: testKey(t)}, zap.NewNop())
	require.NoError(t, a.Save([]models.Project{models.NewProject("Alpha", "", 2)}))

	b := NewEncryptedStore(path, staticKeys{key: testKey(t)}, zap.NewNop())
	got, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportImport(t *testing.T) {
	s := newTestStore(t)
	p := models.NewProject("Alpha", "backup me", 3)
	require.NoError(t, s.Save([]models.Project{p}))

	data, err := s.Export()
	require.NoError(t, err)

	// Export is plaintext and decodes without a key.
	assert.Contains(t, string(data), "Alpha")
	projects, err := codec.Decode(data)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	// Clear, then restore from the backup.
	require.NoError(t, s.Clear())
	require.NoError(t, s.Import(data))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, 3, got[0].SprintDurationWeeks)
}

func TestImportBadDataLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	p := models.NewProject("Alpha", "", 2)
	require.NoError(t, s.Save([]models.Project{p}))

	err := s.Import([]byte("{not valid"))
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrDecode)

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
}

func TestClearIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]models.Project{models.NewProject("Alpha", "", 2)}))

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing an absent file is not an error")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInfo(t *testing.T) {
	s := newTestStore(t)

	size, path := s.Info()
	assert.Zero(t, size)
	assert.Equal(t, s.Path(), path)

	require.NoError(t, s.Save([]models.Project{models.NewProject("Alpha", "", 2)}))
	size, _ = s.Info()
	assert.Greater(t, size, int64(0))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]models.Project{models.NewProject("Alpha", "", 2)}))
	require.NoError(t, s.Save([]models.Project{models.NewProject("Beta", "", 2)}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(s.Path()), entries[0].Name())
}
