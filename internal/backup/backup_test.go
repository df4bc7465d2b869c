package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/entities"
)

func newTestDatabase(t *testing.T, path string) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	assert.Equal(t, "exif_notes_database_2024-03-09_070501.db", Filename(ts))
}

func TestExportAndValidate(t *testing.T) {
	dir := t.TempDir()
	db := newTestDatabase(t, filepath.Join(dir, "live.db"))
	require.NoError(t, db.DB.Create(&entities.Camera{Make: "Canon", Model: "A-1"}).Error)

	dest := filepath.Join(dir, "out", "copy.db")
	require.NoError(t, Export(context.Background(), db.DB, dest))
	require.NoError(t, ValidateFile(dest))

	// Exporting again replaces the previous copy.
	require.NoError(t, Export(context.Background(), db.DB, dest))

	copyDB, err := database.Open(dest, nil)
	require.NoError(t, err)
	var cameras []entities.Camera
	require.NoError(t, copyDB.Find(&cameras).Error)
	sqlDB, _ := copyDB.DB()
	sqlDB.Close()
	require.Len(t, cameras, 1)
	assert.Equal(t, "A-1", cameras[0].Model)
}

func TestValidateFile_RejectsForeignFiles(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte(strings.Repeat("not a database ", 100)), 0o644))
	assert.ErrorIs(t, ValidateFile(garbage), ErrInvalidBackup)

	other := filepath.Join(dir, "other.db")
	otherDB, err := database.Open(other, nil)
	require.NoError(t, err)
	require.NoError(t, otherDB.Exec("CREATE TABLE notes (id INTEGER)").Error)
	sqlDB, _ := otherDB.DB()
	sqlDB.Close()
	err = ValidateFile(other)
	assert.ErrorIs(t, err, ErrInvalidBackup)
	assert.ErrorContains(t, err, "required table missing")

	assert.ErrorIs(t, ValidateFile(filepath.Join(dir, "missing.db")), ErrInvalidBackup)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "live.db")
	backupPath := filepath.Join(dir, "backup.db")

	src, err := database.NewDatabase(filepath.Join(dir, "src.db"), nil)
	require.NoError(t, err)
	require.NoError(t, src.DB.Create(&entities.Label{Name: "imported"}).Error)
	require.NoError(t, Export(context.Background(), src.DB, backupPath))
	require.NoError(t, src.Close())

	live, err := database.NewDatabase(livePath, nil)
	require.NoError(t, err)
	require.NoError(t, live.DB.Create(&entities.Label{Name: "original"}).Error)
	require.NoError(t, live.Close())

	require.NoError(t, Import(backupPath, livePath, nil))

	reopened := newTestDatabase(t, livePath)
	var labels []entities.Label
	require.NoError(t, reopened.DB.Find(&labels).Error)
	require.Len(t, labels, 1)
	assert.Equal(t, "imported", labels[0].Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".import-"), e.Name())
	}
}

func TestImport_InvalidLeavesLiveFile(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "live.db")
	live, err := database.NewDatabase(livePath, nil)
	require.NoError(t, err)
	require.NoError(t, live.Close())
	before, err := os.ReadFile(livePath)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.db")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Repeat("x", 4096)), 0o644))

	assert.ErrorIs(t, Import(bad, livePath, nil), ErrInvalidBackup)
	after, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLocalTarget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	target, err := NewLocalTarget(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", target.Name())

	require.NoError(t, target.Store(context.Background(), "a.db", strings.NewReader("data")))
	data, err := os.ReadFile(filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	// Names cannot escape the directory.
	require.NoError(t, target.Store(context.Background(), "../b.db", strings.NewReader("b")))
	_, err = os.Stat(filepath.Join(dir, "b.db"))
	assert.NoError(t, err)

	_, err = NewLocalTarget("")
	assert.Error(t, err)
}

func TestNewTarget(t *testing.T) {
	target, err := NewTarget(TargetConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", target.Name())

	target, err = NewTarget(TargetConfig{Type: "SFTP", Host: "backup.example", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "sftp", target.Name())
	sftpTarget := target.(*SFTPTarget)
	assert.Equal(t, DefaultSFTPPort, sftpTarget.cfg.Port)
	assert.Equal(t, "backups", sftpTarget.cfg.Dir)
	assert.Equal(t, DefaultTimeout, sftpTarget.cfg.Timeout)

	target, err = NewTarget(TargetConfig{Type: "ftp", Host: "ftp.example", Dir: "/logbook/"})
	require.NoError(t, err)
	ftpTarget := target.(*FTPTarget)
	assert.Equal(t, DefaultFTPPort, ftpTarget.cfg.Port)
	assert.Equal(t, "/logbook", ftpTarget.cfg.Dir)
	assert.Equal(t, "anonymous", ftpTarget.cfg.Username)

	_, err = NewTarget(TargetConfig{Type: "sftp", Password: "secret"})
	assert.ErrorContains(t, err, "host is required")
	_, err = NewTarget(TargetConfig{Type: "sftp", Host: "backup.example"})
	assert.ErrorContains(t, err, "no authentication method")
	_, err = NewTarget(TargetConfig{Type: "ftp"})
	assert.ErrorContains(t, err, "host is required")
	_, err = NewTarget(TargetConfig{Type: "dropbox"})
	assert.Error(t, err)
}

func TestSFTPTarget_MissingKeyFile(t *testing.T) {
	target, err := NewSFTPTarget(TargetConfig{Host: "backup.example", KeyFile: filepath.Join(t.TempDir(), "id_ed25519")})
	require.NoError(t, err)
	err = target.Store(context.Background(), "a.db", strings.NewReader("x"))
	assert.ErrorContains(t, err, "failed to read private key")
}

func TestService_Run(t *testing.T) {
	dir := t.TempDir()
	db := newTestDatabase(t, filepath.Join(dir, "live.db"))
	target, err := NewLocalTarget(filepath.Join(dir, "backups"))
	require.NoError(t, err)

	svc := NewService(db.DB, target, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exif_notes_database_2024-01-02_030405.db", result.Name)
	assert.Equal(t, "local", result.Target)
	assert.Positive(t, result.Size)
	assert.NoError(t, ValidateFile(filepath.Join(dir, "backups", result.Name)))
}
