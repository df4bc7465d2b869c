package config

// Default paths for the logbook data
const (
	// DefaultDatabasePath is the default path for the logbook database
	DefaultDatabasePath = "./exif_notes.db"

	// DefaultPicturesDir is where complementary pictures are kept on disk
	DefaultPicturesDir = "./pictures"

	// DefaultBackupDir is the local backup directory, or the remote path for
	// SFTP and FTP targets
	DefaultBackupDir = "./backups"
)

// EnvPrefix is prepended to every environment variable, e.g.
// EXIFNOTES_DATABASE_PATH.
const EnvPrefix = "EXIFNOTES"

const (
	PictureBackendDisk = "disk"
	PictureBackendS3   = "s3"
)
