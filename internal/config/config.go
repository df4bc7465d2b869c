package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Pictures
		ExifTool
		Geocoding
		Backup
		Tasks
		Log
		Metrics
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Pictures struct {
		Backend string // disk or s3
		Dir     string
		MaxSize uint // longest edge in pixels after compression
		Quality int  // JPEG quality 1-100

		S3Bucket    string
		S3Region    string
		S3Endpoint  string // optional, for S3-compatible services
		S3Prefix    string
		S3AccessKey string
		S3SecretKey string
	}
	ExifTool struct {
		Path           string
		PicturesPath   string
		FileEnding     string
		IgnoreWarnings bool
		Artist         string
		Copyright      string
	}
	Geocoding struct {
		Enabled   bool
		BaseURL   string
		UserAgent string
		Language  string
		Throttle  time.Duration
		CacheTTL  time.Duration
	}
	Backup struct {
		Enabled        bool
		Schedule       string // Cron format: "0 3 * * *" = daily at 03:00
		TargetType     string // local, sftp or ftp
		Dir            string
		Host           string
		Port           int
		Username       string
		Password       string
		KeyFile        string
		KnownHostsFile string
		Timeout        time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Log struct {
		Level string
	}
	Metrics struct {
		Enabled bool
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewViper returns a viper instance with every default set and environment
// variables bound under EnvPrefix.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", true)

	// Complementary pictures
	v.SetDefault("pictures_backend", PictureBackendDisk)
	v.SetDefault("pictures_dir", DefaultPicturesDir)
	v.SetDefault("pictures_max_size", 1024)
	v.SetDefault("pictures_quality", 80)
	v.SetDefault("pictures_s3_bucket", "")
	v.SetDefault("pictures_s3_region", "us-east-1")
	v.SetDefault("pictures_s3_endpoint", "")
	v.SetDefault("pictures_s3_prefix", "pictures")
	v.SetDefault("pictures_s3_access_key", "")
	v.SetDefault("pictures_s3_secret_key", "")

	// ExifTool command export
	v.SetDefault("exiftool_path", "exiftool")
	v.SetDefault("exiftool_pictures_path", "")
	v.SetDefault("exiftool_file_ending", ".jpg")
	v.SetDefault("exiftool_ignore_warnings", false)
	v.SetDefault("exiftool_artist", "")
	v.SetDefault("exiftool_copyright", "")

	// Reverse geocoding
	v.SetDefault("geocoding_enabled", true)
	v.SetDefault("geocoding_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding_user_agent", "exifnotes-logbook")
	v.SetDefault("geocoding_language", "")
	v.SetDefault("geocoding_throttle", "1s")
	v.SetDefault("geocoding_cache_ttl", "24h")

	// Database backups
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *")
	v.SetDefault("backup_target", "local")
	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("backup_host", "")
	v.SetDefault("backup_port", 0)
	v.SetDefault("backup_username", "")
	v.SetDefault("backup_password", "")
	v.SetDefault("backup_key_file", "")
	v.SetDefault("backup_known_hosts_file", "")
	v.SetDefault("backup_timeout", "30s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return v
}

// NewConfig reads the configuration from defaults and the environment.
func NewConfig() *Config {
	return FromViper(NewViper())
}

// Load reads the optional config file into v and builds the configuration.
// Environment variables and bound flags take precedence over the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds the configuration from v without validating it.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("port"),
			Host: v.GetString("host"),
		},
		Database: Database{
			Path: v.GetString("database_path"),
		},
		Pictures: Pictures{
			Backend:     v.GetString("pictures_backend"),
			Dir:         v.GetString("pictures_dir"),
			MaxSize:     v.GetUint("pictures_max_size"),
			Quality:     v.GetInt("pictures_quality"),
			S3Bucket:    v.GetString("pictures_s3_bucket"),
			S3Region:    v.GetString("pictures_s3_region"),
			S3Endpoint:  v.GetString("pictures_s3_endpoint"),
			S3Prefix:    v.GetString("pictures_s3_prefix"),
			S3AccessKey: v.GetString("pictures_s3_access_key"),
			S3SecretKey: v.GetString("pictures_s3_secret_key"),
		},
		ExifTool: ExifTool{
			Path:           v.GetString("exiftool_path"),
			PicturesPath:   v.GetString("exiftool_pictures_path"),
			FileEnding:     v.GetString("exiftool_file_ending"),
			IgnoreWarnings: v.GetBool("exiftool_ignore_warnings"),
			Artist:         v.GetString("exiftool_artist"),
			Copyright:      v.GetString("exiftool_copyright"),
		},
		Geocoding: Geocoding{
			Enabled:   v.GetBool("geocoding_enabled"),
			BaseURL:   v.GetString("geocoding_base_url"),
			UserAgent: v.GetString("geocoding_user_agent"),
			Language:  v.GetString("geocoding_language"),
			Throttle:  v.GetDuration("geocoding_throttle"),
			CacheTTL:  v.GetDuration("geocoding_cache_ttl"),
		},
		Backup: Backup{
			Enabled:        v.GetBool("backup_enabled"),
			Schedule:       v.GetString("backup_schedule"),
			TargetType:     v.GetString("backup_target"),
			Dir:            v.GetString("backup_dir"),
			Host:           v.GetString("backup_host"),
			Port:           v.GetInt("backup_port"),
			Username:       v.GetString("backup_username"),
			Password:       v.GetString("backup_password"),
			KeyFile:        v.GetString("backup_key_file"),
			KnownHostsFile: v.GetString("backup_known_hosts_file"),
			Timeout:        v.GetDuration("backup_timeout"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("tasks_enabled"),
			Workers:         v.GetInt("task_workers"),
			ReleaseAfter:    v.GetDuration("task_release_after"),
			CleanupInterval: v.GetDuration("task_cleanup_interval"),
		},
		Log: Log{
			Level: v.GetString("log_level"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("metrics_enabled"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("shutdown_timeout_in_seconds"),
		},
	}
}

// Validate reports settings that would only fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	switch c.Pictures.Backend {
	case PictureBackendDisk:
		if c.Pictures.Dir == "" {
			errs = append(errs, errors.New("pictures dir is required for the disk backend"))
		}
	case PictureBackendS3:
		if c.Pictures.S3Bucket == "" {
			errs = append(errs, errors.New("pictures s3 bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown pictures backend %q", c.Pictures.Backend))
	}
	if c.Pictures.Quality < 1 || c.Pictures.Quality > 100 {
		errs = append(errs, fmt.Errorf("pictures quality must be between 1 and 100, got %d", c.Pictures.Quality))
	}
	if c.Backup.Enabled {
		switch c.Backup.TargetType {
		case "local", "sftp", "ftp":
		default:
			errs = append(errs, fmt.Errorf("unknown backup target %q", c.Backup.TargetType))
		}
		if c.Backup.TargetType != "local" && c.Backup.Host == "" {
			errs = append(errs, errors.New("backup host is required for remote targets"))
		}
	}
	return errors.Join(errs...)
}
