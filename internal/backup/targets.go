package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	DefaultSFTPPort = 22
	DefaultFTPPort  = 21
	DefaultTimeout  = 30 * time.Second
)

// Target stores a backup file somewhere outside the database directory.
type Target interface {
	Name() string
	Store(ctx context.Context, name string, r io.Reader) error
}

// TargetConfig selects and configures a Target.
type TargetConfig struct {
	Type           string // local, sftp or ftp
	Dir            string // local directory or remote path
	Host           string
	Port           int
	Username       string
	Password       string
	KeyFile        string
	KnownHostsFile string
	Timeout        time.Duration
}

// NewTarget builds the target described by cfg.
func NewTarget(cfg TargetConfig) (Target, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return NewLocalTarget(cfg.Dir)
	case "sftp":
		return NewSFTPTarget(cfg)
	case "ftp":
		return NewFTPTarget(cfg)
	default:
		return nil, fmt.Errorf("unknown backup target %q", cfg.Type)
	}
}

// LocalTarget writes backups into a directory on the local filesystem.
type LocalTarget struct {
	dir string
}

func NewLocalTarget(dir string) (*LocalTarget, error) {
	if dir == "" {
		return nil, fmt.Errorf("local: directory is required")
	}
	return &LocalTarget{dir: dir}, nil
}

func (t *LocalTarget) Name() string { return "local" }

func (t *LocalTarget) Store(ctx context.Context, name string, r io.Reader) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("local: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(t.dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("local: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("local: write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("local: close backup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(t.dir, filepath.Base(name))); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("local: rename backup: %w", err)
	}
	return nil
}

// SFTPTarget uploads backups over SSH.
type SFTPTarget struct {
	cfg TargetConfig
}

func NewSFTPTarget(cfg TargetConfig) (*SFTPTarget, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("sftp: host is required")
	}
	if cfg.KeyFile == "" && cfg.Password == "" {
		return nil, fmt.Errorf("sftp: no authentication method provided")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSFTPPort
	}
	if cfg.Dir == "" {
		cfg.Dir = "backups"
	}
	cfg.Dir = strings.TrimRight(cfg.Dir, "/")
	return &SFTPTarget{cfg: cfg}, nil
}

func (t *SFTPTarget) Name() string { return "sftp" }

func (t *SFTPTarget) clientConfig() (*ssh.ClientConfig, error) {
	config := &ssh.ClientConfig{
		User:            t.cfg.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         t.cfg.Timeout,
	}
	if t.cfg.KnownHostsFile != "" {
		callback, err := knownhosts.New(t.cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: load known hosts: %w", err)
		}
		config.HostKeyCallback = callback
	}
	if t.cfg.KeyFile != "" {
		key, err := os.ReadFile(t.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("sftp: failed to parse private key: %w", err)
		}
		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	} else {
		config.Auth = []ssh.AuthMethod{ssh.Password(t.cfg.Password)}
	}
	return config, nil
}

func (t *SFTPTarget) connect(ctx context.Context) (*sftp.Client, error) {
	config, err := t.clientConfig()
	if err != nil {
		return nil, err
	}

	type connResult struct {
		client *sftp.Client
		err    error
	}
	resultChan := make(chan connResult, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
		sshConn, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			resultChan <- connResult{nil, fmt.Errorf("sftp: failed to connect: %w", err)}
			return
		}
		client, err := sftp.NewClient(sshConn)
		if err != nil {
			sshConn.Close()
			resultChan <- connResult{nil, fmt.Errorf("sftp: failed to create client: %w", err)}
			return
		}
		resultChan <- connResult{client, nil}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if res := <-resultChan; res.client != nil {
				res.client.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.client, res.err
	}
}

func (t *SFTPTarget) Store(ctx context.Context, name string, r io.Reader) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.MkdirAll(t.cfg.Dir); err != nil {
		return fmt.Errorf("sftp: failed to create directory %s: %w", t.cfg.Dir, err)
	}

	finalPath := path.Join(t.cfg.Dir, path.Base(name))
	tmpPath := finalPath + ".tmp"
	dst, err := client.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("sftp: failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		client.Remove(tmpPath)
		return fmt.Errorf("sftp: failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		client.Remove(tmpPath)
		return fmt.Errorf("sftp: failed to close file: %w", err)
	}
	if err := client.PosixRename(tmpPath, finalPath); err != nil {
		// Servers without the posix-rename extension refuse to overwrite.
		_ = client.Remove(finalPath)
		if err := client.Rename(tmpPath, finalPath); err != nil {
			client.Remove(tmpPath)
			return fmt.Errorf("sftp: failed to rename file: %w", err)
		}
	}
	return nil
}

// FTPTarget uploads backups to an FTP server.
type FTPTarget struct {
	cfg TargetConfig
}

func NewFTPTarget(cfg TargetConfig) (*FTPTarget, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ftp: host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultFTPPort
	}
	if cfg.Username == "" {
		cfg.Username = "anonymous"
	}
	cfg.Dir = strings.TrimRight(cfg.Dir, "/")
	return &FTPTarget{cfg: cfg}, nil
}

func (t *FTPTarget) Name() string { return "ftp" }

func (t *FTPTarget) Store(ctx context.Context, name string, r io.Reader) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(t.cfg.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("ftp: failed to connect: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(t.cfg.Username, t.cfg.Password); err != nil {
		return fmt.Errorf("ftp: login failed: %w", err)
	}

	remoteDir := t.cfg.Dir
	if remoteDir != "" {
		// MakeDir fails when the directory already exists.
		_ = conn.MakeDir(remoteDir)
	}
	finalPath := path.Join(remoteDir, path.Base(name))
	tmpPath := path.Join(remoteDir, "tmp-"+path.Base(name))
	if err := conn.Stor(tmpPath, r); err != nil {
		_ = conn.Delete(tmpPath)
		return fmt.Errorf("ftp: failed to upload: %w", err)
	}
	if err := conn.Rename(tmpPath, finalPath); err != nil {
		_ = conn.Delete(tmpPath)
		return fmt.Errorf("ftp: failed to rename: %w", err)
	}
	return nil
}
