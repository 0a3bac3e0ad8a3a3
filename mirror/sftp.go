package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"webup/wplocal/utils"
)

// SFTPRemote lists and reads the production files over SFTP.
type SFTPRemote struct {
	conn   *ssh.Client
	client *sftp.Client
	root   string
}

func Dial(cfg Config) (*SFTPRemote, error) {
	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("Unable to read the key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("Unable to parse the key file: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		callback, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("Unable to load the known hosts: %w", err)
		}
		hostKeyCallback = callback
	} else {
		utils.Warn("SFTP_KNOWN_HOSTS is not set, the host key of %s is not verified", cfg.Host)
	}

	conn, err := ssh.Dial("tcp", net.JoinHostPort(cfg.Host, cfg.Port), &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to %s: %w", cfg.Host, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Unable to start the SFTP session: %w", err)
	}

	return &SFTPRemote{conn: conn, client: client, root: path.Clean(cfg.RemotePath)}, nil
}

// List walks the remote root. Links to files are listed with the size and
// time of their target; links to directories and broken links are skipped.
func (r *SFTPRemote) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var err error

	walker := r.client.Walk(r.root)
	for walker.Step() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = walker.Err(); err != nil {
			return nil, fmt.Errorf("Unable to list %s: %w", walker.Path(), err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(walker.Path(), r.root), "/")
		if rel == "" {
			continue
		}
		info := walker.Stat()
		if info.Mode()&os.ModeSymlink != 0 {
			info, err = r.resolve(walker.Path(), rel)
			if err != nil {
				return nil, err
			}
			if info == nil {
				continue
			}
		}
		entries = append(entries, Entry{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}

	return entries, nil
}

func (r *SFTPRemote) resolve(remotePath string, rel string) (os.FileInfo, error) {
	info, err := r.client.Stat(remotePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			utils.Warn("%s is a broken link, skipped", rel)
			return nil, nil
		}
		return nil, fmt.Errorf("Unable to follow %s: %w", rel, err)
	}
	if info.IsDir() {
		utils.Warn("%s links to a directory, skipped", rel)
		return nil, nil
	}
	return info, nil
}

func (r *SFTPRemote) Open(rel string) (io.ReadCloser, error) {
	return r.client.Open(path.Join(r.root, rel))
}

func (r *SFTPRemote) Close() error {
	err := r.client.Close()
	if r.conn != nil {
		return r.conn.Close()
	}
	return err
}
