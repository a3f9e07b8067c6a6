package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// SFTPSettings locates a host serving an endpoints document.
type SFTPSettings struct {
	Addr       string
	User       string
	Password   string
	PrivateKey string
	Timeout    time.Duration
}

// DialSFTP opens an SFTP session. The returned close func releases both the
// SFTP client and the SSH connection.
func DialSFTP(settings SFTPSettings) (*sftp.Client, func() error, error) {
	auth, err := authMethods(settings)
	if err != nil {
		return nil, nil, err
	}
	timeout := settings.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	addr := settings.Addr
	if !strings.Contains(addr, ":") {
		addr += ":22"
	}

	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            settings.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ssh dial failed: %w", err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("start sftp: %w", err)
	}
	closeFn := func() error {
		cerr := client.Close()
		if err := conn.Close(); err != nil && cerr == nil {
			cerr = err
		}
		return cerr
	}
	return client, closeFn, nil
}

func authMethods(settings SFTPSettings) ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 2)
	if key := strings.TrimSpace(settings.PrivateKey); key != "" {
		data := []byte(key)
		if !strings.Contains(key, "PRIVATE KEY") {
			var err error
			data, err = os.ReadFile(key)
			if err != nil {
				return nil, fmt.Errorf("read ssh private key: %w", err)
			}
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parse ssh private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if password := strings.TrimSpace(settings.Password); password != "" {
		methods = append(methods, ssh.Password(password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("no authentication method provided")
	}
	return methods, nil
}

// SFTP applies a YAML endpoints document read from a remote host.
type SFTP struct {
	Client *sftp.Client
	Path   string
}

func (s SFTP) Configure(ctx context.Context, cfg netconfig.Config) error {
	if s.Client == nil {
		return fmt.Errorf("sftp client is required")
	}
	f, err := s.Client.Open(s.Path)
	if err != nil {
		return errors.Wrapf(err, "open remote endpoints %s", s.Path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrapf(err, "read remote endpoints %s", s.Path)
	}
	if err := YAML(data).Configure(ctx, cfg); err != nil {
		return errors.Wrapf(err, "remote endpoints %s", s.Path)
	}
	return nil
}
