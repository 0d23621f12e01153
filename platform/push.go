// Copyright 2023 Skypipe Authors <dev@skypipe.io>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package platform

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/skypipe/skypipe-cli/api"
	"golang.org/x/crypto/ssh"
)

const (
	ProtocolRsync = "rsync"
	ProtocolSFTP  = "sftp"
)

// PushCode transfers the payload directory at localPath to the given push
// endpoint. With quiet set, transfer-tool output is captured and only
// surfaced on failure.
func (d *Directory) PushCode(ctx context.Context, endpoint *api.PushEndpoint, localPath string, quiet bool) error {
	switch endpoint.Protocol {
	case ProtocolRsync:
		return rsyncPush(ctx, endpoint.URI, localPath, quiet)
	case ProtocolSFTP:
		return d.sftpPush(ctx, endpoint.URI, localPath)
	}

	return fmt.Errorf("unsupported push protocol %q", endpoint.Protocol)
}

func rsyncPush(ctx context.Context, uri string, localPath string, quiet bool) error {
	source := strings.TrimSuffix(localPath, "/") + "/"
	args := []string{"-azH", "--delete", "--exclude", ".git", source, uri}

	cmd := exec.CommandContext(ctx, "rsync", args...)

	if quiet {
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("rsync push to %s failed: %v\n%s", uri, err, out)
		}
		return nil
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rsync push to %s failed: %w", uri, err)
	}

	return nil
}

// sftpPush uploads the payload tree over sftp. The endpoint URI has the form
// sftp://user@host[:port]/base/path.
func (d *Directory) sftpPush(ctx context.Context, uri string, localPath string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid sftp push endpoint %q: %w", uri, err)
	}

	if d.sshKeyPath == "" {
		return fmt.Errorf("sftp push requires an ssh key, set `ssh_key` in the config")
	}

	keyBytes, err := ioutil.ReadFile(d.sshKeyPath)
	if err != nil {
		return fmt.Errorf("unable to read ssh key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return fmt.Errorf("unable to parse ssh key: %w", err)
	}

	host := parsed.Host
	if parsed.Port() == "" {
		host += ":22"
	}

	config := &ssh.ClientConfig{
		User:            parsed.User.Username(),
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	sshClient, err := ssh.Dial("tcp", host, config)
	if err != nil {
		return fmt.Errorf("sftp push: ssh dial %s: %w", host, err)
	}
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp push: %w", err)
	}
	defer sftpClient.Close()

	return uploadTree(ctx, sftpClient, localPath, parsed.Path)
}

func uploadTree(ctx context.Context, client *sftp.Client, localPath string, remoteBase string) error {
	return filepath.Walk(localPath, func(local string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		relative, err := filepath.Rel(localPath, local)
		if err != nil {
			return err
		}
		remote := path.Join(remoteBase, filepath.ToSlash(relative))

		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return client.MkdirAll(remote)
		}

		localFile, err := os.Open(local)
		if err != nil {
			return err
		}
		defer localFile.Close()

		remoteFile, err := client.Create(remote)
		if err != nil {
			return fmt.Errorf("sftp create %s: %w", remote, err)
		}
		defer remoteFile.Close()

		if _, err := io.Copy(remoteFile, localFile); err != nil {
			return fmt.Errorf("sftp upload %s: %w", remote, err)
		}

		return nil
	})
}
