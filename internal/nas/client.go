// Package nas provides SMB file operations against a NAS share.
package nas

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cloudsoda/go-smb2"

	"github.com/captionmate/captionmate/internal/config"
)

// FileEntry represents a file or directory entry on the NAS.
type FileEntry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	IsDir        bool      `json:"is_dir"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modified_time"`
}

// SizeHuman returns the entry size in human readable form.
func (e FileEntry) SizeHuman() string {
	if e.IsDir {
		return "-"
	}
	const unit = 1024
	if e.Size < unit {
		return fmt.Sprintf("%d B", e.Size)
	}
	div, exp := int64(unit), 0
	for n := e.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(e.Size)/float64(div), "KMGTPE"[exp])
}

// TreeNode is a directory tree rooted at Entry.
type TreeNode struct {
	Entry    FileEntry  `json:"entry"`
	Children []TreeNode `json:"children,omitempty"`
}

// Client is an SMB connection to the NAS. Paths are share-qualified and
// slash-separated: "/Share/dir/file.mkv". The root path "/" lists shares.
// Not safe for concurrent use.
type Client struct {
	cfg     config.NASConfig
	session *smb2.Session
	shares  map[string]*smb2.Share
}

// NewClient creates an unconnected client.
func NewClient(cfg config.NASConfig) *Client {
	return &Client{cfg: cfg, shares: make(map[string]*smb2.Share)}
}

// Connect establishes the SMB session.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.Protocol != "smb" {
		return fmt.Errorf("protocol %q not implemented", c.cfg.Protocol)
	}
	if c.cfg.Host == "" {
		return fmt.Errorf("no NAS host configured")
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     c.cfg.Username,
			Password: c.cfg.Password,
			Domain:   c.cfg.Domain,
		},
	}

	session, err := d.Dial(ctx, c.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to connect to NAS: %w", err)
	}
	c.session = session

	return nil
}

// Close unmounts every share and logs off the session.
func (c *Client) Close() error {
	for name, share := range c.shares {
		share.Umount()
		delete(c.shares, name)
	}
	if c.session != nil {
		err := c.session.Logoff()
		c.session = nil
		return err
	}
	return nil
}

// ListShares returns the non-administrative share names.
func (c *Client) ListShares() ([]string, error) {
	if c.session == nil {
		return nil, fmt.Errorf("not connected to NAS")
	}

	names, err := c.session.ListSharenames()
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	var shares []string
	for _, name := range names {
		if strings.HasSuffix(name, "$") {
			continue
		}
		shares = append(shares, name)
	}
	sort.Strings(shares)

	return shares, nil
}

// SplitPath splits a share-qualified path into the share name and the
// path inside the share ("" for the share root).
func SplitPath(p string) (share, rest string, err error) {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "", "", fmt.Errorf("path must specify a share")
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

func (c *Client) mount(shareName string) (*smb2.Share, error) {
	if c.session == nil {
		return nil, fmt.Errorf("not connected to NAS")
	}
	if share, ok := c.shares[shareName]; ok {
		return share, nil
	}
	share, err := c.session.Mount(shareName)
	if err != nil {
		return nil, fmt.Errorf("failed to mount share %s: %w", shareName, err)
	}
	c.shares[shareName] = share
	return share, nil
}

// insidePath converts the share-relative path to what go-smb2 expects.
func insidePath(rest string) string {
	if rest == "" {
		return "."
	}
	return rest
}

// ListDirectory lists the entries under a share-qualified path. At the
// root it lists shares as directories. Pattern, when non-empty, filters
// file names with path.Match semantics.
func (c *Client) ListDirectory(p, pattern string) ([]FileEntry, error) {
	if p == "/" || p == "" {
		shares, err := c.ListShares()
		if err != nil {
			return nil, err
		}
		entries := make([]FileEntry, 0, len(shares))
		for _, name := range shares {
			entries = append(entries, FileEntry{Name: name, Path: "/" + name, IsDir: true})
		}
		return entries, nil
	}

	shareName, rest, err := SplitPath(p)
	if err != nil {
		return nil, err
	}
	share, err := c.mount(shareName)
	if err != nil {
		return nil, err
	}

	infos, err := share.ReadDir(insidePath(rest))
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", p, err)
	}

	var entries []FileEntry
	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}
		if pattern != "" && !info.IsDir() {
			ok, matchErr := path.Match(pattern, name)
			if matchErr != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern, matchErr)
			}
			if !ok {
				continue
			}
		}
		entry := FileEntry{
			Name:         name,
			Path:         strings.TrimRight(p, "/") + "/" + name,
			IsDir:        info.IsDir(),
			ModifiedTime: info.ModTime(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return entries, nil
}

// Tree builds a directory tree down to maxDepth levels. Unreadable
// subdirectories become leaf nodes.
func (c *Client) Tree(p string, maxDepth int) (TreeNode, error) {
	root := TreeNode{Entry: FileEntry{Name: path.Base(strings.TrimRight(p, "/")), Path: p, IsDir: true}}
	if maxDepth <= 0 {
		return root, nil
	}

	entries, err := c.ListDirectory(p, "")
	if err != nil {
		return root, err
	}

	for _, entry := range entries {
		node := TreeNode{Entry: entry}
		if entry.IsDir {
			child, err := c.Tree(entry.Path, maxDepth-1)
			if err == nil {
				node.Children = child.Children
			}
		}
		root.Children = append(root.Children, node)
	}

	return root, nil
}

// PathExists reports whether the share-qualified path exists.
func (c *Client) PathExists(p string) bool {
	if p == "/" {
		return true
	}
	shareName, rest, err := SplitPath(p)
	if err != nil {
		return false
	}
	share, err := c.mount(shareName)
	if err != nil {
		return false
	}
	_, err = share.Stat(insidePath(rest))
	return err == nil
}

// IsDirectory reports whether the path exists and is a directory.
func (c *Client) IsDirectory(p string) bool {
	if p == "/" {
		return true
	}
	shareName, rest, err := SplitPath(p)
	if err != nil {
		return false
	}
	share, err := c.mount(shareName)
	if err != nil {
		return false
	}
	info, err := share.Stat(insidePath(rest))
	return err == nil && info.IsDir()
}

// Rename moves a file within its share. Cross-share renames are not
// supported.
func (c *Client) Rename(oldPath, newPath string) error {
	oldShare, oldRest, err := SplitPath(oldPath)
	if err != nil {
		return err
	}
	newShare, newRest, err := SplitPath(newPath)
	if err != nil {
		return err
	}
	if oldShare != newShare {
		return fmt.Errorf("cannot rename across shares (%s -> %s)", oldShare, newShare)
	}

	share, err := c.mount(oldShare)
	if err != nil {
		return err
	}
	if err := share.Rename(oldRest, newRest); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}

	return nil
}

// Delete removes a file on the NAS.
func (c *Client) Delete(p string) error {
	shareName, rest, err := SplitPath(p)
	if err != nil {
		return err
	}
	share, err := c.mount(shareName)
	if err != nil {
		return err
	}
	if err := share.Remove(rest); err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}

// Upload copies a local file to the share-qualified remote path. The
// remote file is replaced when overwrite is set; otherwise an existing
// target is an error.
func (c *Client) Upload(localPath, remotePath string, overwrite bool) error {
	shareName, rest, err := SplitPath(remotePath)
	if err != nil {
		return err
	}
	if rest == "" {
		return fmt.Errorf("upload target must be a file path, got share root")
	}
	share, err := c.mount(shareName)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, statErr := share.Stat(rest); statErr == nil {
			return fmt.Errorf("remote file already exists: %s", remotePath)
		}
	}

	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer local.Close()

	if dir := path.Dir(rest); dir != "." {
		if err := share.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create remote directory: %w", err)
		}
	}

	remote, err := share.Create(rest)
	if err != nil {
		return fmt.Errorf("failed to create remote file: %w", err)
	}

	if _, err := io.Copy(remote, local); err != nil {
		remote.Close()
		share.Remove(rest)
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	return remote.Close()
}

// WriteFile writes data to a share-qualified remote path, creating
// parent directories as needed. The remote file is replaced when
// overwrite is set; otherwise an existing target is an error.
func (c *Client) WriteFile(remotePath string, data []byte, overwrite bool) error {
	shareName, rest, err := SplitPath(remotePath)
	if err != nil {
		return err
	}
	if rest == "" {
		return fmt.Errorf("write target must be a file path, got share root")
	}
	share, err := c.mount(shareName)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, statErr := share.Stat(rest); statErr == nil {
			return fmt.Errorf("remote file already exists: %s", remotePath)
		}
	}

	if dir := path.Dir(rest); dir != "." {
		if err := share.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create remote directory: %w", err)
		}
	}

	remote, err := share.Create(rest)
	if err != nil {
		return fmt.Errorf("failed to create remote file: %w", err)
	}

	if _, err := remote.Write(data); err != nil {
		remote.Close()
		share.Remove(rest)
		return fmt.Errorf("failed to write %s: %w", remotePath, err)
	}

	return remote.Close()
}
