// Package editor implements the staged virtual filesystem all artifact
// mutations go through. Reads fall through to the base filesystem, writes
// accumulate in an in-memory overlay, and nothing reaches the base until
// Commit. Tests run entirely on a memfs base.
package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Editor is a staging overlay over a billy.Filesystem. It is not safe for
// concurrent use; callers sharing one editor serialize their calls.
type Editor struct {
	base    billy.Filesystem
	staged  billy.Filesystem
	deleted map[string]bool
}

// New returns an editor staging on top of base.
func New(base billy.Filesystem) *Editor {
	return &Editor{
		base:    base,
		staged:  memfs.New(),
		deleted: map[string]bool{},
	}
}

// NewOS returns an editor over the OS filesystem rooted at /.
func NewOS() *Editor {
	return New(osfs.New("/"))
}

// norm gives every path a canonical slash form so staged and base lookups
// agree.
func norm(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
}

// Exists reports whether the path is visible through the staged view.
func (e *Editor) Exists(p string) bool {
	p = norm(p)
	if e.deleted[p] {
		return false
	}
	if _, err := e.staged.Stat(p); err == nil {
		return true
	}
	_, err := e.base.Stat(p)
	return err == nil
}

// Read returns the staged content when present, the base content otherwise.
func (e *Editor) Read(p string) ([]byte, error) {
	p = norm(p)
	if e.deleted[p] {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	if _, err := e.staged.Stat(p); err == nil {
		return util.ReadFile(e.staged, p)
	}
	return util.ReadFile(e.base, p)
}

// Write stages content for the path, superseding any earlier delete.
func (e *Editor) Write(p string, content []byte) error {
	p = norm(p)
	delete(e.deleted, p)
	if err := util.WriteFile(e.staged, p, content, 0o644); err != nil {
		return fmt.Errorf("stage write %s: %w", p, err)
	}
	return nil
}

// Delete stages removal of the path. Deleting an absent path is a no-op.
func (e *Editor) Delete(p string) {
	p = norm(p)
	if _, err := e.staged.Stat(p); err == nil {
		_ = e.staged.Remove(p)
	}
	e.deleted[p] = true
}

// Rename stages a move: the content becomes visible at newPath and the old
// path is deleted.
func (e *Editor) Rename(oldPath, newPath string) error {
	content, err := e.Read(oldPath)
	if err != nil {
		return fmt.Errorf("rename %s: %w", oldPath, err)
	}
	if err := e.Write(newPath, content); err != nil {
		return err
	}
	e.Delete(oldPath)
	return nil
}

// ReadJSON unmarshals the file at p into v.
func (e *Editor) ReadJSON(p string, v any) error {
	content, err := e.Read(p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("parse %s: %w", norm(p), err)
	}
	return nil
}

// WriteJSON stages v as indented JSON with a trailing newline.
func (e *Editor) WriteJSON(p string, v any) error {
	content, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", norm(p), err)
	}
	return e.Write(p, append(content, '\n'))
}

// CopyTemplate renders the named template from src with data and stages the
// result at dest.
func (e *Editor) CopyTemplate(src fs.FS, name, dest string, data any) error {
	tmpl, err := template.ParseFS(src, name)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return e.Write(dest, buf.Bytes())
}

// StagedFiles lists every path with pending written content, sorted.
func (e *Editor) StagedFiles() []string {
	var files []string
	_ = util.Walk(e.staged, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		files = append(files, norm(p))
		return nil
	})
	sort.Strings(files)
	return files
}

// DeletedFiles lists every path with a pending delete, sorted.
func (e *Editor) DeletedFiles() []string {
	var files []string
	for p := range e.deleted {
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}

// Commit flushes staged writes to the base filesystem, then applies staged
// deletes. The editor stays usable afterwards.
func (e *Editor) Commit() error {
	for _, p := range e.StagedFiles() {
		content, err := util.ReadFile(e.staged, p)
		if err != nil {
			return fmt.Errorf("flush %s: %w", p, err)
		}
		if err := util.WriteFile(e.base, p, content, 0o644); err != nil {
			return fmt.Errorf("flush %s: %w", p, err)
		}
	}
	for p := range e.deleted {
		if err := e.base.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	e.staged = memfs.New()
	e.deleted = map[string]bool{}
	return nil
}
