// Package repository reads exercise snapshots (template or solution) as
// path→content maps, from a git ref or from a checked-out directory.
package repository

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-solentry/internal/git"
	"github.com/jensroland/git-solentry/internal/record"
)

// Source yields one snapshot of a repository.
type Source interface {
	Files(ctx context.Context) (map[string]string, error)
}

// GitRef reads the tree of Ref in the repository at Root.
type GitRef struct {
	Root string
	Ref  string
}

func (g GitRef) Files(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := git.ReadTree(g.Root, g.Ref)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.Ref, err)
	}
	return files, nil
}

// Dir reads every text file below a directory. Version control metadata
// and binary files are skipped.
type Dir struct {
	Path string
}

var skipDirs = map[string]bool{".git": true, ".hg": true, ".svn": true, ".solentry": true}

func (d Dir) Files(ctx context.Context) (map[string]string, error) {
	root, err := filepath.Abs(d.Path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", d.Path)
	}

	files := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && skipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.IndexByte(data, 0) >= 0 {
			return nil
		}
		files[record.RelativizePath(path, root)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.Path, err)
	}
	return files, nil
}

// New picks a source by kind ("git" or "dir"). For git, location is a ref
// in the repository at root; for dir it is a path.
func New(kind, root, location string) (Source, error) {
	switch strings.ToLower(kind) {
	case "git", "":
		return GitRef{Root: root, Ref: location}, nil
	case "dir":
		if !filepath.IsAbs(location) {
			location = filepath.Join(root, location)
		}
		return Dir{Path: location}, nil
	default:
		return nil, fmt.Errorf("unknown repository source %q", kind)
	}
}
