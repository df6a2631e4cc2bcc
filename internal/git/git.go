// Package git wraps the git plumbing commands used to read the template
// and solution of an exercise from one repository.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

func run(root string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %s", args[0], msg)
	}
	return out, nil
}

// TopLevel returns the root of the repository containing dir.
func TopLevel(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// RevParse resolves a ref to its commit SHA.
func RevParse(root, ref string) (string, error) {
	out, err := run(root, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ShowFile retrieves file content at a given ref (e.g., "HEAD").
func ShowFile(root, ref, file string) (string, error) {
	out, err := run(root, "show", ref+":"+file)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ListFiles returns the paths of all files in the tree of ref.
func ListFiles(root, ref string) ([]string, error) {
	out, err := run(root, "ls-tree", "-r", "-z", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(string(out), "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// ReadTree returns path→content for every text file at ref. Binary files
// (containing a NUL byte) are skipped.
func ReadTree(root, ref string) (map[string]string, error) {
	files, err := ListFiles(root, ref)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]string, len(files))
	for _, f := range files {
		content, err := ShowFile(root, ref, f)
		if err != nil {
			return nil, fmt.Errorf("read %s at %s: %w", f, ref, err)
		}
		if strings.IndexByte(content, 0) >= 0 {
			continue
		}
		tree[f] = content
	}
	return tree, nil
}

// Diff returns the unified diff from one ref to another, with rename
// detection.
func Diff(root, from, to string) (string, error) {
	out, err := run(root, "diff", "--no-color", "--no-ext-diff", "-M", from, to)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
