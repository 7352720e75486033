// Package session maps project paths to Claude Code session directories and
// locates the JSONL transcript files inside them.
package session

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ErrNoSession is returned when no session directory can be discovered.
// Callers treat it as a distinct startup failure with its own user message.
var ErrNoSession = errors.New("no session directory found")

// SubagentsDirName is the fixed-name subdirectory holding auxiliary streams.
const SubagentsDirName = "subagents"

const logExt = ".jsonl"

// DefaultProjectsRoot returns ~/.claude/projects.
func DefaultProjectsRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// PathToID derives the session identifier for a project path: one trailing
// separator is stripped, then every remaining separator becomes '-'.
// The mapping is deterministic, and paths differing only by a trailing
// separator map to the same identifier.
func PathToID(path string) string {
	sep := string(filepath.Separator)
	path = strings.TrimSuffix(path, sep)
	return strings.ReplaceAll(path, sep, "-")
}

// Dir returns the session directory for projectPath under projectsRoot.
func Dir(projectsRoot, projectPath string) string {
	return filepath.Join(projectsRoot, PathToID(projectPath))
}

// MostRecent returns the most recently modified session directory under
// projectsRoot, for the "latest session globally" mode. ErrNoSession is
// returned when the root is missing or holds no session directories.
func MostRecent(projectsRoot string) (string, error) {
	entries, err := os.ReadDir(projectsRoot)
	if err != nil {
		return "", ErrNoSession
	}

	var (
		newest     string
		newestTime int64
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestTime {
			newest = filepath.Join(projectsRoot, e.Name())
			newestTime = info.ModTime().UnixNano()
		}
	}

	if newest == "" {
		return "", ErrNoSession
	}
	return newest, nil
}

// Resolve picks the session directory to monitor. An explicit projectPath is
// mapped through PathToID; otherwise the most recent session wins.
func Resolve(projectsRoot, projectPath string) (string, error) {
	if projectPath != "" {
		dir := Dir(projectsRoot, projectPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return "", ErrNoSession
		}
		return dir, nil
	}
	return MostRecent(projectsRoot)
}

// Locate returns the transcript files for a session directory: every *.jsonl
// directly inside it, plus *.jsonl one level deep inside subagents/. Order is
// stable (sorted per directory) so fingerprints are reproducible. A missing
// directory yields an empty set, not an error.
func Locate(dir string) []string {
	files := listLogs(dir)
	files = append(files, listLogs(filepath.Join(dir, SubagentsDirName))...)
	return lo.Uniq(files)
}

func listLogs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[session] reading %s: %v", dir, err)
		}
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files
}
