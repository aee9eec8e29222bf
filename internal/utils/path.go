package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// PathResolver provides robust path resolution for corpus and model files
type PathResolver struct {
	executablePath string
	executableDir  string
	workingDir     string
}

// NewPathResolver creates a new path resolver anchored at the executable location
func NewPathResolver() (*PathResolver, error) {
	// Get the path of the currently running executable
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not determine working directory: %v", err)
		cwd = "."
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		workingDir:     cwd,
	}

	log.Debugf("PathResolver initialized: exec=%s, cwd=%s", execPath, cwd)

	return pr, nil
}

// ResolveFile locates an existing file, trying the path as given, then
// relative to the working directory, then relative to the executable.
// Returns the first candidate that is a regular file, or the original path
// with os.ErrNotExist when nothing matched.
func (pr *PathResolver) ResolveFile(userPath string) (string, error) {
	if userPath == "" {
		return "", os.ErrNotExist
	}
	for _, candidate := range pr.candidates(userPath) {
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			log.Debugf("Resolved %s to %s", userPath, candidate)
			return candidate, nil
		}
		log.Debugf("File candidate not valid: %s", candidate)
	}
	return userPath, os.ErrNotExist
}

// ResolveWritable returns where a new file at userPath should be written,
// anchoring relative paths at the working directory.
func (pr *PathResolver) ResolveWritable(userPath string) string {
	if filepath.IsAbs(userPath) {
		return userPath
	}
	return filepath.Join(pr.workingDir, userPath)
}

// candidates lists the locations tried for a user supplied path, in order
// of preference.
func (pr *PathResolver) candidates(userPath string) []string {
	if filepath.IsAbs(userPath) {
		return []string{userPath}
	}
	return []string{
		filepath.Join(pr.workingDir, userPath),
		filepath.Join(pr.executableDir, userPath),
	}
}

// ExecutableDir returns the directory containing the executable
func (pr *PathResolver) ExecutableDir() string {
	return pr.executableDir
}

// ExecutablePath returns the full path to the executable
func (pr *PathResolver) ExecutablePath() string {
	return pr.executablePath
}
