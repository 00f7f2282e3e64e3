package filesystem

import (
	"os"

	"audio-extract-service/domain/extraction"
)

// Checker implements extraction.FileChecker and extraction.FileReader using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if a regular file exists at path
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads the whole file at path
func (c *Checker) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Ensure Checker implements the extraction ports
var (
	_ extraction.FileChecker = (*Checker)(nil)
	_ extraction.FileReader  = (*Checker)(nil)
)
