package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePaths makes relative file paths relative to the config file's
// directory instead of the working directory, and expands a leading "~/".
func (c *Config) resolvePaths(baseDir string) {
	for _, p := range []*string{
		&c.Models.Sentence,
		&c.Models.Token,
		&c.Models.POS,
		&c.Models.Lemma,
		&c.Classifier.Corpus,
		&c.Classifier.ModelPath,
	} {
		*p = resolvePath(baseDir, *p)
	}
}

func resolvePath(baseDir, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
