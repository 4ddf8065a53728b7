package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"agency-backend/internal/logger"
)

// CredentialProvider is one source of a secret. Lookup returns "" when the
// source has no value; an error means the source exists but is unreadable.
type CredentialProvider interface {
	Name() string
	Lookup() (string, error)
}

// EnvProvider reads a secret from the process environment.
type EnvProvider struct {
	Key string
}

func (p EnvProvider) Name() string { return "env:" + p.Key }

func (p EnvProvider) Lookup() (string, error) {
	return strings.TrimSpace(os.Getenv(p.Key)), nil
}

// FileProvider reads a secret from a dotenv-formatted file on local disk.
// The file is optional.
type FileProvider struct {
	Path string
	Key  string
}

func (p FileProvider) Name() string { return "file:" + p.Path }

func (p FileProvider) Lookup() (string, error) {
	if p.Path == "" {
		return "", nil
	}

	values, err := godotenv.Read(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", p.Path, err)
	}

	return strings.TrimSpace(values[p.Key]), nil
}

// Resolve returns the first non-blank value in provider order, or "".
// Unreadable sources are logged and skipped.
func Resolve(providers ...CredentialProvider) string {
	for _, p := range providers {
		val, err := p.Lookup()
		if err != nil {
			logger.Log.Warnw("credential source unreadable", "source", p.Name(), "error", err)
			continue
		}
		if val != "" {
			logger.Log.Debugw("credential resolved", "source", p.Name())
			return val
		}
	}
	return ""
}
