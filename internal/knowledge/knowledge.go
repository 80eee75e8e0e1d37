// Package knowledge holds the RiskAtlas product knowledge base injected into
// every chat as system context.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed knowledge_base.md
var embedded string

var ErrEmpty = errors.New("knowledge base is empty")

// Default returns the knowledge base compiled into the binary.
func Default() string {
	return embedded
}

// Load returns the embedded knowledge base, or the contents of path when set.
// It is called once at startup; the result is never mutated afterwards.
func Load(path string) (string, error) {
	if path == "" {
		return embedded, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return string(data), nil
}
