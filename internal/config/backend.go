package config

import (
	"fmt"
	"strings"
)

const (
	// BackendRemote sends numeric-tone text to an HTTP synthesis server.
	BackendRemote = "remote"
	// BackendCLI pipes numeric-tone text through a local executable.
	BackendCLI = "cli"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendRemote
	}
	switch backend {
	case BackendRemote, BackendCLI:
		return backend, nil
	case "http":
		return BackendRemote, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s|http)",
			raw,
			BackendRemote,
			BackendCLI,
		)
	}
}
