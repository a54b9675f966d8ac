package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/fileutil"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/snapshot"
)

// Config is read once at process start from the environment, per
// spec.md §6.2.
type Config struct {
	EngineHostURL   string
	EngineAPIKey    string
	Timeout         time.Duration
	SnapshotRoot    string
	RequireApproval bool
}

func loadConfig() (Config, error) {
	cfg := Config{
		EngineHostURL: os.Getenv("N8N_HOST_URL"),
		EngineAPIKey:  os.Getenv("N8N_API_KEY"),
		Timeout:       30 * time.Second,
	}

	if cfg.EngineHostURL == "" {
		return Config{}, fmt.Errorf("N8N_HOST_URL is required")
	}
	if cfg.EngineAPIKey == "" {
		return Config{}, fmt.Errorf("N8N_API_KEY is required")
	}

	if ms := os.Getenv("N8N_TIMEOUT_MS"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil {
			return Config{}, fmt.Errorf("N8N_TIMEOUT_MS: %w", err)
		}
		cfg.Timeout = time.Duration(n) * time.Millisecond
	}

	root := os.Getenv("N8N_SNAPSHOT_ROOT")
	if root == "" {
		defaultRoot, err := snapshot.DefaultRoot()
		if err != nil {
			return Config{}, fmt.Errorf("resolve default snapshot root: %w", err)
		}
		root = defaultRoot
	} else {
		// An operator-supplied root must be absolute: Store builds every
		// workflow/snapshot path by joining onto it, and a relative root
		// would resolve against whatever directory the process happens to
		// be started from rather than where the operator intended.
		cleaned, err := fileutil.ValidateAbsolutePath(root)
		if err != nil {
			return Config{}, fmt.Errorf("N8N_SNAPSHOT_ROOT: %w", err)
		}
		root = cleaned
	}
	cfg.SnapshotRoot = root

	switch os.Getenv("N8N_REQUIRE_APPROVAL") {
	case "true", "1":
		cfg.RequireApproval = true
	}

	return cfg, nil
}
