package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/stitchworks/stitch/internal/config"
	"github.com/stitchworks/stitch/internal/contextgen"
	"github.com/stitchworks/stitch/internal/project"
	"github.com/stitchworks/stitch/internal/session"
	"github.com/stitchworks/stitch/internal/workspace"
)

type runtimeEnv struct {
	ProjectRoot string
	ProjectID   string
	Snapshot    []workspace.FileRecord
	Index       *contextgen.Index
	Store       *session.Store
}

func (r *runtimeEnv) Close() {
	if r.Index != nil {
		r.Index.Close()
	}
	if r.Store != nil {
		r.Store.Close()
	}
}

func prepareRuntimeEnv(ctx context.Context, projectFlag, dbFlag string) (*runtimeEnv, error) {
	projectRoot := projectFlag
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	loader, err := project.NewLoader(absRoot)
	if err != nil {
		return nil, err
	}

	snapshot, err := loader.Load()
	if err != nil {
		return nil, err
	}
	log.Printf("Project root: %s (%d files)", absRoot, len(snapshot))

	index, err := contextgen.NewIndex(snapshot)
	if err != nil {
		log.Printf("context index unavailable: %v (continuing without it)", err)
		index = nil
	}

	dbPath := dbFlag
	if dbPath == "" {
		dbPath = filepath.Join(absRoot, ".stitch", "sessions.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session db directory: %w", err)
	}

	store, err := session.NewStore(ctx, dbPath)
	if err != nil {
		if index != nil {
			index.Close()
		}
		return nil, err
	}

	projectID := generateProjectID(absRoot)
	if err := store.SaveSnapshot(ctx, projectID, absRoot, snapshot); err != nil {
		log.Printf("failed to persist project snapshot: %v (continuing)", err)
	}

	return &runtimeEnv{
		ProjectRoot: absRoot,
		ProjectID:   projectID,
		Snapshot:    snapshot,
		Index:       index,
		Store:       store,
	}, nil
}

// loadUserConfig loads the persistent config and exports it to the
// environment so the provider factory sees it.
func loadUserConfig() *config.Config {
	cfgManager, err := config.NewManager()
	if err != nil {
		log.Printf("failed to initialize config manager: %v", err)
		return &config.Config{}
	}

	userConfig, err := cfgManager.Load()
	if err != nil {
		log.Printf("failed to load user config: %v", err)
		return &config.Config{}
	}

	if cfgManager.Exists() {
		log.Printf("User config loaded from: %s", cfgManager.GetConfigPath())
	}
	userConfig.ApplyEnv()
	return userConfig
}

// generateProjectID derives a stable ID for a project from its path.
func generateProjectID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return fmt.Sprintf("%x", hash[:8])
}
