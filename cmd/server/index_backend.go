package main

import (
	"log"
	"os"
	"strings"

	"substrates.ai/internal/persistence/indexdb"
)

func openRuntimeIndex(dataDir string, disableDB bool, logger *log.Logger) (indexdb.Index, error) {
	if disableDB {
		return nil, nil
	}
	backend := strings.TrimSpace(os.Getenv("SUBSTRATE_INDEX_BACKEND"))
	dsn := strings.TrimSpace(os.Getenv("SUBSTRATE_INDEX_DSN"))
	idx, err := indexdb.Open(backend, dsn, dataDir)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		logger.Printf("index backend disabled (SUBSTRATE_INDEX_BACKEND=%s)", backend)
	}
	return idx, nil
}
