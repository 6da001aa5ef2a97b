package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"substrates.ai/internal/persistence/r2s3"
)

// buildMirror returns nil when SUBSTRATE_R2_MIRROR is off.
func buildMirror(archiveDir string, logger *log.Logger) (*r2s3.Mirror, error) {
	if !envBool("SUBSTRATE_R2_MIRROR", false) {
		return nil, nil
	}
	cfg := r2s3.Config{
		Endpoint:        os.Getenv("SUBSTRATE_R2_ENDPOINT"),
		Bucket:          os.Getenv("SUBSTRATE_R2_BUCKET"),
		Region:          os.Getenv("SUBSTRATE_R2_REGION"),
		AccessKeyID:     os.Getenv("SUBSTRATE_R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("SUBSTRATE_R2_SECRET_ACCESS_KEY"),
	}
	client, err := r2s3.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("SUBSTRATE_R2_MIRROR=true: %w", err)
	}
	prefix := strings.TrimSpace(os.Getenv("SUBSTRATE_R2_PREFIX"))
	return r2s3.NewMirror(client, archiveDir, prefix, envInt("SUBSTRATE_R2_UPLOAD_WORKERS", 2), logger), nil
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
