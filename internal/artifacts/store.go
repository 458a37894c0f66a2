// Package artifacts snapshots a Design's IR to an object-storage backend
// after each pass, for offline inspection, grounded on the teacher's
// object-storage abstraction (Upload/Download/Delete/Exists/GetURL) but
// narrowed to the one operation a pass snapshot needs: writing a byte
// blob to a key and reading it back.
package artifacts

import (
	"context"
	"fmt"

	"github.com/ucb-cyarp/dataflowc/pkg/config"
)

// Store is the artifact-storage backend interface. It mirrors the
// teacher's Storage interface's byte-oriented half: a pass snapshot is
// produced wholly in memory (json.Marshal of a DesignSnapshot) so there
// is no local-file source/destination to stream through, unlike the
// teacher's profiling-artifact uploads.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// StorageType mirrors the teacher's StorageType enum.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeCOS   StorageType = "cos"
)

// NewStore builds a Store from cfg, selected the same way the teacher
// selects object storage. When cfg.DualWrite is set and both a local
// path and COS credentials are configured, the returned Store fans every
// Put and Delete out to both backends concurrently (see dualwrite.go);
// Get/Exists/GetURL are served by the primary (cfg.Type) backend alone.
func NewStore(cfg config.StorageConfig) (Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	primary, err := newBackend(StorageType(cfg.Type), cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.DualWrite {
		return primary, nil
	}

	secondaryType := StorageTypeLocal
	if StorageType(cfg.Type) == StorageTypeLocal {
		secondaryType = StorageTypeCOS
	}
	if secondaryType == StorageTypeCOS && (cfg.Bucket == "" || cfg.SecretID == "") {
		return primary, nil
	}
	if secondaryType == StorageTypeLocal && cfg.LocalPath == "" {
		return primary, nil
	}

	secondary, err := newBackend(secondaryType, cfg)
	if err != nil {
		return nil, err
	}

	return NewDualWriteStore(primary, secondary), nil
}

func newBackend(t StorageType, cfg config.StorageConfig) (Store, error) {
	switch t {
	case StorageTypeLocal:
		return NewLocalStore(cfg.LocalPath)
	case StorageTypeCOS:
		return NewCOSStore(COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStore(cfg.LocalPath)
	}
}

// ValidateConfig validates the artifact storage configuration.
func ValidateConfig(cfg config.StorageConfig) error {
	storageType := StorageType(cfg.Type)
	if storageType == "" {
		storageType = StorageTypeLocal
	}

	if storageType != StorageTypeCOS && storageType != StorageTypeLocal {
		return fmt.Errorf("unsupported artifact storage type: %s", cfg.Type)
	}

	if storageType == StorageTypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	if storageType == StorageTypeLocal && cfg.LocalPath == "" {
		return fmt.Errorf("local artifact storage path is required")
	}

	return nil
}
