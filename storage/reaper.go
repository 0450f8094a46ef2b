package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gradgate/gradgate/models"
)

// StartOrphanReaper launches a background goroutine that periodically deletes
// blobs no application record references. A submission that fails mid-batch
// leaves its earlier blobs orphaned; the reaper collects them once they are
// older than the grace period. It is best-effort and logs failures.
func StartOrphanReaper(db *gorm.DB, store *DiskStore, interval, grace time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			if db == nil {
				continue
			}
			reapOnce(db, store, grace)
		}
	}()
}

func reapOnce(db *gorm.DB, store *DiskStore, grace time.Duration) {
	cutoff := time.Now().Add(-grace)

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		log.Printf("orphan reaper read dir failed: %v", err)
		return
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, metaSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		// Stale temp files from interrupted writes are always safe to drop
		if strings.HasSuffix(name, tmpSuffix) {
			_ = os.Remove(filepath.Join(store.Dir(), name))
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return
	}

	var referenced []string
	if err := db.Model(&models.Attachment{}).
		Where("storage_id IN ?", candidates).
		Pluck("storage_id", &referenced).Error; err != nil {
		log.Printf("orphan reaper query failed: %v", err)
		return
	}
	refSet := make(map[string]struct{}, len(referenced))
	for _, id := range referenced {
		refSet[id] = struct{}{}
	}

	for _, id := range candidates {
		if _, ok := refSet[id]; ok {
			continue
		}
		if err := store.remove(id); err != nil {
			log.Printf("orphan reaper delete blob %s failed: %v", id, err)
		}
	}
}
