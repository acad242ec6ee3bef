package cleanup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler handles cleanup of stale staged audio
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	cron            *cron.Cron
	now             func() time.Time
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		cron:            cron.New(),
		now:             time.Now,
	}
}

// Start runs one sweep immediately and then schedules the periodic sweep
func (s *Scheduler) Start() error {
	log.Println("Running initial temp file cleanup...")
	s.cleanOldFiles()

	schedule := fmt.Sprintf("@every %dm", s.intervalMinutes)
	if _, err := s.cron.AddFunc(schedule, func() { s.cleanOldFiles() }); err != nil {
		return fmt.Errorf("scheduling cleanup %q: %w", schedule, err)
	}
	s.cron.Start()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
	return nil
}

// Stop stops the scheduler and waits for a running sweep
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Cleanup scheduler stopped")
}

// cleanOldFiles removes files older than maxAgeHours from temp directory
func (s *Scheduler) cleanOldFiles() int {
	now := s.now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age > maxAge {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to delete old file %s: %v", path, err)
			} else {
				deletedCount++
				deletedSize += size
				log.Printf("Deleted old temp file: %s (age: %s, size: %dKB)",
					filepath.Base(path), age.Round(time.Hour), size/1024)
			}
		}
		return nil
	})

	if err != nil && !os.IsNotExist(err) {
		log.Printf("Error during cleanup: %v", err)
	}

	if deletedCount > 0 {
		log.Printf("Cleanup complete: %d files deleted, %.2fMB freed",
			deletedCount, float64(deletedSize)/(1024*1024))
	}
	return deletedCount
}

// EnsureDirs creates each directory if it doesn't exist
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		log.Printf("Directory ready: %s", dir)
	}
	return nil
}
