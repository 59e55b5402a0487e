package cron

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/services/digitalocean"
)

// UploadFilePrefix marks temp files created by the upload handler
const UploadFilePrefix = "quizbrain-upload-"

// MarkStaleJobs fails running jobs that have not moved for StaleJobAfter
func (m *CronManager) MarkStaleJobs(ctx context.Context) (string, error) {
	if m.jobs == nil {
		return "job tracking disabled", nil
	}

	stale, err := m.jobs.Stale(ctx, m.cfg.StaleJobAfter)
	if err != nil {
		return "", fmt.Errorf("failed to list jobs: %w", err)
	}

	marked := 0
	for _, state := range stale {
		if err := m.jobs.MarkAbandoned(ctx, state); err != nil {
			log.Warnf("Cron: failed to mark job %s abandoned: %v", state.JobID, err)
			continue
		}
		marked++
	}
	return fmt.Sprintf("marked %d of %d stale jobs", marked, len(stale)), nil
}

// CleanupTempUploads removes upload temp files older than TempFileMaxAge
func (m *CronManager) CleanupTempUploads(ctx context.Context) (string, error) {
	if m.cfg.UploadDir == "" {
		return "no upload dir", nil
	}

	entries, err := os.ReadDir(m.cfg.UploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to read upload dir: %w", err)
	}

	cutoff := m.now().Add(-m.cfg.TempFileMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), UploadFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.cfg.UploadDir, entry.Name())); err != nil {
			log.Warnf("Cron: failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return fmt.Sprintf("removed %d temp uploads", removed), nil
}

// CleanupRemoteData deletes old source uploads from Spaces, artifacts past
// their retention and old cron run history
func (m *CronManager) CleanupRemoteData(ctx context.Context) (string, error) {
	var (
		summary []string
		errs    []error
	)

	if m.objects != nil {
		keys, err := m.objects.ListOlderThan(ctx, digitalocean.UploadPrefix+"/", m.now().Add(-m.cfg.RemoteUploadTTL))
		if err != nil {
			errs = append(errs, err)
		}
		deleted := 0
		for _, key := range keys {
			if err := m.objects.DeleteFile(ctx, key); err != nil {
				errs = append(errs, err)
				continue
			}
			deleted++
		}
		summary = append(summary, fmt.Sprintf("deleted %d uploads", deleted))
	}

	if m.artifacts != nil && m.cfg.ArtifactRetention > 0 {
		n, err := m.artifacts.DeleteArtifactsBefore(ctx, m.now().Add(-m.cfg.ArtifactRetention))
		if err != nil {
			errs = append(errs, err)
		}
		summary = append(summary, fmt.Sprintf("deleted %d artifacts", n))
	}

	if m.recorder != nil && m.cfg.RunHistory > 0 {
		n, err := m.recorder.DeleteCronRunsBefore(ctx, m.now().Add(-m.cfg.RunHistory))
		if err != nil {
			errs = append(errs, err)
		}
		summary = append(summary, fmt.Sprintf("deleted %d cron runs", n))
	}

	if len(summary) == 0 {
		summary = append(summary, "nothing to clean")
	}
	return strings.Join(summary, ", "), errors.Join(errs...)
}
