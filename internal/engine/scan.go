package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrScanRunning is returned by StartScan while a scan is in progress.
var ErrScanRunning = errors.New("scan already running")

// ScanStats describes the current or last duplicate scan.
type ScanStats struct {
	ProjectID       string    `json:"project_id"`
	TotalBugs       int       `json:"total_bugs"`
	BugsScanned     int64     `json:"bugs_scanned"`
	DuplicatesFound int64     `json:"duplicates_found"`
	LastError       string    `json:"last_error,omitempty"`
	StartTime       time.Time `json:"start_time"`
	FinishTime      time.Time `json:"finish_time"`
}

// StartScan runs FindSimilarBugs for every bug of a project in the
// background, at most Scan.Concurrency at a time.
func (e *Engine) StartScan(projectID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isRunning {
		return ErrScanRunning
	}

	bugs, err := e.Storage.List(projectID)
	if err != nil {
		return fmt.Errorf("failed to list project bugs: %w", err)
	}
	ids := make([]string, len(bugs))
	for i, b := range bugs {
		ids[i] = b.ID
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancelScan = cancel
	e.scanDone = make(chan struct{})
	e.isRunning = true
	e.stats = ScanStats{
		ProjectID: projectID,
		TotalBugs: len(ids),
		StartTime: time.Now(),
	}

	go e.runScan(ctx, ids, e.scanDone)

	e.Logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"bugs":       len(ids),
	}).Info("Duplicate scan started")
	return nil
}

// StopScan cancels the running scan. Bugs already being compared finish;
// use WaitScan to block until then.
func (e *Engine) StopScan() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isRunning && e.cancelScan != nil {
		e.cancelScan()
	}
}

// WaitScan blocks until the current scan, if any, has finished.
func (e *Engine) WaitScan() {
	e.mu.RLock()
	done := e.scanDone
	e.mu.RUnlock()

	if done != nil {
		<-done
	}
}

func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isRunning
}

// Stats returns a snapshot of the scan counters.
func (e *Engine) Stats() ScanStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

func (e *Engine) runScan(ctx context.Context, ids []string, done chan struct{}) {
	defer func() {
		e.mu.Lock()
		e.isRunning = false
		e.stats.FinishTime = time.Now()
		e.cancelScan()
		e.mu.Unlock()
		close(done)
	}()

	concurrency := e.Config.Scan.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			similar, err := e.FindSimilarBugs(ctx, id, 0, 0)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			e.mu.Lock()
			defer e.mu.Unlock()
			if err != nil {
				e.stats.LastError = err.Error()
				e.Logger.WithError(err).WithField("bug_id", id).Error("Failed to scan bug")
				return nil
			}
			e.stats.BugsScanned++
			if len(similar) > 0 {
				e.stats.DuplicatesFound++
			}
			return nil
		})
	}

	// Per-bug failures are recorded in stats, never returned.
	_ = g.Wait()

	stats := e.Stats()
	e.Logger.WithFields(logrus.Fields{
		"project_id":       stats.ProjectID,
		"bugs_scanned":     stats.BugsScanned,
		"duplicates_found": stats.DuplicatesFound,
		"canceled":         ctx.Err() != nil,
	}).Info("Duplicate scan finished")
}
