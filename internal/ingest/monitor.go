// Package ingest feeds flow telemetry CSVs into the detection pipeline. A
// filesystem watcher reacts to newly written network_data_*.csv files and a
// periodic sweep catches anything the watcher missed.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const filePattern = "network_data_*.csv"

// Detector classifies one flow record.
type Detector interface {
	Detect(rec models.FlowFeatureRecord) models.DetectionResult
}

// Orchestrator handles a positive detection.
type Orchestrator interface {
	HandleDetection(ctx context.Context, logID string, rec models.FlowFeatureRecord,
		det models.DetectionResult) models.OrchestrationResult
}

// Notifier pushes a real-time update to subscribers.
type Notifier interface {
	Publish(channel string, payload interface{})
}

// Status is the monitoring state reported by the API.
type Status struct {
	Running        bool      `json:"running"`
	Directory      string    `json:"directory"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	FilesProcessed int       `json:"files_processed"`
	RowsProcessed  int       `json:"rows_processed"`
	AnomaliesFound int       `json:"anomalies_found"`
	LastFile       string    `json:"last_file,omitempty"`
}

// Monitor watches the ingest directory and drives each flow row through
// event creation, detection and, on a positive verdict, RCA orchestration.
type Monitor struct {
	cfg          config.IngestConfig
	detector     Detector
	orchestrator Orchestrator
	events       store.EventStore
	notifier     Notifier
	logger       logger.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	status    Status
	processed map[string]time.Time // file -> modtime already handled
}

func NewMonitor(cfg config.IngestConfig, det Detector, orch Orchestrator,
	events store.EventStore, notifier Notifier, log logger.Logger) *Monitor {
	return &Monitor{
		cfg:          cfg,
		detector:     det,
		orchestrator: orch,
		events:       events,
		notifier:     notifier,
		logger:       log,
		processed:    map[string]time.Time{},
	}
}

// Start launches the watcher and sweep loop. Starting an already running
// monitor is an error so the API can report the conflict.
func (m *Monitor) Start(parent context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return fmt.Errorf("monitoring already running")
	}
	if _, err := os.Stat(m.cfg.Directory); err != nil {
		return fmt.Errorf("ingest directory: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.status = Status{Running: true, Directory: m.cfg.Directory, StartedAt: time.Now().UTC()}

	go m.run(ctx)
	m.logger.Info("ingest monitoring started", "directory", m.cfg.Directory)
	return nil
}

// Stop halts the loop and waits for it to drain.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return fmt.Errorf("monitoring not running")
	}
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	m.status.Running = false
	m.mu.Unlock()
	m.logger.Info("ingest monitoring stopped")
	return nil
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	interval := time.Duration(m.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.logger.Error("fsnotify unavailable, falling back to sweep only", "error", err)
	} else {
		defer watcher.Close()
		if err := watcher.Add(m.cfg.Directory); err != nil {
			m.logger.Error("watching ingest directory failed", "error", err)
		}
	}

	var watchEvents chan fsnotify.Event
	if watcher != nil {
		watchEvents = watcher.Events
	}

	// Initial sweep picks up whatever is already on disk.
	m.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if matched, _ := filepath.Match(filePattern, filepath.Base(ev.Name)); matched {
				// Writers may still be flushing when the event fires; the
				// modtime guard in sweep makes reprocessing safe.
				m.sweep(ctx)
			}
		}
	}
}

// sweep processes the newest unhandled CSV in the ingest directory.
func (m *Monitor) sweep(ctx context.Context) {
	path, modTime, err := m.latestFile()
	if err != nil {
		m.logger.Error("scanning ingest directory failed", "error", err)
		return
	}
	if path == "" {
		return
	}

	m.mu.Lock()
	seen, ok := m.processed[path]
	m.mu.Unlock()
	if ok && !modTime.After(seen) {
		return
	}

	processed, anomalies := m.processFile(ctx, path)

	m.mu.Lock()
	m.processed[path] = modTime
	m.status.FilesProcessed++
	m.status.RowsProcessed += processed
	m.status.AnomaliesFound += anomalies
	m.status.LastFile = filepath.Base(path)
	m.mu.Unlock()

	m.pruneProcessed()
}

func (m *Monitor) latestFile() (string, time.Time, error) {
	files, err := filepath.Glob(filepath.Join(m.cfg.Directory, filePattern))
	if err != nil {
		return "", time.Time{}, err
	}
	var (
		latest    string
		latestMod time.Time
	)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestMod) {
			latest, latestMod = f, info.ModTime()
		}
	}
	return latest, latestMod, nil
}

// pruneProcessed caps the seen-file map so a long-lived monitor over a
// rotating directory does not grow without bound.
func (m *Monitor) pruneProcessed() {
	max := m.cfg.MaxFiles
	if max <= 0 {
		max = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.processed) <= max {
		return
	}
	var oldest string
	var oldestTime time.Time
	for f, t := range m.processed {
		if oldest == "" || t.Before(oldestTime) {
			oldest, oldestTime = f, t
		}
	}
	delete(m.processed, oldest)
}
