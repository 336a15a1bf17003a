package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/IT21259166/anbd-core/internal/ids"
	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
)

// metadataColumns are consumed as flow metadata, everything else in the
// header is offered to the feature record (unrecognized names are dropped
// there).
var metadataColumns = map[string]bool{
	"Timestamp": true,
	"Src IP":    true,
	"Dst IP":    true,
	"Src Port":  true,
	"Dst Port":  true,
}

// processFile runs every row of one CSV through the pipeline: create the
// event, detect, and on a positive verdict hand off to the orchestrator. A
// bad row is logged and skipped, never fatal to the file.
func (m *Monitor) processFile(ctx context.Context, path string) (processed, anomalies int) {
	f, err := os.Open(path)
	if err != nil {
		m.logger.Error("opening ingest file failed", "file", path, "error", err)
		return 0, 0
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		m.logger.Error("reading ingest header failed", "file", path, "error", err)
		return 0, 0
	}

	for {
		if ctx.Err() != nil {
			break
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			m.logger.Warn("skipping malformed row", "file", path, "error", err)
			metrics.FlowsIngested.WithLabelValues("failed").Inc()
			continue
		}

		if m.processRow(ctx, header, row) {
			anomalies++
		}
		processed++
	}

	m.logger.Info("ingest file processed", "file", path,
		"rows", processed, "anomalies", anomalies)
	m.broadcastProgress(processed, anomalies)
	return processed, anomalies
}

// processRow returns whether the row was classified anomalous.
func (m *Monitor) processRow(ctx context.Context, header, row []string) bool {
	ev, rec := parseRow(header, row)
	ev.LogID = ids.NewLogID()

	if err := m.events.CreateEvent(ctx, ev); err != nil {
		m.logger.Error("creating event failed", "log_id", ev.LogID, "error", err)
		metrics.FlowsIngested.WithLabelValues("failed").Inc()
		return false
	}
	metrics.FlowsIngested.WithLabelValues("processed").Inc()

	det := m.detector.Detect(rec)
	if !det.IsAnomalous {
		return false
	}
	m.orchestrator.HandleDetection(ctx, ev.LogID, rec, det)
	return true
}

// parseRow splits one CSV row into flow metadata and the feature record.
func parseRow(header, row []string) (*models.AnomalyEvent, models.FlowFeatureRecord) {
	ev := &models.AnomalyEvent{Timestamp: time.Now().UTC()}
	features := make(map[string]float64, len(header))

	for i, name := range header {
		if i >= len(row) {
			break
		}
		value := row[i]
		if !metadataColumns[name] {
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				features[name] = v
			}
			continue
		}
		switch name {
		case "Timestamp":
			if ts, ok := parseTimestamp(value); ok {
				ev.Timestamp = ts
			}
		case "Src IP":
			ev.SrcIP = value
		case "Dst IP":
			ev.DstIP = value
		case "Src Port":
			ev.SrcPort, _ = strconv.Atoi(value)
		case "Dst Port":
			ev.DstPort, _ = strconv.Atoi(value)
		}
	}
	return ev, models.FlowFeaturesFromMap(features)
}

// parseTimestamp accepts RFC3339 and zoneless ISO timestamps, the two
// formats flow generators actually emit.
func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func (m *Monitor) broadcastProgress(processed, anomalies int) {
	if m.notifier == nil {
		return
	}
	m.notifier.Publish("processing_update", models.ProcessingUpdate{
		ProcessedCount: processed,
		AnomalyCount:   anomalies,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
	metrics.NotificationsSent.WithLabelValues("processing_update").Inc()
}
