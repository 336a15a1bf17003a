// Package ids generates the log and anomaly identifiers used across the
// events and responses stores. IDs embed a UTC timestamp so they sort
// chronologically in dashboards, plus a uuid fragment for uniqueness.
package ids

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = "20060102_150405"

func NewLogID() string {
	return fmt.Sprintf("log_%s_%s", time.Now().UTC().Format(timeLayout), uuid.NewString()[:8])
}

func NewAnomalyID() string {
	return fmt.Sprintf("anomaly_%s_%s", time.Now().UTC().Format(timeLayout), uuid.NewString()[:8])
}
