package response

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/playbook"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/cache"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const bandwidthPlaybook = `
name: bandwidth_saturation_fix
responses:
  - category: traffic_shaping
    commands:
      - "tc qdisc add dev eth0 root tbf rate {{flow_bytes_per_sec}}bps burst 32kbit latency 400ms"
      - "iptables -I FORWARD -s {{source_ip}} -j DROP"
`

const connectivityPlaybook = `
name: connectivity_fix
responses:
  - category: connectivity
    commands:
      - "ip neigh flush dev eth0"
      - "systemctl restart networking"
`

type captureNotifier struct {
	channels []string
	payloads []interface{}
}

func (n *captureNotifier) Publish(channel string, payload interface{}) {
	n.channels = append(n.channels, channel)
	n.payloads = append(n.payloads, payload)
}

func newRegistry(t *testing.T) *playbook.Registry {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bw.yml"), []byte(bandwidthPlaybook), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conn.yml"), []byte(connectivityPlaybook), 0o644))

	reg, err := playbook.LoadRegistry(config.PlaybooksConfig{
		Dir:   dir,
		Type1: map[string]string{"bandwidth_saturation": "bw.yml"},
		Type2: map[string]string{"connectivity_issues": "conn.yml"},
	}, logger.NewMockLogger(&strings.Builder{}))
	require.NoError(t, err)
	return reg
}

func newService(t *testing.T, exec executor.Executor, notifier Notifier) (*Service, store.ResponseStore) {
	t.Helper()
	log := logger.NewMockLogger(&strings.Builder{})
	st := store.New(cache.NewMemoryCache(log), log, 0)
	svc := New(newRegistry(t), exec, st,
		config.NetworkConfig{Devices: config.DefaultNetworkDevices(), VLANs: config.DefaultVLANs()},
		notifier, log)
	return svc, st
}

func testEvent() *models.AnomalyEvent {
	return &models.AnomalyEvent{
		LogID:     "log_20260824_130000_abc12345",
		Timestamp: time.Now().UTC(),
		SrcIP:     "192.168.10.5",
		DstIP:     "192.168.20.9",
		SrcPort:   51234,
		DstPort:   443,
	}
}

func TestTriggerType1_ExecutesRenderedCommandsAndPersists(t *testing.T) {
	var hosts, commands []string
	exec := executor.Func(func(_ context.Context, host, command string) (executor.Result, error) {
		hosts = append(hosts, host)
		commands = append(commands, command)
		return executor.Result{}, nil
	})
	notifier := &captureNotifier{}
	svc, st := newService(t, exec, notifier)

	outcome := svc.TriggerType1(context.Background(), testEvent(),
		models.RCAClassification{Category: "bandwidth_saturation", PlaybookID: "bandwidth_saturation_fix"},
		map[string]float64{"Flow Bytes/s": 2_000_000})

	assert.True(t, outcome.Success)
	assert.Equal(t, "bandwidth_optimization", outcome.ResponseType)
	assert.NotEmpty(t, outcome.AnomalyID)

	require.Len(t, commands, 2)
	assert.Equal(t, "tc qdisc add dev eth0 root tbf rate 2000000bps burst 32kbit latency 400ms", commands[0])
	assert.Equal(t, "iptables -I FORWARD -s 192.168.10.5 -j DROP", commands[1])
	// VLAN10 member remediates on its router DT-RO-1.
	assert.Equal(t, "192.168.60.1", hosts[0])

	rec, err := st.GetResponse(context.Background(), "log_20260824_130000_abc12345")
	require.NoError(t, err)
	assert.Equal(t, "bandwidth_saturation", rec.AnomalyType1)
	assert.Equal(t, "bandwidth_optimization", rec.ResType1)
	assert.True(t, rec.Success)
	assert.Equal(t, 2_000_000.0, rec.ReFeatures["Flow Bytes/s"])

	require.Equal(t, []string{"response_executed"}, notifier.channels)
	update := notifier.payloads[0].(models.ResponseUpdate)
	assert.Equal(t, "type1", update.ResponseType)
	assert.True(t, update.Success)
}

func TestTriggerType2_UpdatesExistingRecord(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		return executor.Result{}, nil
	})
	svc, st := newService(t, exec, &captureNotifier{})
	ev := testEvent()

	first := svc.TriggerType1(context.Background(), ev,
		models.RCAClassification{Category: "bandwidth_saturation"},
		map[string]float64{"Flow Bytes/s": 2_000_000})
	second := svc.TriggerType2(context.Background(), ev,
		models.RCAClassification{Category: "connectivity_issues"})

	assert.Equal(t, first.AnomalyID, second.AnomalyID, "both paths share one response record")

	rec, err := st.GetResponse(context.Background(), ev.LogID)
	require.NoError(t, err)
	assert.Equal(t, "bandwidth_saturation", rec.AnomalyType1)
	assert.Equal(t, "connectivity_issues", rec.AnomalyType2)
	assert.Equal(t, "connectivity_restore", rec.ResType2)
	assert.True(t, rec.Success)

	_, total, err := st.ListResponses(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "type2 update must not duplicate the index entry")
}

func TestTriggerType2_FailureFlipsRecordSuccess(t *testing.T) {
	calls := 0
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		calls++
		if calls > 2 {
			// Type 1's two commands succeed, type 2's first command fails.
			return executor.Result{ExitCode: 1}, errors.New("command exited 1")
		}
		return executor.Result{}, nil
	})
	svc, st := newService(t, exec, &captureNotifier{})
	ev := testEvent()

	svc.TriggerType1(context.Background(), ev,
		models.RCAClassification{Category: "bandwidth_saturation"}, nil)
	outcome := svc.TriggerType2(context.Background(), ev,
		models.RCAClassification{Category: "connectivity_issues"})

	assert.False(t, outcome.Success)

	rec, err := st.GetResponse(context.Background(), ev.LogID)
	require.NoError(t, err)
	assert.False(t, rec.Success, "a failed type2 response marks the whole record failed")
}

func TestTriggerType1_UnknownCategoryFailsSoft(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		t.Fatal("no command should run without a playbook")
		return executor.Result{}, nil
	})
	svc, _ := newService(t, exec, &captureNotifier{})

	outcome := svc.TriggerType1(context.Background(), testEvent(),
		models.RCAClassification{Category: "no_such_category"}, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, "unknown", outcome.ResponseType)
	assert.Contains(t, outcome.Error, "playbook not found")
}

func TestTriggerType2_WithoutPriorRecordStartsFresh(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		return executor.Result{}, nil
	})
	svc, st := newService(t, exec, &captureNotifier{})

	outcome := svc.TriggerType2(context.Background(), testEvent(),
		models.RCAClassification{Category: "connectivity_issues"})

	assert.True(t, outcome.Success)
	rec, err := st.GetResponse(context.Background(), "log_20260824_130000_abc12345")
	require.NoError(t, err)
	assert.Empty(t, rec.AnomalyType1)
	assert.Equal(t, "connectivity_issues", rec.AnomalyType2)
}
