package rca

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const (
	unreachablePing = `PING 192.168.20.9 (192.168.20.9) 56(84) bytes of data.

--- 192.168.20.9 ping statistics ---
4 packets transmitted, 0 received, 100% packet loss, time 3057ms
`
	healthyPing = `PING 192.168.20.9 (192.168.20.9) 56(84) bytes of data.

--- 192.168.20.9 ping statistics ---
20 packets transmitted, 20 received, 0% packet loss, time 3810ms
rtt min/avg/max/mdev = 10.1/152.4/201.3/5.0 ms
`
)

func newTroubleshooter(t *testing.T, exec executor.Executor) *Troubleshooter {
	t.Helper()
	ts, err := NewTroubleshooter(
		config.Type2Config{Categories: config.DefaultType2Categories(), ProbeTimeoutMs: 1000},
		config.NetworkConfig{Devices: config.DefaultNetworkDevices(), VLANs: config.DefaultVLANs()},
		exec,
		logger.NewMockLogger(&strings.Builder{}),
	)
	require.NoError(t, err)
	return ts
}

func TestClassify_ConnectivityIssueWins(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, command string) (executor.Result, error) {
		if strings.HasPrefix(command, "ping") {
			// Total loss exits non-zero but still produces the statistics.
			return executor.Result{Output: unreachablePing, ExitCode: 1}, errors.New("exited 1")
		}
		return executor.Result{Output: ""}, nil
	})
	ts := newTroubleshooter(t, exec)

	got := ts.Classify(context.Background(), "192.168.10.5", "192.168.20.9", 443)

	assert.Equal(t, "connectivity_issues", got.Category)
	assert.Equal(t, "loss_percent", got.MatchedRule)
	assert.Equal(t, "connectivity_fix", got.PlaybookID)
	assert.Equal(t, 100.0, got.Metrics["loss_percent"])
	assert.Equal(t, "high", got.Severity)
}

func TestClassify_LowerPriorityCategoryMatches(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, command string) (executor.Result, error) {
		switch {
		case strings.HasPrefix(command, "ping"):
			return executor.Result{Output: healthyPing}, nil
		case strings.HasPrefix(command, "grep"):
			return executor.Result{Output: "2\n"}, nil
		default:
			return executor.Result{Output: "no counters"}, nil
		}
	})
	ts := newTroubleshooter(t, exec)

	got := ts.Classify(context.Background(), "192.168.10.5", "192.168.20.9", 443)

	// Healthy loss figures rule out connectivity and packet loss; the
	// 152ms average latency pushes the flow into high_latency.
	assert.Equal(t, "high_latency", got.Category)
	assert.Equal(t, "avg_latency_ms", got.MatchedRule)
	assert.InDelta(t, 152.4, got.Metrics["avg_latency_ms"], 0.001)
}

func TestClassify_ProbeFailureMeansNonMatching(t *testing.T) {
	exec := executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		return executor.Result{}, errors.New("ssh dial: connection refused")
	})
	ts := newTroubleshooter(t, exec)

	got := ts.Classify(context.Background(), "192.168.10.5", "192.168.20.9", 443)

	assert.Equal(t, CategoryNone, got.Category)
	assert.Empty(t, got.PlaybookID)
}

func TestClassify_TemplatesProbeCommands(t *testing.T) {
	var commands []string
	exec := executor.Func(func(_ context.Context, _, command string) (executor.Result, error) {
		commands = append(commands, command)
		return executor.Result{}, nil
	})
	ts := newTroubleshooter(t, exec)

	ts.Classify(context.Background(), "192.168.10.5", "192.168.20.9", 8080)

	require.NotEmpty(t, commands)
	assert.Contains(t, commands[0], "192.168.20.9")
	for _, cmd := range commands {
		assert.NotContains(t, cmd, "{{")
	}
}

func TestResolveTarget(t *testing.T) {
	ts := newTroubleshooter(t, executor.Func(func(_ context.Context, _, _ string) (executor.Result, error) {
		return executor.Result{}, nil
	}))

	// Managed device by interface address.
	target := ts.ResolveTarget("192.168.60.5", "1.2.3.4")
	assert.Equal(t, "DT-RO-1", target.Name)
	assert.Equal(t, "192.168.60.1", target.Host)

	// VLAN member resolves to the VLAN's router.
	target = ts.ResolveTarget("192.168.30.7", "1.2.3.4")
	assert.Equal(t, "DT-RO-2", target.Name)
	assert.Equal(t, "192.168.60.9", target.Host)

	// Unknown endpoint probes the source directly.
	target = ts.ResolveTarget("10.99.0.1", "10.99.0.2")
	assert.Equal(t, "unknown_device", target.Name)
	assert.Equal(t, "10.99.0.1", target.Host)
}

func TestNewTroubleshooter_RejectsBadPattern(t *testing.T) {
	_, err := NewTroubleshooter(config.Type2Config{
		Categories: []config.ProbeCategory{{Name: "bad", Pattern: "("}},
	}, config.NetworkConfig{}, nil, logger.NewMockLogger(&strings.Builder{}))
	require.Error(t, err)
}
