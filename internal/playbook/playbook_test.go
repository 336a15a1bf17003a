package playbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const samplePlaybook = `
name: bandwidth_saturation_fix
description: Throttle the offending flow and apply QoS.
version: "1"
responses:
  - category: traffic_shaping
    commands:
      - "tc qdisc add dev eth0 root tbf rate {{flow_bytes_per_sec}}bps burst 32kbit latency 400ms"
      - "iptables -A FORWARD -s {{source_ip}} -d {{destination_ip}} -j ACCEPT"
  - category: qos
    commands:
      - "conntrack -D -s {{source_ip}} --dport {{destination_port}}"
`

func TestParse_ValidDocument(t *testing.T) {
	pb, err := Parse([]byte(samplePlaybook))
	require.NoError(t, err)
	assert.Equal(t, "bandwidth_saturation_fix", pb.Name)
	require.Len(t, pb.Responses, 2)
	assert.Equal(t, "traffic_shaping", pb.Responses[0].Category)
}

func TestParse_RejectsEmptyResponses(t *testing.T) {
	_, err := Parse([]byte("name: empty\nresponses: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responses")
}

func TestRender_SubstitutesParamsInOrder(t *testing.T) {
	pb, err := Parse([]byte(samplePlaybook))
	require.NoError(t, err)

	cmds := pb.Render(Params{
		SourceIP:        "192.168.10.5",
		DestinationIP:   "192.168.20.9",
		DestinationPort: 443,
		FlowMetrics:     map[string]float64{"flow_bytes_per_sec": 1250000},
	})

	require.Len(t, cmds, 3)
	assert.Equal(t, "tc qdisc add dev eth0 root tbf rate 1250000bps burst 32kbit latency 400ms", cmds[0])
	assert.Equal(t, "iptables -A FORWARD -s 192.168.10.5 -d 192.168.20.9 -j ACCEPT", cmds[1])
	assert.Equal(t, "conntrack -D -s 192.168.10.5 --dport 443", cmds[2])
}

func TestRender_UnknownPlaceholderPassesThrough(t *testing.T) {
	pb := &Playbook{
		Name:      "x",
		Responses: []Response{{Category: "c", Commands: []string{"echo {{no_such_param}}"}}},
	}
	cmds := pb.Render(Params{SourceIP: "10.0.0.1"})
	assert.Equal(t, []string{"echo {{no_such_param}}"}, cmds)
}

func TestLoadRegistry_LookupAndMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bw.yml"), []byte(samplePlaybook), 0o644))

	reg, err := LoadRegistry(config.PlaybooksConfig{
		Dir:   dir,
		Type1: map[string]string{"bandwidth_saturation": "bw.yml"},
	}, logger.NewMockLogger(&strings.Builder{}))
	require.NoError(t, err)

	pb, err := reg.Lookup("type1", "bandwidth_saturation")
	require.NoError(t, err)
	assert.Equal(t, "bandwidth_saturation_fix", pb.Name)

	_, err = reg.Lookup("type2", "high_latency")
	assert.ErrorIs(t, err, ErrPlaybookNotFound)
}

func TestLoadRegistry_MissingFileFailsLoad(t *testing.T) {
	_, err := LoadRegistry(config.PlaybooksConfig{
		Dir:   t.TempDir(),
		Type1: map[string]string{"bandwidth_saturation": "missing.yml"},
	}, logger.NewMockLogger(&strings.Builder{}))
	require.Error(t, err)
}
