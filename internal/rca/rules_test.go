package rca

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IT21259166/anbd-core/internal/config"
)

func newRules() *RuleClassifier {
	return NewRuleClassifier(config.Type1Config{
		Thresholds: config.DefaultType1Thresholds(),
		Playbooks:  config.DefaultType1Playbooks(),
	})
}

func TestClassify_BandwidthSaturationByPacketRate(t *testing.T) {
	c := newRules()
	got := c.Classify(map[string]float64{
		"Flow Bytes/s":      50_000,
		"Flow Packets/s":    1000,
		"Max Packet Length": 1500,
	})

	assert.Equal(t, "bandwidth_saturation", got.Category)
	assert.Equal(t, "bandwidth_saturation_fix", got.PlaybookID)
	assert.Equal(t, 1000.0, got.Metrics["Flow Packets/s"])
}

func TestClassify_RuleOrderIsFixed(t *testing.T) {
	c := newRules()

	// A flow exceeding both bandwidth and packet-size bounds classifies by
	// the earlier rule.
	got := c.Classify(map[string]float64{
		"Flow Bytes/s":      5_000_000,
		"Max Packet Length": 9000,
	})
	assert.Equal(t, "bandwidth_saturation", got.Category)
}

func TestClassify_EachCategory(t *testing.T) {
	c := newRules()
	cases := []struct {
		name     string
		features map[string]float64
		want     string
	}{
		{"throughput", map[string]float64{"Total Length of Fwd Packets": 20_000}, "throughput_anomaly"},
		{"header", map[string]float64{"Bwd Header Length": 250}, "header_length"},
		{"packet size", map[string]float64{"Packet Length Mean": 1200}, "packet_size"},
		{"duration", map[string]float64{"Flow Duration": 400_000_000}, "flow_duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.features).Category)
		})
	}
}

func TestClassify_NothingMatches(t *testing.T) {
	c := newRules()
	got := c.Classify(map[string]float64{"Flow Bytes/s": 10, "Flow Duration": 100})

	assert.Equal(t, CategoryUnclassified, got.Category)
	assert.Empty(t, got.PlaybookID)
}

func TestClassify_IsPure(t *testing.T) {
	c := newRules()
	features := map[string]float64{"Fwd Header Length": 500}

	first := c.Classify(features)
	c.Classify(map[string]float64{"Flow Bytes/s": 9_999_999})
	second := c.Classify(features)

	assert.Equal(t, first, second)
}
