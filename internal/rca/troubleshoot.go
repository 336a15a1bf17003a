package rca

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// CategoryNone is the Type 2 verdict when no troubleshooting category matches.
const CategoryNone = "none"

const defaultProbeTimeout = 15 * time.Second

type compiledMetric struct {
	rule    config.MetricRule
	pattern *regexp.Regexp
}

type compiledCategory struct {
	cfg     config.ProbeCategory
	pattern *regexp.Regexp
	metrics []compiledMetric
}

// Troubleshooter is the Type 2 path: it resolves the flow endpoints to a
// managed troubleshooting target, runs each category's diagnostic probes over
// the shared executor, and matches the combined output against the category's
// pattern and metric thresholds. Categories are evaluated in declared
// priority order and the first match wins.
type Troubleshooter struct {
	categories   []compiledCategory
	network      config.NetworkConfig
	exec         executor.Executor
	probeTimeout time.Duration
	logger       logger.Logger
}

func NewTroubleshooter(cfg config.Type2Config, network config.NetworkConfig, exec executor.Executor, log logger.Logger) (*Troubleshooter, error) {
	t := &Troubleshooter{
		network:      network,
		exec:         exec,
		probeTimeout: defaultProbeTimeout,
		logger:       log,
	}
	if cfg.ProbeTimeoutMs > 0 {
		t.probeTimeout = time.Duration(cfg.ProbeTimeoutMs) * time.Millisecond
	}

	for _, cat := range cfg.Categories {
		pattern, err := regexp.Compile(cat.Pattern)
		if err != nil {
			return nil, fmt.Errorf("category %s pattern: %w", cat.Name, err)
		}
		cc := compiledCategory{cfg: cat, pattern: pattern}
		for _, m := range cat.Metrics {
			mp, err := regexp.Compile(m.Pattern)
			if err != nil {
				return nil, fmt.Errorf("category %s metric %s: %w", cat.Name, m.Name, err)
			}
			cc.metrics = append(cc.metrics, compiledMetric{rule: m, pattern: mp})
		}
		t.categories = append(t.categories, cc)
	}
	return t, nil
}

// Target is the device the diagnostic probes run against.
type Target struct {
	Name string
	Host string
	Type string
}

// ResolveTarget maps a flow's endpoints to a troubleshooting target: a
// managed device owning the source IP, then the destination IP, then the
// router of the source's VLAN. Unknown endpoints fall back to probing the
// source host directly.
func (t *Troubleshooter) ResolveTarget(srcIP, dstIP string) Target {
	if name, dev, ok := t.network.DeviceByIP(srcIP); ok {
		return Target{Name: name, Host: dev.ManagementIP, Type: dev.Type}
	}
	if name, dev, ok := t.network.DeviceByIP(dstIP); ok {
		return Target{Name: name, Host: dev.ManagementIP, Type: dev.Type}
	}
	if vlanName, vlan, ok := t.network.VLANByIP(srcIP); ok {
		if name, dev, ok := t.network.DeviceByIP(vlan.Gateway); ok {
			return Target{Name: name, Host: dev.ManagementIP, Type: dev.Type}
		}
		if dev, ok := t.network.Devices[vlan.Router]; ok {
			return Target{Name: vlan.Router, Host: dev.ManagementIP, Type: dev.Type}
		}
		return Target{Name: vlanName + "_device", Host: srcIP, Type: "vlan_device"}
	}
	return Target{Name: "unknown_device", Host: srcIP, Type: "unknown"}
}

// Classify runs the troubleshooting categories against the flow's resolved
// target. A probe that fails outright contributes nothing to its category's
// output; a category with no usable output is non-matching. Never returns an
// error: an unreachable or silent network classifies as none.
func (t *Troubleshooter) Classify(ctx context.Context, srcIP, dstIP string, dstPort int) models.RCAClassification {
	target := t.ResolveTarget(srcIP, dstIP)
	replacer := strings.NewReplacer(
		"{{source_ip}}", srcIP,
		"{{destination_ip}}", dstIP,
		"{{destination_port}}", strconv.Itoa(dstPort),
	)

	for _, cat := range t.categories {
		start := time.Now()
		output := t.runProbes(ctx, cat, target, replacer)
		metrics.ProbeDuration.WithLabelValues(cat.cfg.Name).Observe(time.Since(start).Seconds())

		if output == "" || !cat.pattern.MatchString(output) {
			continue
		}

		extracted, matchedRule := extractMetrics(cat, output)
		if matchedRule == "" {
			continue
		}

		t.logger.Info("troubleshooting category matched", "category", cat.cfg.Name,
			"metric", matchedRule, "target", target.Name)
		return models.RCAClassification{
			Category:     cat.cfg.Name,
			MatchedRule:  matchedRule,
			Severity:     cat.cfg.Severity,
			PlaybookID:   cat.cfg.PlaybookID,
			Metrics:      extracted,
			Output:       output,
			TargetDevice: target.Name,
		}
	}

	return models.RCAClassification{Category: CategoryNone, TargetDevice: target.Name}
}

// runProbes executes one category's probe commands and concatenates whatever
// output they produce. Diagnostic commands routinely exit non-zero on the
// very condition being probed (ping under total loss), so output is kept even
// when the executor reports an error.
func (t *Troubleshooter) runProbes(ctx context.Context, cat compiledCategory, target Target, replacer *strings.Replacer) string {
	var combined strings.Builder
	for _, tmpl := range cat.cfg.Probes {
		cmd := replacer.Replace(tmpl)

		probeCtx, cancel := context.WithTimeout(ctx, t.probeTimeout)
		res, err := t.exec.Run(probeCtx, target.Host, cmd)
		cancel()

		if err != nil && res.Output == "" {
			t.logger.Warn("probe failed", "category", cat.cfg.Name, "target", target.Host,
				"command", cmd, "error", err)
			continue
		}
		combined.WriteString(res.Output)
		combined.WriteString("\n")
	}
	return combined.String()
}

// extractMetrics applies the category's extraction rules to the combined
// output and reports the first metric whose value exceeds its threshold.
func extractMetrics(cat compiledCategory, output string) (map[string]float64, string) {
	extracted := make(map[string]float64)
	matchedRule := ""
	for _, m := range cat.metrics {
		groups := m.pattern.FindStringSubmatch(output)
		if len(groups) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			continue
		}
		extracted[m.rule.Name] = v
		if matchedRule == "" && v > m.rule.Threshold {
			matchedRule = m.rule.Name
		}
	}
	return extracted, matchedRule
}
