package config

// DefaultType1Thresholds mirrors the production rule bounds: 1MB/s sustained
// throughput, 10k byte totals, 100 byte headers, jumbo-frame packet sizes and
// a 5 minute (microseconds) flow duration.
func DefaultType1Thresholds() Type1Thresholds {
	return Type1Thresholds{
		FlowBytesPerSec:    1_000_000,
		FlowPacketsPerSec:  1000,
		TotalFwdBytes:      10_000,
		TotalBwdBytes:      10_000,
		FwdHeaderLength:    100,
		BwdHeaderLength:    100,
		MaxPacketLength:    1500,
		PacketLengthMean:   1000,
		FlowDurationMicros: 300_000_000,
	}
}

func DefaultType1Playbooks() map[string]string {
	return map[string]string{
		"bandwidth_saturation": "bandwidth_saturation_fix",
		"throughput_anomaly":   "throughput_anomaly_fix",
		"header_length":        "header_length_fix",
		"packet_size":          "packet_size_fix",
		"flow_duration":        "flow_duration_fix",
	}
}

// DefaultType2Categories is the priority-ordered troubleshooting table. The
// first category whose probes produce a matching pattern and an
// over-threshold metric wins; later categories are not evaluated.
func DefaultType2Categories() []ProbeCategory {
	return []ProbeCategory{
		{
			Name:       "connectivity_issues",
			PlaybookID: "connectivity_fix",
			Severity:   "high",
			Probes: []string{
				"ping -c 4 -W 2 {{destination_ip}}",
				"ip route get {{destination_ip}}",
			},
			Pattern: `(?i)(100(?:\.0)?% packet loss|destination host unreachable|network is unreachable)`,
			Metrics: []MetricRule{
				{Name: "loss_percent", Pattern: `(\d+(?:\.\d+)?)% packet loss`, Threshold: 99},
			},
		},
		{
			Name:       "high_error_rates",
			PlaybookID: "error_rate_fix",
			Severity:   "high",
			Probes: []string{
				"ip -s link",
				"netstat -i",
			},
			Pattern: `(?i)errors`,
			Metrics: []MetricRule{
				{Name: "input_errors", Pattern: `(\d+)\s+input errors`, Threshold: 100},
				{Name: "rx_errors", Pattern: `RX-ERR\s+(\d+)`, Threshold: 100},
			},
		},
		{
			Name:       "flapping_links",
			PlaybookID: "flapping_links_fix",
			Severity:   "medium",
			Probes: []string{
				"grep -c 'changed state to' /var/log/syslog",
				"grep -c 'Link is' /var/log/syslog",
			},
			Pattern: `\d+`,
			Metrics: []MetricRule{
				{Name: "state_transitions", Pattern: `(?m)^(\d+)$`, Threshold: 5},
			},
		},
		{
			Name:       "packet_loss",
			PlaybookID: "packet_loss_fix",
			Severity:   "high",
			Probes: []string{
				"ping -c 20 -i 0.2 {{destination_ip}}",
			},
			Pattern: `packet loss`,
			Metrics: []MetricRule{
				{Name: "loss_percent", Pattern: `(\d+(?:\.\d+)?)% packet loss`, Threshold: 3},
			},
		},
		{
			Name:       "high_latency",
			PlaybookID: "latency_fix",
			Severity:   "medium",
			Probes: []string{
				"ping -c 10 {{destination_ip}}",
			},
			Pattern: `rtt min/avg/max`,
			Metrics: []MetricRule{
				{Name: "avg_latency_ms", Pattern: `= [\d.]+/([\d.]+)/`, Threshold: 100},
			},
		},
	}
}

func DefaultType1PlaybookFiles() map[string]string {
	return map[string]string{
		"bandwidth_saturation": "type1/bandwidth_saturation_fix.yml",
		"throughput_anomaly":   "type1/throughput_anomaly_fix.yml",
		"header_length":        "type1/header_length_fix.yml",
		"packet_size":          "type1/packet_size_fix.yml",
		"flow_duration":        "type1/flow_duration_fix.yml",
	}
}

func DefaultType2PlaybookFiles() map[string]string {
	return map[string]string{
		"connectivity_issues": "type2/connectivity_fix.yml",
		"high_error_rates":    "type2/error_rate_fix.yml",
		"flapping_links":      "type2/flapping_links_fix.yml",
		"packet_loss":         "type2/packet_loss_fix.yml",
		"high_latency":        "type2/latency_fix.yml",
	}
}

// DefaultNetworkDevices is the lab topology inventory: two core routers, two
// distribution routers, an edge firewall and a Linux gateway.
func DefaultNetworkDevices() map[string]DeviceConfig {
	return map[string]DeviceConfig{
		"CORE-RO-1": {
			Type:         "cisco_router",
			ManagementIP: "192.168.61.1",
			Interfaces: map[string]string{
				"FastEthernet0/0": "192.168.60.2",
				"FastEthernet1/0": "192.168.60.14",
				"FastEthernet1/1": "192.168.60.17",
				"FastEthernet2/0": "192.168.60.25",
				"FastEthernet2/1": "192.168.60.29",
				"FastEthernet3/0": "192.168.61.1",
			},
		},
		"CORE-RO-2": {
			Type:         "cisco_router",
			ManagementIP: "192.168.60.26",
			Interfaces: map[string]string{
				"FastEthernet1/0": "192.168.60.6",
				"FastEthernet0/0": "192.168.60.10",
				"FastEthernet1/1": "192.168.60.21",
				"FastEthernet2/0": "192.168.60.26",
				"FastEthernet2/1": "192.168.60.30",
			},
		},
		"DT-RO-1": {
			Type:         "cisco_router",
			ManagementIP: "192.168.60.1",
			Interfaces: map[string]string{
				"FastEthernet1/0": "192.168.60.1",
				"FastEthernet1/1": "192.168.60.5",
			},
		},
		"DT-RO-2": {
			Type:         "cisco_router",
			ManagementIP: "192.168.60.9",
			Interfaces: map[string]string{
				"FastEthernet1/0": "192.168.60.9",
				"FastEthernet1/1": "192.168.60.13",
			},
		},
		"EDGE-FW": {
			Type:         "cisco_asa",
			ManagementIP: "192.168.60.18",
			Interfaces: map[string]string{
				"GigabitEthernet0/0": "192.168.60.18",
				"GigabitEthernet0/1": "192.168.60.22",
				"GigabitEthernet0/2": "192.168.137.2",
			},
		},
		"Ubuntu-Gateway": {
			Type:         "linux_server",
			ManagementIP: "192.168.61.2",
			Interfaces: map[string]string{
				"eth0": "192.168.61.2",
			},
		},
	}
}

func DefaultVLANs() map[string]VLANConfig {
	return map[string]VLANConfig{
		"VLAN10": {
			Subnet:  "192.168.10.0/24",
			Gateway: "192.168.10.1",
			Devices: []string{"192.168.10.1", "192.168.10.2"},
			Switch:  "AC-SW-1",
			Router:  "DT-RO-1",
		},
		"VLAN20": {
			Subnet:  "192.168.20.0/24",
			Gateway: "192.168.20.1",
			Devices: []string{"192.168.20.1", "192.168.20.2"},
			Switch:  "AC-SW-2",
			Router:  "DT-RO-1",
		},
		"VLAN30": {
			Subnet:  "192.168.30.0/24",
			Gateway: "192.168.30.1",
			Devices: []string{"192.168.30.1", "192.168.30.2"},
			Switch:  "AC-SW-3",
			Router:  "DT-RO-2",
		},
		"VLAN40": {
			Subnet:  "192.168.40.0/24",
			Gateway: "192.168.40.1",
			Devices: []string{"192.168.40.1", "192.168.40.2"},
			Switch:  "AC-SW-4",
			Router:  "DT-RO-2",
		},
	}
}
