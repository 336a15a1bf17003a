package config

type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Port        int    `mapstructure:"port" yaml:"port"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	WebSocket WebSocketConfig `mapstructure:"websocket" yaml:"websocket"`
	Model     ModelConfig     `mapstructure:"model" yaml:"model"`
	RCA       RCAConfig       `mapstructure:"rca" yaml:"rca"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Playbooks PlaybooksConfig `mapstructure:"playbooks" yaml:"playbooks"`
	Ingest    IngestConfig    `mapstructure:"ingest" yaml:"ingest"`
	Executor  ExecutorConfig  `mapstructure:"executor" yaml:"executor"`
}

// CacheConfig handles the Valkey/Redis store backing events and responses.
type CacheConfig struct {
	Nodes    []string `mapstructure:"nodes" yaml:"nodes"`
	TTL      int      `mapstructure:"ttl" yaml:"ttl"` // seconds, 0 = no expiry
	Password string   `mapstructure:"password" yaml:"password"`
	DB       int      `mapstructure:"db" yaml:"db"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
}

type WebSocketConfig struct {
	ReadBufferSize  int `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize int `mapstructure:"write_buffer_size" yaml:"write_buffer_size"`
	PingIntervalSec int `mapstructure:"ping_interval_seconds" yaml:"ping_interval_seconds"`
}

// ModelConfig points at the trained artifact and carries inference settings.
type ModelConfig struct {
	ArtifactPath string  `mapstructure:"artifact_path" yaml:"artifact_path"`
	ScalerPath   string  `mapstructure:"scaler_path" yaml:"scaler_path"`
	Threshold    float64 `mapstructure:"threshold" yaml:"threshold"`
	BatchSize    int     `mapstructure:"batch_size" yaml:"batch_size"`
}

type RCAConfig struct {
	Type1 Type1Config `mapstructure:"type1" yaml:"type1"`
	Type2 Type2Config `mapstructure:"type2" yaml:"type2"`
}

// Type1Thresholds are the fixed numeric bounds for the rule-based classifier.
// Values above a bound classify the flow into the owning category.
type Type1Thresholds struct {
	FlowBytesPerSec    float64 `mapstructure:"flow_bytes_per_sec" yaml:"flow_bytes_per_sec"`
	FlowPacketsPerSec  float64 `mapstructure:"flow_packets_per_sec" yaml:"flow_packets_per_sec"`
	TotalFwdBytes      float64 `mapstructure:"total_fwd_bytes" yaml:"total_fwd_bytes"`
	TotalBwdBytes      float64 `mapstructure:"total_bwd_bytes" yaml:"total_bwd_bytes"`
	FwdHeaderLength    float64 `mapstructure:"fwd_header_length" yaml:"fwd_header_length"`
	BwdHeaderLength    float64 `mapstructure:"bwd_header_length" yaml:"bwd_header_length"`
	MaxPacketLength    float64 `mapstructure:"max_packet_length" yaml:"max_packet_length"`
	PacketLengthMean   float64 `mapstructure:"packet_length_mean" yaml:"packet_length_mean"`
	FlowDurationMicros float64 `mapstructure:"flow_duration_micros" yaml:"flow_duration_micros"`
}

type Type1Config struct {
	Thresholds Type1Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	// Playbooks maps rule category -> playbook id.
	Playbooks map[string]string `mapstructure:"playbooks" yaml:"playbooks"`
}

// MetricRule extracts one numeric metric from combined probe output. Pattern
// must contain exactly one capture group holding the number.
type MetricRule struct {
	Name      string  `mapstructure:"name" yaml:"name"`
	Pattern   string  `mapstructure:"pattern" yaml:"pattern"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

// ProbeCategory is one troubleshooting category for the Type 2 classifier.
// Categories are evaluated in declared order; the first match wins.
type ProbeCategory struct {
	Name       string       `mapstructure:"name" yaml:"name"`
	PlaybookID string       `mapstructure:"playbook_id" yaml:"playbook_id"`
	Severity   string       `mapstructure:"severity" yaml:"severity"`
	Probes     []string     `mapstructure:"probes" yaml:"probes"`
	Pattern    string       `mapstructure:"pattern" yaml:"pattern"`
	Metrics    []MetricRule `mapstructure:"metrics" yaml:"metrics"`
}

type Type2Config struct {
	Categories     []ProbeCategory `mapstructure:"categories" yaml:"categories"`
	ProbeTimeoutMs int             `mapstructure:"probe_timeout_ms" yaml:"probe_timeout_ms"`
}

type DeviceConfig struct {
	Type         string            `mapstructure:"type" yaml:"type"`
	ManagementIP string            `mapstructure:"management_ip" yaml:"management_ip"`
	Interfaces   map[string]string `mapstructure:"interfaces" yaml:"interfaces"`
}

type VLANConfig struct {
	Subnet  string   `mapstructure:"subnet" yaml:"subnet"`
	Gateway string   `mapstructure:"gateway" yaml:"gateway"`
	Devices []string `mapstructure:"devices" yaml:"devices"`
	Switch  string   `mapstructure:"switch" yaml:"switch"`
	Router  string   `mapstructure:"router" yaml:"router"`
}

// NetworkConfig is the managed device and VLAN inventory used to resolve a
// flow's endpoints to a troubleshooting target.
type NetworkConfig struct {
	Devices map[string]DeviceConfig `mapstructure:"devices" yaml:"devices"`
	VLANs   map[string]VLANConfig   `mapstructure:"vlans" yaml:"vlans"`
}

type PlaybooksConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Type1/Type2 map category -> playbook file relative to Dir.
	Type1 map[string]string `mapstructure:"type1" yaml:"type1"`
	Type2 map[string]string `mapstructure:"type2" yaml:"type2"`
}

type IngestConfig struct {
	Directory       string `mapstructure:"directory" yaml:"directory"`
	IntervalSeconds int    `mapstructure:"interval_seconds" yaml:"interval_seconds"`
	MaxFiles        int    `mapstructure:"max_files" yaml:"max_files"`
}

// ExecutorConfig configures the SSH command executor shared by diagnostics
// and remediation.
type ExecutorConfig struct {
	User      string `mapstructure:"user" yaml:"user"`
	KeyPath   string `mapstructure:"key_path" yaml:"key_path"`
	Port      int    `mapstructure:"port" yaml:"port"`
	TimeoutMs int    `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}
