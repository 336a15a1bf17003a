package models

// ModelFeatures is the fixed, ordered list of flow features consumed by the
// detection model. Order is part of the contract: index i of a preprocessed
// vector is the value of ModelFeatures[i]. Changing this list invalidates any
// trained model artifact.
var ModelFeatures = []string{
	"Flow Duration", "Total Fwd Packets", "Total Backward Packets",
	"Total Length of Fwd Packets", "Total Length of Bwd Packets",
	"Fwd Packet Length Max", "Fwd Packet Length Mean", "Fwd Packet Length Std",
	"Bwd Packet Length Max", "Bwd Packet Length Mean", "Bwd Packet Length Std",
	"Flow Bytes/s", "Flow Packets/s", "Flow IAT Mean", "Flow IAT Std",
	"Flow IAT Max", "Flow IAT Min", "Fwd IAT Total", "Fwd Header Length",
	"Bwd Header Length", "Min Packet Length", "Max Packet Length",
	"Packet Length Mean", "Packet Length Std", "Packet Length Variance",
	"ACK Flag Count", "Down/Up Ratio", "Average Packet Size",
	"Avg Bwd Segment Size", "Subflow Fwd Bytes", "Init_Win_bytes_forward",
	"Init_Win_bytes_backward", "Idle Mean", "Idle Max", "Idle Min",
}

// ReducedFeatures is the 9-feature subset handed to the rule-based RCA path.
var ReducedFeatures = []string{
	"Flow Duration", "Total Length of Fwd Packets", "Total Length of Bwd Packets",
	"Flow Bytes/s", "Flow Packets/s", "Fwd Header Length", "Bwd Header Length",
	"Max Packet Length", "Packet Length Mean",
}

// FlowFeatureRecord is an immutable mapping from recognized feature names to
// values. Construction through FlowFeaturesFromMap is the single place where
// the missing-feature-defaults-to-0.0 rule is applied.
type FlowFeatureRecord struct {
	values map[string]float64
}

// FlowFeaturesFromMap builds a record from raw name/value pairs. Unrecognized
// names are dropped; recognized-but-absent names default to 0.0.
func FlowFeaturesFromMap(raw map[string]float64) FlowFeatureRecord {
	values := make(map[string]float64, len(ModelFeatures))
	for _, name := range ModelFeatures {
		values[name] = raw[name]
	}
	return FlowFeatureRecord{values: values}
}

// Get returns the value for a recognized feature, 0.0 when absent.
func (r FlowFeatureRecord) Get(name string) float64 {
	return r.values[name]
}

// Vector returns the record projected onto ModelFeatures order.
func (r FlowFeatureRecord) Vector() []float64 {
	v := make([]float64, len(ModelFeatures))
	for i, name := range ModelFeatures {
		v[i] = r.values[name]
	}
	return v
}

// Reduced returns the 9-feature subset used by the rule-based RCA path.
func (r FlowFeatureRecord) Reduced() map[string]float64 {
	out := make(map[string]float64, len(ReducedFeatures))
	for _, name := range ReducedFeatures {
		out[name] = r.values[name]
	}
	return out
}
