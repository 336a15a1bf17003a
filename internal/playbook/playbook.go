// Package playbook loads and renders remediation playbooks. Playbooks are
// externally authored YAML documents selected by cause category; the core
// never mutates them.
package playbook

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Playbook is one remediation document: an ordered list of responses, each a
// tagged group of parameterized command templates.
type Playbook struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Version     string     `yaml:"version"`
	Responses   []Response `yaml:"responses"`
}

// Response is one remediation step group inside a playbook.
type Response struct {
	Category string   `yaml:"category"`
	Commands []string `yaml:"commands"`
}

// Params are the substitution values available to command templates.
// FlowMetrics keys substitute verbatim, e.g. a "flow_bytes_per_sec" key
// fills {{flow_bytes_per_sec}}.
type Params struct {
	SourceIP        string
	DestinationIP   string
	DestinationPort int
	FlowMetrics     map[string]float64
}

// Parse decodes and validates one playbook document.
func Parse(data []byte) (*Playbook, error) {
	var pb Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("decode playbook: %w", err)
	}
	if pb.Name == "" {
		return nil, fmt.Errorf("playbook has no name")
	}
	if len(pb.Responses) == 0 {
		return nil, fmt.Errorf("playbook %s has no responses", pb.Name)
	}
	for i, r := range pb.Responses {
		if len(r.Commands) == 0 {
			return nil, fmt.Errorf("playbook %s response %d has no commands", pb.Name, i)
		}
	}
	return &pb, nil
}

// Render substitutes params into every command template and returns the
// commands in document order. Unknown placeholders pass through untouched so
// a template typo surfaces in execution logs rather than silently vanishing.
func (p *Playbook) Render(params Params) []string {
	pairs := []string{
		"{{source_ip}}", params.SourceIP,
		"{{destination_ip}}", params.DestinationIP,
		"{{destination_port}}", strconv.Itoa(params.DestinationPort),
	}
	for name, v := range params.FlowMetrics {
		pairs = append(pairs, "{{"+name+"}}", strconv.FormatFloat(v, 'f', -1, 64))
	}
	replacer := strings.NewReplacer(pairs...)

	var cmds []string
	for _, r := range p.Responses {
		for _, tmpl := range r.Commands {
			cmds = append(cmds, replacer.Replace(tmpl))
		}
	}
	return cmds
}
