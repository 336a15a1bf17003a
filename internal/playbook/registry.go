package playbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// ErrPlaybookNotFound is returned when no playbook is registered for a
// response type and category.
var ErrPlaybookNotFound = errors.New("playbook not found")

// Registry holds the loaded playbooks keyed by response type ("type1",
// "type2") and cause category. Loaded once at startup, read-only after.
type Registry struct {
	byType map[string]map[string]*Playbook
}

// LoadRegistry reads every playbook named in the config maps. A missing or
// invalid file fails the whole load so a half-registered remediation surface
// never goes live.
func LoadRegistry(cfg config.PlaybooksConfig, log logger.Logger) (*Registry, error) {
	r := &Registry{byType: map[string]map[string]*Playbook{
		"type1": {},
		"type2": {},
	}}

	for responseType, files := range map[string]map[string]string{
		"type1": cfg.Type1,
		"type2": cfg.Type2,
	} {
		for category, file := range files {
			path := filepath.Join(cfg.Dir, file)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read playbook %s/%s: %w", responseType, category, err)
			}
			pb, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("playbook %s/%s: %w", responseType, category, err)
			}
			r.byType[responseType][category] = pb
			log.Debug("playbook registered", "response_type", responseType,
				"category", category, "name", pb.Name)
		}
	}

	log.Info("playbook registry loaded",
		"type1", len(r.byType["type1"]), "type2", len(r.byType["type2"]))
	return r, nil
}

// Lookup returns the playbook for a response type and category.
func (r *Registry) Lookup(responseType, category string) (*Playbook, error) {
	pb, ok := r.byType[responseType][category]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrPlaybookNotFound, responseType, category)
	}
	return pb, nil
}
