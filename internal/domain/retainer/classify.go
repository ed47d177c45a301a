package retainer

import (
	"strings"

	"github.com/rpggio/postflow/internal/domain/project"
)

// Classify reports whether a project belongs to the retainer identified by
// key. Tag and client are compared case-insensitively, both on the project
// itself and inside its properties bag.
func Classify(p project.Project, key string) Kind {
	if matches(p, key, key) {
		return KindRetainer
	}
	return KindVariable
}

// Match returns the first active retainer the project belongs to.
func Match(p project.Project, retainers []Retainer) (*Retainer, bool) {
	for i := range retainers {
		r := retainers[i]
		if !r.Active {
			continue
		}
		tag := r.Tag
		if tag == "" {
			tag = r.Client
		}
		if matches(p, tag, r.Client) {
			return &r, true
		}
	}
	return nil, false
}

func matches(p project.Project, tag, client string) bool {
	tag = strings.TrimSpace(tag)
	client = strings.TrimSpace(client)
	if tag != "" {
		if hasTag(p.Tag, tag) || hasTag(p.Properties["tag"], tag) || hasTag(p.Properties["tags"], tag) {
			return true
		}
	}
	if client != "" {
		if strings.EqualFold(strings.TrimSpace(p.Client), client) {
			return true
		}
		if v, ok := p.Properties["client"].(string); ok && strings.EqualFold(strings.TrimSpace(v), client) {
			return true
		}
	}
	return false
}

// hasTag accepts a single tag string or a list of tags.
func hasTag(v any, tag string) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(t), tag)
	case []string:
		for _, s := range t {
			if strings.EqualFold(strings.TrimSpace(s), tag) {
				return true
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(strings.TrimSpace(s), tag) {
				return true
			}
		}
	}
	return false
}
