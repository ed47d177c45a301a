package project

import (
	"strings"
	"time"
)

// DateLayout is the on-wire and stored format for project calendar dates.
const DateLayout = "2006-01-02"

// Project is a single production tracked through recording, editing and delivery.
type Project struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Client        string         `json:"client"`
	Tag           string         `json:"tag,omitempty"`
	Manager       string         `json:"manager,omitempty"`
	Managers      []string       `json:"managers,omitempty"`
	Stage         Stage          `json:"stage"`
	Status        Status         `json:"status"`
	StartDate     string         `json:"startDate,omitempty"`
	Deadline      string         `json:"deadline,omitempty"`
	RecordingDate string         `json:"recordingDate,omitempty"`
	Income        float64        `json:"income,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
	CurrentCycle  int            `json:"current_cycle"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ManagerNames returns the managers responsible for the project, falling back
// to the single manager field.
func (p Project) ManagerNames() []string {
	names := make([]string, 0, len(p.Managers)+1)
	for _, m := range p.Managers {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, m)
		}
	}
	if m := strings.TrimSpace(p.Manager); len(names) == 0 && m != "" {
		names = append(names, m)
	}
	return names
}

// Active reports whether the project still counts toward a manager's load.
func (p Project) Active() bool {
	return p.Status != StatusCompleted && p.Status != StatusCancelled
}

// Property returns a string value from the properties bag.
func (p Project) Property(key string) string {
	if p.Properties == nil {
		return ""
	}
	if v, ok := p.Properties[key].(string); ok {
		return v
	}
	return ""
}

// Patch carries a partial update. Nil fields are left untouched; Properties
// are merged key by key, a nil value removes the key.
type Patch struct {
	Name          *string        `json:"name,omitempty"`
	Client        *string        `json:"client,omitempty"`
	Tag           *string        `json:"tag,omitempty"`
	Manager       *string        `json:"manager,omitempty"`
	Managers      []string       `json:"managers,omitempty"`
	Stage         *Stage         `json:"stage,omitempty"`
	Status        *Status        `json:"status,omitempty"`
	StartDate     *string        `json:"startDate,omitempty"`
	Deadline      *string        `json:"deadline,omitempty"`
	RecordingDate *string        `json:"recordingDate,omitempty"`
	Income        *float64       `json:"income,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// ListOptions filters project listings.
type ListOptions struct {
	Status  *Status
	Stage   *Stage
	Manager string
	Client  string
}
