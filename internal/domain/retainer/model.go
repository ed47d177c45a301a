package retainer

import "time"

// Retainer is a monthly-fee contract that covers a quota of projects.
type Retainer struct {
	ID               string    `json:"id"`
	Client           string    `json:"client"`
	Monthly          float64   `json:"monthly"`
	ProjectsPerMonth int       `json:"proyectosMensuales"`
	Tag              string    `json:"tag,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// Kind is the billing classification of a project.
type Kind string

const (
	KindRetainer Kind = "retainer"
	KindVariable Kind = "variable"
)

// ReferenceKey is the retainer client used as the canonical example.
const ReferenceKey = "carbono"
