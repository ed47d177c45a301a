package cycle

import "time"

// Status represents the step of a revision cycle
type Status string

const (
	StatusEditing          Status = "editando"
	StatusSent             Status = "enviado"
	StatusAwaitingFeedback Status = "esperando_feedback"
	StatusCorrecting       Status = "corrigiendo"
	StatusApproved         Status = "aprobado"
)

// Cycle is one edit -> client review -> feedback loop for a project
type Cycle struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	Number           int        `json:"number"`
	Status           Status     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	ClientReturnedAt *time.Time `json:"client_returned_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// HistoryEvent records a single status transition. Events are append-only.
type HistoryEvent struct {
	ID         int64     `json:"id"`
	CycleID    string    `json:"cycle_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      string    `json:"notes,omitempty"`
}

// Board is the cycle view for a single project
type Board struct {
	ProjectID string         `json:"project_id"`
	Current   *Cycle         `json:"current,omitempty"`
	Cycles    []Cycle        `json:"cycles"`
	History   []HistoryEvent `json:"history"`
}
