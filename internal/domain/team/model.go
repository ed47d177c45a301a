package team

import "time"

// Member is a studio team member the planner can assign work to.
type Member struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Role               string    `json:"role,omitempty"`
	CapacityPerWeekHrs float64   `json:"capacityPerWeekHrs"`
	CreatedAt          time.Time `json:"created_at"`
}
