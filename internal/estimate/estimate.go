// Package estimate projects editing milestones from historical revision
// cycle durations. Everything here is a pure function of its inputs.
package estimate

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
)

// Durations are average phase lengths in whole days.
type Durations struct {
	Editing  int `json:"editing"`
	Review   int `json:"review"`
	Feedback int `json:"feedback"`
}

// Fallback is used for any phase without historical samples.
var Fallback = Durations{Editing: 2, Review: 1, Feedback: 1}

// Date renders as YYYY-MM-DD.
type Date struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(project.DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := project.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(project.DateLayout)
}

// Milestones are the three projected delivery checkpoints of a project.
type Milestones struct {
	ProjectID        string    `json:"project_id"`
	ProjectName      string    `json:"project_name,omitempty"`
	RecordingDate    Date      `json:"recording_date"`
	FirstVersion     Date      `json:"first_version"`
	ReviewCheckpoint Date      `json:"review_checkpoint"`
	FinalDelivery    Date      `json:"final_delivery"`
	Durations        Durations `json:"durations"`
	Overridden       []string  `json:"overridden,omitempty"`
}

// Override replaces computed milestone dates for one project.
type Override struct {
	FirstVersion     *time.Time `json:"first_version,omitempty"`
	ReviewCheckpoint *time.Time `json:"review_checkpoint,omitempty"`
	FinalDelivery    *time.Time `json:"final_delivery,omitempty"`
}

// Overrides are keyed by project ID.
type Overrides map[string]Override

type sampler struct {
	sum   float64
	count int
}

func (s *sampler) add(from, to time.Time) {
	d := to.Sub(from).Hours() / 24
	if d < 0 {
		return
	}
	s.sum += d
	s.count++
}

func (s sampler) average(fallback int) int {
	if s.count == 0 {
		return fallback
	}
	avg := int(math.Round(s.sum / float64(s.count)))
	if avg < 1 {
		return 1
	}
	return avg
}

// Averages computes editing, review and feedback durations across every
// project's cycle history:
//
//	editing  = sent_at - started_at
//	review   = client_returned_at - sent_at
//	feedback = next cycle started_at - client_returned_at
func Averages(history map[string][]cycle.Cycle) Durations {
	ids := make([]string, 0, len(history))
	for id := range history {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var editing, review, feedback sampler
	for _, id := range ids {
		cycles := append([]cycle.Cycle(nil), history[id]...)
		sort.Slice(cycles, func(i, j int) bool { return cycles[i].Number < cycles[j].Number })
		for i, c := range cycles {
			if c.SentAt != nil {
				editing.add(c.StartedAt, *c.SentAt)
				if c.ClientReturnedAt != nil {
					review.add(*c.SentAt, *c.ClientReturnedAt)
				}
			}
			if c.ClientReturnedAt != nil && i+1 < len(cycles) {
				feedback.add(*c.ClientReturnedAt, cycles[i+1].StartedAt)
			}
		}
	}

	return Durations{
		Editing:  editing.average(Fallback.Editing),
		Review:   review.average(Fallback.Review),
		Feedback: feedback.average(Fallback.Feedback),
	}
}

// Build projects milestones from a recording date. Editing starts one
// business day after recording and that day counts as the first editing day.
func Build(recording time.Time, d Durations) Milestones {
	recording = time.Date(recording.Year(), recording.Month(), recording.Day(), 0, 0, 0, 0, time.UTC)
	start := AddBusinessDays(recording, 1)
	first := AddBusinessDays(start, d.Editing-1)
	review := AddBusinessDays(first, d.Review)
	final := AddBusinessDays(review, d.Feedback)
	return Milestones{
		RecordingDate:    Date{recording},
		FirstVersion:     Date{first},
		ReviewCheckpoint: Date{review},
		FinalDelivery:    Date{final},
		Durations:        d,
	}
}

// Apply replaces computed dates with the override, snapping each one forward
// to a weekday.
func (o Override) Apply(m Milestones) Milestones {
	if o.FirstVersion != nil {
		m.FirstVersion = Date{SnapForward(*o.FirstVersion)}
		m.Overridden = append(m.Overridden, "first_version")
	}
	if o.ReviewCheckpoint != nil {
		m.ReviewCheckpoint = Date{SnapForward(*o.ReviewCheckpoint)}
		m.Overridden = append(m.Overridden, "review_checkpoint")
	}
	if o.FinalDelivery != nil {
		m.FinalDelivery = Date{SnapForward(*o.FinalDelivery)}
		m.Overridden = append(m.Overridden, "final_delivery")
	}
	return m
}

// Eligible reports whether the project gets a projected estimate: it has a
// recording date, is not delivered and has not entered the cycle board yet.
func Eligible(p project.Project, cycles []cycle.Cycle) bool {
	if p.RecordingDate == "" || len(cycles) > 0 {
		return false
	}
	if p.Stage == project.StageDelivered || !p.Active() {
		return false
	}
	_, err := project.ParseDate(p.RecordingDate)
	return err == nil
}

// ForProjects builds milestones for every eligible project, in input order.
func ForProjects(projects []project.Project, history map[string][]cycle.Cycle, overrides Overrides) []Milestones {
	d := Averages(history)
	out := make([]Milestones, 0, len(projects))
	for _, p := range projects {
		if !Eligible(p, history[p.ID]) {
			continue
		}
		recording, _ := project.ParseDate(p.RecordingDate)
		m := Build(recording, d)
		m.ProjectID = p.ID
		m.ProjectName = p.Name
		if o, ok := overrides[p.ID]; ok {
			m = o.Apply(m)
		}
		out = append(out, m)
	}
	return out
}

// OverridesKey is the project property holding manual milestone dates, e.g.
// {"final_delivery": "2025-02-20"}.
const OverridesKey = "milestones"

// OverridesFromProjects reads manual milestone dates from project properties.
// Unparseable dates are ignored.
func OverridesFromProjects(projects []project.Project) Overrides {
	out := Overrides{}
	for _, p := range projects {
		raw, ok := p.Properties[OverridesKey].(map[string]any)
		if !ok {
			continue
		}
		var o Override
		o.FirstVersion = overrideDate(raw["first_version"])
		o.ReviewCheckpoint = overrideDate(raw["review_checkpoint"])
		o.FinalDelivery = overrideDate(raw["final_delivery"])
		if o.FirstVersion != nil || o.ReviewCheckpoint != nil || o.FinalDelivery != nil {
			out[p.ID] = o
		}
	}
	return out
}

func overrideDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := project.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
