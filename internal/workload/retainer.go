package workload

import (
	"sort"
	"strings"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
)

// Date fields CountByMonth can inspect.
const (
	FieldStartDate     = "startDate"
	FieldDeadline      = "deadline"
	FieldRecordingDate = "recordingDate"
	FieldCompletedAt   = "completedAt"
)

// RetainerUsage compares a retainer's monthly quota with the projects it covered.
type RetainerUsage struct {
	RetainerID string   `json:"retainer_id"`
	Client     string   `json:"client"`
	Month      string   `json:"month"`
	Used       int      `json:"used"`
	Quota      int      `json:"quota"`
	Remaining  int      `json:"remaining"`
	Exceeded   bool     `json:"exceeded"`
	Revenue    float64  `json:"revenue"`
	Projects   []string `json:"projects"`
}

// CompletionDate returns when a project was delivered: the completedAt
// property, else the deadline of a completed project.
func CompletionDate(p project.Project) string {
	if v := p.Property(FieldCompletedAt); v != "" {
		return v
	}
	if p.Status == project.StatusCompleted {
		return p.Deadline
	}
	return ""
}

func dateField(p project.Project, field string) string {
	switch field {
	case FieldStartDate:
		return p.StartDate
	case FieldDeadline:
		return p.Deadline
	case FieldRecordingDate:
		return p.RecordingDate
	case FieldCompletedAt:
		return CompletionDate(p)
	default:
		return p.Property(field)
	}
}

// CountByMonth counts projects classified to the retainer key whose date
// field starts with the month key.
func CountByMonth(projects []project.Project, key, month, field string) int {
	n := 0
	for _, p := range projects {
		if retainer.Classify(p, key) != retainer.KindRetainer {
			continue
		}
		if month != "" && strings.HasPrefix(dateField(p, field), month) {
			n++
		}
	}
	return n
}

// RetainerMonth counts the unique-by-name projects a retainer covered in the
// month, by start month or completion month.
func RetainerMonth(projects []project.Project, r retainer.Retainer, month string) RetainerUsage {
	r.Active = true
	u := newUsageTally(r, month)
	for _, p := range projects {
		u.add(p)
	}
	return u.result()
}

type usageTally struct {
	r     retainer.Retainer
	month string
	names map[string]string
}

func newUsageTally(r retainer.Retainer, month string) *usageTally {
	return &usageTally{r: r, month: month, names: make(map[string]string)}
}

func (u *usageTally) add(p project.Project) {
	if u.month == "" {
		return
	}
	if _, ok := retainer.Match(p, []retainer.Retainer{u.r}); !ok {
		return
	}
	if !strings.HasPrefix(p.StartDate, u.month) && !strings.HasPrefix(CompletionDate(p), u.month) {
		return
	}
	key := strings.ToLower(strings.TrimSpace(p.Name))
	if _, seen := u.names[key]; !seen {
		u.names[key] = p.Name
	}
}

func (u *usageTally) result() RetainerUsage {
	names := make([]string, 0, len(u.names))
	for _, n := range u.names {
		names = append(names, n)
	}
	sort.Strings(names)
	used := len(names)
	remaining := u.r.ProjectsPerMonth - used
	if remaining < 0 {
		remaining = 0
	}
	return RetainerUsage{
		RetainerID: u.r.ID,
		Client:     u.r.Client,
		Month:      u.month,
		Used:       used,
		Quota:      u.r.ProjectsPerMonth,
		Remaining:  remaining,
		Exceeded:   used > u.r.ProjectsPerMonth,
		Revenue:    u.r.Monthly,
		Projects:   names,
	}
}
