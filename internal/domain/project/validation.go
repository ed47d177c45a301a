package project

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses an ISO calendar date (YYYY-MM-DD). Timestamps are accepted
// and truncated to their date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Validate checks the fields required before a project may be stored.
func Validate(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Client) == "" {
		return fmt.Errorf("%w: client is required", ErrInvalidInput)
	}
	if p.Stage.Order() < 0 {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, p.Stage)
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	for _, d := range []string{p.StartDate, p.Deadline, p.RecordingDate} {
		if d == "" {
			continue
		}
		if _, err := ParseDate(d); err != nil {
			return err
		}
	}
	if p.StartDate != "" && p.Deadline != "" {
		start, _ := ParseDate(p.StartDate)
		end, _ := ParseDate(p.Deadline)
		if end.Before(start) {
			return fmt.Errorf("%w: deadline before start date", ErrInvalidInput)
		}
	}
	return nil
}

// Apply returns a copy of p with the patch applied.
func (patch Patch) Apply(p Project) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Client != nil {
		p.Client = *patch.Client
	}
	if patch.Tag != nil {
		p.Tag = strings.TrimSpace(*patch.Tag)
	}
	if patch.Manager != nil {
		p.Manager = *patch.Manager
	}
	if patch.Managers != nil {
		p.Managers = append([]string(nil), patch.Managers...)
	}
	if patch.Stage != nil {
		p.Stage = *patch.Stage
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.Deadline != nil {
		p.Deadline = *patch.Deadline
	}
	if patch.RecordingDate != nil {
		p.RecordingDate = *patch.RecordingDate
	}
	if patch.Income != nil {
		p.Income = *patch.Income
	}
	if len(patch.Properties) > 0 {
		merged := make(map[string]any, len(p.Properties)+len(patch.Properties))
		for k, v := range p.Properties {
			merged[k] = v
		}
		for k, v := range patch.Properties {
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		p.Properties = merged
	}
	return p
}
