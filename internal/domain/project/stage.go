package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stage is the production phase of a project.
type Stage string

const (
	StageRecording   Stage = "grabacion"
	StageEditing     Stage = "edicion"
	StageReview      Stage = "revision"
	StageCorrections Stage = "correcciones"
	StageDelivered   Stage = "entregado"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageRecording, StageEditing, StageReview, StageCorrections, StageDelivered}

// Status is the board status of a project.
type Status string

const (
	StatusPending    Status = "Pendiente"
	StatusInProgress Status = "En progreso"
	StatusInReview   Status = "En revisión"
	StatusCompleted  Status = "Completado"
	StatusCancelled  Status = "Cancelado"
)

// BoardColumns are the four statuses a kanban board renders.
var BoardColumns = []Status{StatusPending, StatusInProgress, StatusInReview, StatusCompleted}

var stageAliases = map[string]Stage{
	"grabacion":    StageRecording,
	"grabando":     StageRecording,
	"recording":    StageRecording,
	"edicion":      StageEditing,
	"editando":     StageEditing,
	"editing":      StageEditing,
	"revision":     StageReview,
	"review":       StageReview,
	"correcciones": StageCorrections,
	"correccion":   StageCorrections,
	"corrections":  StageCorrections,
	"entregado":    StageDelivered,
	"entrega":      StageDelivered,
	"delivered":    StageDelivered,
}

var statusAliases = map[string]Status{
	"pendiente":   StatusPending,
	"pending":     StatusPending,
	"en progreso": StatusInProgress,
	"progreso":    StatusInProgress,
	"in progress": StatusInProgress,
	"en revision": StatusInReview,
	"revision":    StatusInReview,
	"in review":   StatusInReview,
	"completado":  StatusCompleted,
	"completada":  StatusCompleted,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"cancelado":   StatusCancelled,
	"cancelada":   StatusCancelled,
	"cancelled":   StatusCancelled,
}

// fold lowercases, strips accents and collapses separators so legacy
// spellings ("EN_REVISIÓN", " en-progreso ") compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	out = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, out)
	return strings.Join(strings.Fields(out), " ")
}

// ParseStage converts a stored or user supplied stage string.
func ParseStage(s string) (Stage, error) {
	if stage, ok := stageAliases[fold(s)]; ok {
		return stage, nil
	}
	return "", fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, s)
}

// ParseStatus converts a stored or user supplied status string.
func ParseStatus(s string) (Status, error) {
	if status, ok := statusAliases[fold(s)]; ok {
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// NormalizeStatus maps any input onto one of the four board columns.
// Unknown and cancelled values land in Pendiente.
func NormalizeStatus(s string) Status {
	status, err := ParseStatus(s)
	if err != nil || status == StatusCancelled {
		return StatusPending
	}
	return status
}

// Order returns the pipeline position of the stage, -1 when unknown.
func (s Stage) Order() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// UnmarshalJSON accepts legacy spellings.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	stage, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// UnmarshalJSON accepts legacy spellings.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}
