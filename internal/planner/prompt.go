package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

const basePrompt = `Eres el planificador de producción de un estudio audiovisual.
Analiza los proyectos, retainers y el equipo que aparecen en el JSON.
Detecta retrasos, cuellos de botella y sobrecarga de los responsables.
Responde SOLO con un objeto JSON con esta forma:
{"summary": "texto", "actions": [{"project": "", "client": "", "phase": "", "issue": "", "recommendation": "", "justification": ""}]}
Si una acción puede aplicarse directamente añade "type": "UPDATE_PROJECT", "projectId" y "patch" con los campos a cambiar.`

var horizons = map[Mode]string{
	ModeDaily:  "Planifica el trabajo de hoy, prioriza entregas de las próximas 48 horas.",
	ModeWeekly: "Planifica la semana, reparte la carga entre el equipo según su capacidad semanal.",
}

// BuildPrompt renders the instruction prompt with the snapshot attached.
func BuildPrompt(mode Mode, snap Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	horizon, ok := horizons[mode]
	if !ok {
		horizon = horizons[ModeDaily]
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n")
	b.WriteString(horizon)
	b.WriteString("\nFecha de hoy: ")
	b.WriteString(snap.Today)
	b.WriteString("\nDatos:\n")
	b.Write(data)
	return b.String(), nil
}
