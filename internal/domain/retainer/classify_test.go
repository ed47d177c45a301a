package retainer

import (
	"encoding/json"
	"testing"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		p    project.Project
		want Kind
	}{
		{"client", project.Project{Client: "Carbono"}, KindRetainer},
		{"client upper", project.Project{Client: "CARBONO"}, KindRetainer},
		{"top-level tag", project.Project{Client: "Estudio X", Tag: "carbono"}, KindRetainer},
		{"tag property", project.Project{Client: "Otro", Properties: map[string]any{"tag": "Carbono"}}, KindRetainer},
		{"tags list", project.Project{Client: "Otro", Properties: map[string]any{"tags": []any{"spot", "carbono"}}}, KindRetainer},
		{"nested client", project.Project{Client: "Otro", Properties: map[string]any{"client": " carbono "}}, KindRetainer},
		{"other", project.Project{Client: "Otro", Properties: map[string]any{"tag": "verano"}}, KindVariable},
		{"empty", project.Project{}, KindVariable},
		{"non string tag", project.Project{Properties: map[string]any{"tag": 7}}, KindVariable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.p, ReferenceKey))
		})
	}
}

func TestClassifyDecodedTopLevelTag(t *testing.T) {
	var p project.Project
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Spot","client":"Estudio X","tag":"carbono"}`), &p))
	require.Equal(t, "carbono", p.Tag)
	require.Equal(t, KindRetainer, Classify(p, ReferenceKey))
}

func TestMatchSkipsInactive(t *testing.T) {
	p := project.Project{Client: "Carbono"}
	retainers := []Retainer{
		{ID: "old", Client: "Carbono", Active: false},
		{ID: "cur", Client: "Carbono", Tag: "carbono", Active: true},
	}
	r, ok := Match(p, retainers)
	require.True(t, ok)
	require.Equal(t, "cur", r.ID)

	_, ok = Match(project.Project{Client: "Otro"}, retainers)
	require.False(t, ok)
}
