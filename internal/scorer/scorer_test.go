package scorer

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	docs := []Document{
		{Filename: "ana.pdf", Text: "Ana García, ingeniera de datos"},
		{Filename: "luis.txt", Text: "Luis Pérez, backend developer"},
	}

	prompt := BuildPrompt("Data Engineer con 3 años de experiencia", docs)

	for _, want := range []string{
		"2 CVs",
		"CANDIDATO #1 (Archivo: ana.pdf)",
		"CANDIDATO #2 (Archivo: luis.txt)",
		"Ana García",
		"Data Engineer con 3 años de experiencia",
		`"ranking"`,
		`"conclusion_global"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

const sampleJSON = `{
  "ranking": [
    { "nombre": "Ana García", "puntaje": 92, "ajuste": "Excelente", "razon_si": "Experiencia directa", "razon_no": "Sin liderazgo" },
    { "nombre": "Luis Pérez", "puntaje": 70, "ajuste": "Bueno", "razon_si": "Buen backend", "razon_no": "Poca experiencia en datos" }
  ],
  "conclusion_global": "Ana es la mejor candidata."
}`

func TestParseRanking_PlainJSON(t *testing.T) {
	r, err := ParseRanking(sampleJSON)
	if err != nil {
		t.Fatalf("ParseRanking error = %v", err)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(r.Entries))
	}
	if r.Entries[0].Name != "Ana García" || r.Entries[0].Score != 92 {
		t.Errorf("first entry = %+v", r.Entries[0])
	}
	if r.Conclusion != "Ana es la mejor candidata." {
		t.Errorf("Conclusion = %q", r.Conclusion)
	}
}

func TestParseRanking_MarkdownFence(t *testing.T) {
	raw := "Aquí está el ranking:\n```json\n" + sampleJSON + "\n```\nEspero que ayude."

	r, err := ParseRanking(raw)
	if err != nil {
		t.Fatalf("ParseRanking error = %v", err)
	}
	if len(r.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(r.Entries))
	}
}

func TestParseRanking_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"no es json",
		`{"ranking": []}`,
		`{"conclusion_global": "sin ranking"}`,
	}

	for _, raw := range testCases {
		if _, err := ParseRanking(raw); err == nil {
			t.Errorf("ParseRanking(%q) error = nil, want error", raw)
		}
	}
}
