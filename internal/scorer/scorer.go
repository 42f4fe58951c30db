// Package scorer ranks candidate CVs against a job description through an
// LLM. The wire format (Spanish JSON keys) is what the frontend consumes.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Document is one candidate CV, already reduced to plain text.
type Document struct {
	Filename string
	Text     string
}

// Entry is one ranked candidate.
type Entry struct {
	Name       string  `json:"nombre"`
	Score      float64 `json:"puntaje"`
	Fit        string  `json:"ajuste"`
	Strengths  string  `json:"razon_si"`
	Weaknesses string  `json:"razon_no"`
}

// Ranking is the structured scoring result.
type Ranking struct {
	Entries    []Entry `json:"ranking"`
	Conclusion string  `json:"conclusion_global"`
}

// Scorer produces a ranking for a set of CVs against a job description.
type Scorer interface {
	Rank(ctx context.Context, jobDescription string, docs []Document) (*Ranking, error)
}

// BuildPrompt assembles the headhunter prompt: job description plus
// numbered candidate blocks, with a JSON-only instruction.
func BuildPrompt(jobDescription string, docs []Document) string {
	var cvs strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&cvs, "\n--- CANDIDATO #%d (Archivo: %s) ---\n%s\n", i+1, d.Filename, d.Text)
	}

	return fmt.Sprintf(`Eres un Headhunter Senior. Evalúa estos %d CVs para la siguiente vacante:
DESCRIPCIÓN DEL PUESTO: %s
DATOS DE LOS CANDIDATOS: %s

TAREA: Genera un ranking profesional. Responde ÚNICAMENTE con un JSON puro:
{
  "ranking": [
    { "nombre": "Nombre Real", "puntaje": 0-100, "ajuste": "Excelente/Bueno/Regular", "razon_si": "...", "razon_no": "..." }
  ],
  "conclusion_global": "..."
}`, len(docs), jobDescription, cvs.String())
}

// ParseRanking unmarshals a model response, tolerating a markdown code
// fence around the JSON body.
func ParseRanking(raw string) (*Ranking, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "```json"); i >= 0 {
		raw = raw[i+len("```json"):]
		if j := strings.Index(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}

	var r Ranking
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}
	if len(r.Entries) == 0 {
		return nil, fmt.Errorf("parse ranking: empty ranking")
	}
	return &r, nil
}
