package catalog

import (
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// focusPriority orders exercise types for the dominant-type tiebreak.
var focusPriority = []models.ExerciseType{
	models.TypePower,
	models.TypeHypertrophy,
	models.TypeCompound,
	models.TypeFlexibility,
	models.TypeCardio,
}

// Focus summarizes a program's dominant exercise type. The label is the
// most frequent type, earlier priority winning ties; the detail lists the
// per-type counts.
type Focus struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// ComputeFocus derives a program's focus summary.
func ComputeFocus(p *models.ProgramTemplate) Focus {
	counts := make(map[models.ExerciseType]int)
	for _, ex := range p.Exercises {
		t := ex.Type
		if t == "" {
			t = models.TypeCompound
		}
		counts[t]++
	}

	dominant := focusPriority[0]
	for _, t := range focusPriority {
		if counts[t] > counts[dominant] {
			dominant = t
		}
	}

	var parts []string
	for _, t := range focusPriority {
		if counts[t] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], titled(t)))
		}
	}
	detail := strings.Join(parts, " / ")
	if detail == "" {
		detail = "No exercises"
	}

	return Focus{
		Label:  titled(dominant) + "-focused",
		Detail: detail,
	}
}

func titled(t models.ExerciseType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
