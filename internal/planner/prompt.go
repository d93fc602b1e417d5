package planner

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
)

//go:embed plan_prompt.md
var planPrompt string

var planTemplate = template.Must(template.New("plan").Parse(planPrompt))

// systemPrompt frames the model as the product's nutritionist persona.
const systemPrompt = "You are a helpful nutritionist and cooking expert named Genie. " +
	"You create practical, varied meal plans tailored to the user's preferences and restrictions. " +
	"Always respond with a single JSON object and nothing else."

type promptData struct {
	DayCount            int
	MealTypes           string
	DietaryPreferences  string
	DietaryRestrictions string
	CuisineTypes        string
	ComplexityLevels    string
	PriorPlans          []string
}

// buildPlanPrompt assembles the user prompt for a generation run. Prior
// completed plans (most recent first) are embedded as variety context so
// the model avoids repeating itself.
func buildPlanPrompt(req PlanRequest, dayCount int, priors []PlanData) (string, error) {
	data := promptData{
		DayCount:            dayCount,
		MealTypes:           strings.Join(req.MealTypes, ", "),
		DietaryPreferences:  strings.Join(req.DietaryPreferences, ", "),
		DietaryRestrictions: strings.Join(req.DietaryRestrictions, ", "),
		CuisineTypes:        strings.Join(req.CuisineTypes, ", "),
		ComplexityLevels:    strings.Join(req.ComplexityLevels, ", "),
	}

	for _, prior := range priors {
		serialized, err := json.Marshal(prior)
		if err != nil {
			continue
		}
		data.PriorPlans = append(data.PriorPlans, string(serialized))
	}

	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
