package planner

import (
	"testing"
)

const cleanPlanJSON = `{
	"days": [
		{
			"day": 1,
			"description": "A light start",
			"favorite": false,
			"meals": [
				{
					"type": "breakfast",
					"name": "Oatmeal",
					"ingredients": ["oats", "milk"],
					"recipe": "Simmer the oats in milk for 10 minutes.",
					"nutritionalInfo": {"calories": 300, "protein": 10, "carbs": 50, "fat": 5}
				}
			]
		}
	]
}`

func TestParsePlanDataClean(t *testing.T) {
	data, err := ParsePlanData(cleanPlanJSON)
	if err != nil {
		t.Fatalf("ParsePlanData failed: %v", err)
	}
	if len(data.Days) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(data.Days))
	}
	meal := data.Days[0].Meals[0]
	if meal.Name != "Oatmeal" {
		t.Errorf("Expected meal name 'Oatmeal', got '%s'", meal.Name)
	}
	if meal.Recipe.Text == "" {
		t.Error("Expected narrative recipe text")
	}
	if meal.NutritionalInfo.Calories != 300 {
		t.Errorf("Expected 300 calories, got %d", meal.NutritionalInfo.Calories)
	}
}

func TestParsePlanDataWithComments(t *testing.T) {
	commented := `// Here is your meal plan
{
	"days": [
		{
			"day": 1, // first day
			"favorite": false,
			/* meals for the day */
			"meals": [
				{
					"type": "breakfast",
					"name": "Oatmeal",
					"ingredients": ["oats", "milk"],
					"recipe": "Simmer the oats in milk for 10 minutes.",
					"nutritionalInfo": {"calories": 300, "protein": 10, "carbs": 50, "fat": 5}
				}
			]
		}
	]
}`

	data, err := ParsePlanData(commented)
	if err != nil {
		t.Fatalf("ParsePlanData failed on commented JSON: %v", err)
	}

	clean, err := ParsePlanData(cleanPlanJSON)
	if err != nil {
		t.Fatalf("ParsePlanData failed on clean JSON: %v", err)
	}

	if data.Days[0].Meals[0].Name != clean.Days[0].Meals[0].Name {
		t.Error("Commented JSON parsed to a different structure than clean JSON")
	}
	if data.Days[0].Meals[0].NutritionalInfo.Calories != 300 {
		t.Errorf("Expected 300 calories, got %d", data.Days[0].Meals[0].NutritionalInfo.Calories)
	}
}

func TestParsePlanDataProseFallback(t *testing.T) {
	wrapped := "Sure! Here is the meal plan you asked for:\n" + cleanPlanJSON + "\nEnjoy your meals!"

	data, err := ParsePlanData(wrapped)
	if err != nil {
		t.Fatalf("ParsePlanData failed on prose-wrapped JSON: %v", err)
	}
	if len(data.Days) != 1 || data.Days[0].Meals[0].Name != "Oatmeal" {
		t.Errorf("Extracted object does not match embedded JSON: %+v", data)
	}
}

func TestParsePlanDataStructuredRecipeSteps(t *testing.T) {
	stepped := `{
	"days": [
		{
			"day": 1,
			"favorite": false,
			"meals": [
				{
					"type": "dinner",
					"name": "Stir Fry",
					"ingredients": ["rice", "vegetables"],
					"recipe": [
						{"step": 1, "instruction": "Cook the rice."},
						{"step": 2, "instruction": "Stir-fry the vegetables."}
					],
					"nutritionalInfo": {"calories": 500, "protein": 15, "carbs": 80, "fat": 10}
				}
			]
		}
	]
}`

	data, err := ParsePlanData(stepped)
	if err != nil {
		t.Fatalf("ParsePlanData failed on structured recipe: %v", err)
	}
	steps := data.Days[0].Meals[0].Recipe.Steps
	if len(steps) != 2 {
		t.Fatalf("Expected 2 recipe steps, got %d", len(steps))
	}
	if steps[1].Instruction != "Stir-fry the vegetables." {
		t.Errorf("Unexpected second step: %+v", steps[1])
	}
}

func TestParsePlanDataUnparseable(t *testing.T) {
	if _, err := ParsePlanData("I could not generate a plan today."); err == nil {
		t.Error("Expected error for response with no JSON object")
	}
}

func TestStripJSONCommentsPreservesStrings(t *testing.T) {
	in := `{"url": "https://example.com/path", "note": "a // not a comment"}`
	out := stripJSONComments(in)
	if out != in {
		t.Errorf("Comment-free JSON was altered:\n in: %s\nout: %s", in, out)
	}
}
