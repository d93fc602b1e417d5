package planner

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for plan dates.
const DateLayout = "2006-01-02"

// PlanStatus represents the lifecycle state of a meal plan.
type PlanStatus string

const (
	StatusPending   PlanStatus = "pending"
	StatusCompleted PlanStatus = "completed"
	StatusError     PlanStatus = "error"
)

// PlanRequest holds the user-supplied constraints for a meal plan.
type PlanRequest struct {
	StartDate           string   `json:"startDate"`
	EndDate             string   `json:"endDate"`
	MealTypes           []string `json:"mealType"`
	DietaryPreferences  []string `json:"dietaryPreferences"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	CuisineTypes        []string `json:"cuisineTypes"`
	ComplexityLevels    []string `json:"complexityLevels"`
}

// Validate checks the request invariants: parseable dates, end date not
// before start date, and at least one requested meal type.
func (r PlanRequest) Validate() error {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", r.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", r.EndDate, r.StartDate)
	}
	if len(r.MealTypes) == 0 {
		return fmt.Errorf("at least one meal type is required")
	}
	return nil
}

// DayCount returns the inclusive number of days covered by the request.
func (r PlanRequest) DayCount() (int, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q: %w", r.EndDate, err)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 0, fmt.Errorf("date range yields non-positive day count %d", days)
	}
	return days, nil
}

// PlanRecord is a persisted meal-plan generation job plus its result.
type PlanRecord struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	AuthUID string `json:"authUid"`
	PlanRequest
	Status      PlanStatus `json:"status"`
	PlanData    *PlanData  `json:"planData,omitempty"`
	ErrorDetail string     `json:"errorDetail,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// PlanData is the generated meal plan: an ordered sequence of days.
type PlanData struct {
	Days []DayPlan `json:"days"`
}

// DayPlan represents the plan for a single day.
type DayPlan struct {
	Day         int    `json:"day"`
	Description string `json:"description,omitempty"`
	Favorite    bool   `json:"favorite"`
	Meals       []Meal `json:"meals"`
}

// Meal is a single generated meal within a day.
type Meal struct {
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Ingredients     []string        `json:"ingredients"`
	Recipe          RecipeText      `json:"recipe"`
	NutritionalInfo NutritionalInfo `json:"nutritionalInfo"`
}

// NutritionalInfo holds per-meal macro estimates.
type NutritionalInfo struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// RecipeStep is one step of a structured recipe.
type RecipeStep struct {
	Step        int    `json:"step,omitempty"`
	Instruction string `json:"instruction"`
}

// RecipeText holds a recipe as either a single narrative string or an
// ordered list of steps. LLM responses use both shapes.
type RecipeText struct {
	Text  string
	Steps []RecipeStep
}

// UnmarshalJSON accepts either a plain string or an array of step objects.
func (r *RecipeText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Text = s
		r.Steps = nil
		return nil
	}
	var steps []RecipeStep
	if err := json.Unmarshal(data, &steps); err == nil {
		r.Steps = steps
		r.Text = ""
		return nil
	}
	return fmt.Errorf("recipe is neither a string nor a list of steps")
}

// MarshalJSON emits whichever shape the recipe was parsed from.
func (r RecipeText) MarshalJSON() ([]byte, error) {
	if r.Steps != nil {
		return json.Marshal(r.Steps)
	}
	return json.Marshal(r.Text)
}
