package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"meal-genie/internal/llm"
	"meal-genie/internal/metrics"
)

// priorPlanLimit is how many recent completed plans are fed back into the
// prompt as variety context.
const priorPlanLimit = 3

// EventMealPlanCompleted is the push message type sent on completion.
const EventMealPlanCompleted = "meal_plan_completed"

// Notifier delivers a message to every live channel of a user.
type Notifier interface {
	Send(message any, userKey string)
}

// CompletionEvent is the push message emitted when generation finishes.
type CompletionEvent struct {
	Type         string      `json:"type"`
	MealPlanID   string      `json:"meal_plan_id"`
	MealPlanData *PlanRecord `json:"meal_plan_data"`
}

// Generator runs the background meal-plan generation state machine:
// fetch record, consult the cache, throttle, call the LLM, parse the
// response, persist the outcome, and notify the push registry.
type Generator struct {
	repo     *PlanRepository
	cache    *PlanCache
	limiter  *CallLimiter
	textGen  llm.TextGenerator
	hub      Notifier
	recorder metrics.Recorder
}

// NewGenerator creates a Generator.
func NewGenerator(repo *PlanRepository, cache *PlanCache, limiter *CallLimiter, textGen llm.TextGenerator, hub Notifier, recorder metrics.Recorder) *Generator {
	return &Generator{
		repo:     repo,
		cache:    cache,
		limiter:  limiter,
		textGen:  textGen,
		hub:      hub,
		recorder: recorder,
	}
}

// Run schedules generation for a plan record detached from the caller.
// Any error or panic is converted into an error status on the record and
// never propagates to the submitting request.
func (g *Generator) Run(planID string) {
	go g.run(planID)
}

func (g *Generator) run(planID string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Meal plan generation panicked for %s: %v", planID, rec)
			g.fail(planID, fmt.Sprintf("internal error: %v", rec))
		}
	}()
	if err := g.Generate(context.Background(), planID); err != nil {
		log.Printf("Meal plan generation failed for %s: %v", planID, err)
		g.fail(planID, err.Error())
	}
}

// Generate performs one generation run for the given plan record ID.
func (g *Generator) Generate(ctx context.Context, planID string) error {
	rec, err := g.repo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if rec == nil {
		// Nothing to report to: the record vanished between scheduling
		// and execution.
		log.Printf("Meal plan %s not found, skipping generation", planID)
		return nil
	}

	key := Fingerprint(rec.UserID, rec.DietaryRestrictions, rec.DietaryPreferences, rec.CuisineTypes)
	if data, ok := g.cache.Get(key); ok {
		log.Printf("Cache hit for meal plan %s, skipping LLM call", planID)
		return g.complete(ctx, rec, data)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	dayCount, err := rec.DayCount()
	if err != nil {
		return err
	}

	priors, err := g.repo.ListRecentCompleted(ctx, rec.UserID, priorPlanLimit)
	if err != nil {
		return err
	}
	var priorData []PlanData
	for _, p := range priors {
		if p.PlanData != nil {
			priorData = append(priorData, *p.PlanData)
		}
	}

	prompt, err := buildPlanPrompt(rec.PlanRequest, dayCount, priorData)
	if err != nil {
		return err
	}

	started := time.Now()
	response, err := g.textGen.Complete(ctx, systemPrompt, prompt, llm.Options{
		Temperature: 0.7,
		MaxTokens:   4096,
		JSONMode:    true,
	})
	if err != nil {
		return fmt.Errorf("llm call failed: %w", err)
	}

	if err := g.recorder.Record(ctx, metrics.ExecutionMetric{
		Task:            "meal_plan",
		Model:           llm.ModelName(g.textGen),
		PromptChars:     len(prompt),
		CompletionChars: len(response),
		LatencyMS:       time.Since(started).Milliseconds(),
	}); err != nil {
		log.Printf("Failed to record execution metric for %s: %v", planID, err)
	}

	data, err := ParsePlanData(response)
	if err != nil {
		return err
	}

	g.cache.Put(key, *data)
	return g.complete(ctx, rec, data)
}

func (g *Generator) complete(ctx context.Context, rec *PlanRecord, data *PlanData) error {
	now := time.Now()
	updated, err := g.repo.Complete(ctx, rec.ID, data, now)
	if err != nil {
		return err
	}
	if !updated {
		// Lost the CAS: another run already finished this record.
		log.Printf("Meal plan %s is no longer pending, skipping completion", rec.ID)
		return nil
	}

	rec.Status = StatusCompleted
	rec.PlanData = data
	rec.CompletedAt = &now

	g.hub.Send(CompletionEvent{
		Type:         EventMealPlanCompleted,
		MealPlanID:   rec.ID,
		MealPlanData: rec,
	}, rec.AuthUID)
	return nil
}

// fail marks the record as errored. Failures here are logged only: the
// record may have vanished or already reached a terminal state.
func (g *Generator) fail(planID, detail string) {
	updated, err := g.repo.Fail(context.Background(), planID, detail, time.Now())
	if err != nil {
		log.Printf("Failed to mark meal plan %s as error: %v", planID, err)
		return
	}
	if !updated {
		log.Printf("Meal plan %s is not pending, error status not applied", planID)
	}
}
