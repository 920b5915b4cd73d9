package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fithub/internal/filter"
	"fithub/internal/storage"

	"github.com/google/uuid"
)

const (
	savedPlansKey = "savedMealPlans"
	stateKey      = "mealPlanState"
)

// ErrPlanNotFound is returned when no saved plan has the requested ID.
var ErrPlanNotFound = errors.New("saved meal plan not found")

// SavedPlan is a snapshot of a plan the user chose to keep.
type SavedPlan struct {
	ID        string    `json:"id"`
	Plan      MealPlan  `json:"meal_plan"`
	SavedAt   time.Time `json:"saved_at"`
	Budget    *float64  `json:"budget,omitempty"`
	TotalCost float64   `json:"total_cost"`
}

// OverBudget reports whether the plan costs more than its budget. Plans saved
// without a budget are never over budget.
func (s SavedPlan) OverBudget() bool {
	return s.Budget != nil && s.TotalCost > *s.Budget
}

// UnmarshalJSON also accepts records written before plans had IDs, which
// used mealPlan and date keys.
func (s *SavedPlan) UnmarshalJSON(b []byte) error {
	type current SavedPlan
	var aux struct {
		current
		LegacyPlan *MealPlan  `json:"mealPlan"`
		LegacyDate *time.Time `json:"date"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = SavedPlan(aux.current)
	if aux.LegacyPlan != nil && s.Plan.IsEmpty() {
		s.Plan = *aux.LegacyPlan
	}
	if aux.LegacyDate != nil && s.SavedAt.IsZero() {
		s.SavedAt = *aux.LegacyDate
	}
	if s.TotalCost == 0 {
		s.TotalCost = CalculateCost(s.Plan)
	}
	return nil
}

// PlanState is the planner form as last seen by the user.
type PlanState struct {
	Filters filter.Criteria `json:"filters"`
	Plan    MealPlan        `json:"meal_plan"`
}

// PlanRepository persists saved plans and plan state in a storage.Store.
// Read-modify-write cycles are serialized within the process.
type PlanRepository struct {
	store storage.Store
	scope string
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewPlanRepository creates a new PlanRepository. A non-empty scope prefixes
// every key so several users can share one store.
func NewPlanRepository(store storage.Store, scope string) *PlanRepository {
	return &PlanRepository{
		store: store,
		scope: scope,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (r *PlanRepository) key(name string) string {
	if r.scope == "" {
		return name
	}
	return r.scope + "." + name
}

// Save appends a snapshot of plan to the saved list.
func (r *PlanRepository) Save(ctx context.Context, plan MealPlan, budget *float64) (SavedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, _, err := r.load(ctx)
	if err != nil {
		return SavedPlan{}, err
	}

	saved := SavedPlan{
		ID:        r.newID(),
		Plan:      plan,
		SavedAt:   r.now().UTC(),
		Budget:    budget,
		TotalCost: CalculateCost(plan),
	}
	plans = append(plans, saved)
	if err := r.write(ctx, plans); err != nil {
		return SavedPlan{}, err
	}
	return saved, nil
}

// List returns saved plans in the order they were saved.
func (r *PlanRepository) List(ctx context.Context) ([]SavedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, migrated, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if migrated {
		if err := r.write(ctx, plans); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// Get returns the saved plan with the given ID.
func (r *PlanRepository) Get(ctx context.Context, id string) (SavedPlan, error) {
	plans, err := r.List(ctx)
	if err != nil {
		return SavedPlan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return SavedPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
}

// Delete removes the saved plan with the given ID.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := plans[:0]
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return r.write(ctx, kept)
}

// load reads the saved list, assigning IDs to legacy records. It reports
// whether any record was given a new ID.
func (r *PlanRepository) load(ctx context.Context) ([]SavedPlan, bool, error) {
	raw, ok, err := r.store.Get(ctx, r.key(savedPlansKey))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read saved meal plans: %w", err)
	}
	if !ok || raw == "" {
		return []SavedPlan{}, false, nil
	}

	var plans []SavedPlan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal saved meal plans: %w", err)
	}

	migrated := false
	for i := range plans {
		if plans[i].ID == "" {
			plans[i].ID = r.newID()
			migrated = true
		}
	}
	return plans, migrated, nil
}

func (r *PlanRepository) write(ctx context.Context, plans []SavedPlan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("failed to marshal saved meal plans: %w", err)
	}
	if err := r.store.Set(ctx, r.key(savedPlansKey), string(data)); err != nil {
		return fmt.Errorf("failed to write saved meal plans: %w", err)
	}
	return nil
}

// SaveState stores the current filters and plan.
func (r *PlanRepository) SaveState(ctx context.Context, state PlanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal plan state: %w", err)
	}
	if err := r.store.Set(ctx, r.key(stateKey), string(data)); err != nil {
		return fmt.Errorf("failed to write plan state: %w", err)
	}
	return nil
}

// LoadState returns the stored state, or a zero state when none was saved.
func (r *PlanRepository) LoadState(ctx context.Context) (PlanState, error) {
	raw, ok, err := r.store.Get(ctx, r.key(stateKey))
	if err != nil {
		return PlanState{}, fmt.Errorf("failed to read plan state: %w", err)
	}
	if !ok || raw == "" {
		return PlanState{}, nil
	}
	var state PlanState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return PlanState{}, fmt.Errorf("failed to unmarshal plan state: %w", err)
	}
	return state, nil
}

// ClearState removes the stored state.
func (r *PlanRepository) ClearState(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key(stateKey)); err != nil {
		return fmt.Errorf("failed to clear plan state: %w", err)
	}
	return nil
}
