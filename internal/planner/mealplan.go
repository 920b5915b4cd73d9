package planner

import (
	"fmt"

	"fithub/internal/recipe"
)

// MealPlan holds one recipe per meal slot. A nil slot is empty.
type MealPlan struct {
	Breakfast *recipe.Recipe `json:"breakfast"`
	Lunch     *recipe.Recipe `json:"lunch"`
	Dinner    *recipe.Recipe `json:"dinner"`
}

func (p *MealPlan) slot(mt recipe.MealType) (**recipe.Recipe, error) {
	switch mt {
	case recipe.Breakfast:
		return &p.Breakfast, nil
	case recipe.Lunch:
		return &p.Lunch, nil
	case recipe.Dinner:
		return &p.Dinner, nil
	}
	return nil, fmt.Errorf("unknown meal slot %q", mt)
}

// Get returns the recipe in slot mt, or nil when the slot is empty or unknown.
func (p MealPlan) Get(mt recipe.MealType) *recipe.Recipe {
	s, err := p.slot(mt)
	if err != nil {
		return nil
	}
	return *s
}

// Set replaces slot mt. A nil recipe empties the slot.
func (p *MealPlan) Set(mt recipe.MealType, r *recipe.Recipe) error {
	s, err := p.slot(mt)
	if err != nil {
		return err
	}
	if r != nil {
		cp := *r
		r = &cp
	}
	*s = r
	return nil
}

// Select fills slot mt with r. Selecting the recipe already in the slot
// empties it instead. It reports whether the slot ends up filled.
func (p *MealPlan) Select(mt recipe.MealType, r recipe.Recipe) (bool, error) {
	s, err := p.slot(mt)
	if err != nil {
		return false, err
	}
	if *s != nil && (*s).ID == r.ID {
		*s = nil
		return false, nil
	}
	*s = &r
	return true, nil
}

// Clear empties every slot.
func (p *MealPlan) Clear() {
	*p = MealPlan{}
}

// IsEmpty reports whether no slot is filled.
func (p MealPlan) IsEmpty() bool {
	return p.Breakfast == nil && p.Lunch == nil && p.Dinner == nil
}

// Filled returns the recipes of the filled slots in slot order.
func (p MealPlan) Filled() []recipe.Recipe {
	var out []recipe.Recipe
	for _, mt := range recipe.MealTypes {
		if r := p.Get(mt); r != nil {
			out = append(out, *r)
		}
	}
	return out
}
