// Package eligibility decides which menus can be suggested for a given set
// of participant counts.
package eligibility

import (
	"errors"
	"fmt"

	"github.com/meltforce/practiceboard/internal/models"
)

var (
	// ErrInvalidCounts is returned when a count is negative.
	ErrInvalidCounts = errors.New("invalid participant counts")
	// ErrInvalidCondition is returned when a threshold is negative.
	ErrInvalidCondition = errors.New("invalid menu condition")
)

// Evaluate reports whether counts satisfy every threshold present in cond.
// minTotal is compared against P+IF+OF and minPlusIF against P+IF.
func Evaluate(cond models.Condition, counts models.Counts) (bool, error) {
	if err := ValidateCounts(counts); err != nil {
		return false, err
	}

	checks := []struct {
		name      string
		threshold *int
		value     int
	}{
		{"minP", cond.MinP, counts.P},
		{"minIF", cond.MinIF, counts.IF},
		{"minOF", cond.MinOF, counts.OF},
		{"minTotal", cond.MinTotal, counts.RoleSum()},
		{"minPlusIF", cond.MinPlusIF, counts.PlusIF()},
	}

	ok := true
	for _, c := range checks {
		if c.threshold == nil {
			continue
		}
		if *c.threshold < 0 {
			return false, fmt.Errorf("%w: %s is %d", ErrInvalidCondition, c.name, *c.threshold)
		}
		if c.value < *c.threshold {
			ok = false
		}
	}
	return ok, nil
}

// ValidateCounts rejects negative counts.
func ValidateCounts(c models.Counts) error {
	if c.P < 0 || c.IF < 0 || c.OF < 0 || c.CanCatch < 0 {
		return fmt.Errorf("%w: P=%d IF=%d OF=%d canCatch=%d", ErrInvalidCounts, c.P, c.IF, c.OF, c.CanCatch)
	}
	if c.Total != nil && *c.Total < 0 {
		return fmt.Errorf("%w: total=%d", ErrInvalidCounts, *c.Total)
	}
	return nil
}

// IsEligible reports whether menu qualifies for suggestion. An evaluation
// error makes the menu ineligible so the candidate list degrades instead
// of failing.
func IsEligible(menu models.Menu, counts models.Counts) bool {
	ok, err := Evaluate(menu.Condition, counts)
	if err != nil {
		return false
	}
	return ok
}

// FilterEligible returns the eligible menus in catalog order.
func FilterEligible(menus []models.Menu, counts models.Counts) []models.Menu {
	out := make([]models.Menu, 0, len(menus))
	for _, m := range menus {
		if IsEligible(m, counts) {
			out = append(out, m)
		}
	}
	return out
}

// FilterCategory keeps menus whose CategoryShort equals categoryShort.
// An empty filter or "all" keeps everything.
func FilterCategory(menus []models.Menu, categoryShort string) []models.Menu {
	if categoryShort == "" || categoryShort == "all" {
		return menus
	}
	out := make([]models.Menu, 0, len(menus))
	for _, m := range menus {
		if m.CategoryShort == categoryShort {
			out = append(out, m)
		}
	}
	return out
}

// Candidates applies the eligibility filter and then the category filter.
func Candidates(menus []models.Menu, counts models.Counts, categoryShort string) []models.Menu {
	return FilterCategory(FilterEligible(menus, counts), categoryShort)
}
