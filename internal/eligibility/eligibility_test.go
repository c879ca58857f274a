package eligibility_test

import (
	"testing"

	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/eligibility"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuByID(t *testing.T, id string) models.Menu {
	t.Helper()
	for _, m := range catalog.Builtin() {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("menu %q not in built-in catalog", id)
	return models.Menu{}
}

// TestBuiltinThresholdBoundaries checks each built-in menu at its threshold
// (eligible) and one below it (not eligible).
func TestBuiltinThresholdBoundaries(t *testing.T) {
	tests := []struct {
		id      string
		atLimit models.Counts
		below   []models.Counts
	}{
		{"warmup", models.Counts{IF: 1}, []models.Counts{{}}},
		{"all_knock", models.Counts{IF: 4}, []models.Counts{{IF: 3}}},
		{"free_batting", models.Counts{P: 1, IF: 8},
			[]models.Counts{{P: 0, IF: 9}, {P: 1, IF: 7}}},
		{"tee_batting", models.Counts{OF: 2}, []models.Counts{{OF: 1}}},
		{"infield_knock", models.Counts{P: 1, IF: 2, OF: 3},
			[]models.Counts{{P: 1, IF: 1, OF: 4}, {P: 1, IF: 2, OF: 2}}},
		{"outfield_knock", models.Counts{IF: 3, OF: 3},
			[]models.Counts{{IF: 4, OF: 2}, {IF: 2, OF: 3}}},
		{"pitching", models.Counts{P: 1, IF: 3},
			[]models.Counts{{P: 0, IF: 4}, {P: 1, IF: 2}}},
		{"pepper", models.Counts{P: 2}, []models.Counts{{P: 1}}},
	}
	for _, tt := range tests {
		m := menuByID(t, tt.id)
		assert.True(t, eligibility.IsEligible(m, tt.atLimit), "%s at threshold %+v", tt.id, tt.atLimit)
		for _, c := range tt.below {
			assert.False(t, eligibility.IsEligible(m, c), "%s below threshold %+v", tt.id, c)
		}
	}
}

// TestEightPlayers is the P=2, IF=3, OF=3 scenario: everything but free
// batting (which needs nine) is suggested, in catalog order.
func TestEightPlayers(t *testing.T) {
	got := eligibility.FilterEligible(catalog.Builtin(), models.Counts{P: 2, IF: 3, OF: 3})

	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{
		"warmup", "all_knock", "tee_batting", "infield_knock",
		"outfield_knock", "pitching", "pepper",
	}, ids)
}

// TestMinTotalUsesRoleSum verifies minTotal compares P+IF+OF even when a
// roster-derived total is larger.
func TestMinTotalUsesRoleSum(t *testing.T) {
	total := 12
	counts := models.Counts{P: 1, IF: 3, OF: 3, Total: &total}
	assert.False(t, eligibility.IsEligible(menuByID(t, "free_batting"), counts))
}

func TestEvaluateEmptyCondition(t *testing.T) {
	ok, err := eligibility.Evaluate(models.Condition{}, models.Counts{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := eligibility.Evaluate(models.Condition{}, models.Counts{P: -1})
	assert.ErrorIs(t, err, eligibility.ErrInvalidCounts)

	neg := -2
	_, err = eligibility.Evaluate(models.Condition{}, models.Counts{Total: &neg})
	assert.ErrorIs(t, err, eligibility.ErrInvalidCounts)

	_, err = eligibility.Evaluate(models.Condition{MinOF: models.Threshold(-1)}, models.Counts{OF: 3})
	assert.ErrorIs(t, err, eligibility.ErrInvalidCondition)
}

// TestIsEligibleFailsSafe verifies malformed counts make a menu ineligible
// even when its thresholds would otherwise be met.
func TestIsEligibleFailsSafe(t *testing.T) {
	m := menuByID(t, "warmup")
	assert.False(t, eligibility.IsEligible(m, models.Counts{P: 5, IF: -1}))
	assert.Empty(t, eligibility.FilterEligible(catalog.Builtin(), models.Counts{OF: -3}))
}

func TestFilterCategory(t *testing.T) {
	menus := catalog.Builtin()
	assert.Len(t, eligibility.FilterCategory(menus, ""), 8)
	assert.Len(t, eligibility.FilterCategory(menus, "all"), 8)

	batting := eligibility.FilterCategory(menus, "打")
	require.Len(t, batting, 2)
	assert.Equal(t, "free_batting", batting[0].ID)
	assert.Equal(t, "tee_batting", batting[1].ID)

	assert.Empty(t, eligibility.FilterCategory(menus, "走"))
}

func TestCandidates(t *testing.T) {
	got := eligibility.Candidates(catalog.Builtin(), models.Counts{P: 2, IF: 3, OF: 3}, "打")
	require.Len(t, got, 1)
	assert.Equal(t, "tee_batting", got[0].ID)
}
