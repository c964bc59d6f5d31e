package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
)

func totalWeight(e *Engine, house bool) float64 {
	var sum float64
	for _, cr := range e.criteria {
		if cr.houseOnly && !house {
			continue
		}
		sum += cr.weight
	}
	return sum
}

func TestDefaultWeights(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	assert.Equal(t, 91.0, totalWeight(engine, false))
	assert.Equal(t, 101.0, totalWeight(engine, true))
	assert.Len(t, engine.criteria, 22)
	assert.NoError(t, DefaultWeights().Validate())
}

func TestLoadWeightsFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := filepath.Join(dir, "weights.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"district": 20, "pool": 0}`), 0o644))

		w, err := LoadWeightsFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 20.0, w.District)
		assert.Equal(t, 0.0, w.Pool)
		assert.Equal(t, 10.0, w.PropertyType)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		path := filepath.Join(dir, "negative.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"budget": -1}`), 0o644))

		w, err := LoadWeightsFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "budget")
		assert.Equal(t, DefaultWeights(), w)
	})

	t.Run("broken json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

		_, err := LoadWeightsFromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		w, err := LoadWeightsFromFile(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
		assert.Equal(t, DefaultWeights(), w)
	})
}

func TestFilterCandidates(t *testing.T) {
	longOnly := domain.Property{PropertyType: "long", MonthlyRent: ptr(1.0)}
	shortOnly := domain.Property{PropertyType: "short", DailyPrice: ptr(1.0)}
	both := domain.Property{PropertyType: "both", SummerMonthlyRent: ptr(1.0), DailyPrice: ptr(1.0)}
	unpriced := domain.Property{PropertyType: "unpriced"}
	all := []domain.Property{longOnly, shortOnly, both, unpriced}

	names := func(ps []domain.Property) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.PropertyType)
		}
		return out
	}

	assert.Equal(t, []string{"long", "both"}, names(FilterCandidates(all, domain.RentalLongTerm)))
	assert.Equal(t, []string{"short", "both"}, names(FilterCandidates(all, "Посуточная")))
	assert.Equal(t, []string{"long", "short", "both", "unpriced"}, names(FilterCandidates(all, domain.RentalEither)))
	assert.Equal(t, []string{"long", "short", "both", "unpriced"}, names(FilterCandidates(all, "")))
	assert.Empty(t, FilterCandidates(nil, domain.RentalLongTerm))
}
