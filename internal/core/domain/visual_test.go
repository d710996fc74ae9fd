package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() VisualSpec {
	return VisualSpec{
		Kind:   ChartBar,
		Title:  "Quarterly revenue",
		Labels: []string{"Q1", "Q2", "Q3"},
		Datasets: []Dataset{
			{Label: "2025", Values: []float64{1.2, 3.4, 5.6}},
		},
	}
}

func TestVisualSpecValidate(t *testing.T) {
	t.Run("accepts well-formed spec", func(t *testing.T) {
		require.NoError(t, validSpec().Validate())
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		spec := validSpec()
		spec.Kind = "sankey"
		err := spec.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects empty labels", func(t *testing.T) {
		spec := validSpec()
		spec.Labels = nil
		assert.ErrorIs(t, spec.Validate(), ErrInvalidInput)
	})

	t.Run("rejects missing datasets", func(t *testing.T) {
		spec := validSpec()
		spec.Datasets = nil
		assert.ErrorIs(t, spec.Validate(), ErrInvalidInput)
	})

	t.Run("rejects length mismatch", func(t *testing.T) {
		spec := validSpec()
		spec.Datasets = append(spec.Datasets, Dataset{
			Label:  "2024",
			Values: []float64{1, 2},
		})
		err := spec.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "2024")
	})
}

func TestVisualSpecHasData(t *testing.T) {
	spec := validSpec()
	assert.True(t, spec.HasData())

	spec.Datasets = []Dataset{
		{Label: "empty", Values: []float64{0, 0, 0}},
		{Label: "also empty", Values: []float64{0, 0, 0}},
	}
	assert.False(t, spec.HasData(), "all-zero datasets are not real data")
}

func TestChartKindIsValid(t *testing.T) {
	for _, k := range AllChartKinds() {
		assert.True(t, k.IsValid(), k.String())
	}
	assert.False(t, ChartKind("gantt").IsValid())
	assert.False(t, ChartKind("").IsValid())
}
