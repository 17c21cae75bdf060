package domain_test

import (
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPeriods_PartitionYear(t *testing.T) {
	for _, p := range []domain.Periodicity{
		domain.Mensal, domain.Bimestral, domain.Trimestral,
		domain.Quadrimestral, domain.Semestral, domain.Anual,
	} {
		t.Run(string(p), func(t *testing.T) {
			periods := domain.BuildPeriods(2024, p)
			require.NotEmpty(t, periods)

			assert.Equal(t, domain.NewDate(2024, time.January, 1), periods[0].Start)
			assert.Equal(t, domain.NewDate(2024, time.December, 31), periods[len(periods)-1].End)

			for i := 1; i < len(periods); i++ {
				prevEnd := periods[i-1].End
				assert.Equal(t, prevEnd.AddDate(0, 0, 1), periods[i].Start.Time, "gap between buckets %d and %d", i-1, i)
			}
			for _, period := range periods {
				assert.LessOrEqual(t, int(period.End.Month()), 12)
				assert.Equal(t, 2024, period.End.Year())
			}
		})
	}
}

func TestBuildPeriods_Trimestral(t *testing.T) {
	periods := domain.BuildPeriods(2024, domain.Trimestral)
	require.Len(t, periods, 4)

	labels := map[string]bool{}
	for _, p := range periods {
		months := (int(p.End.Month()) - int(p.Start.Month())) + 1
		assert.Equal(t, 3, months)
		labels[p.Label] = true
	}
	assert.Len(t, labels, 4)
	assert.Equal(t, "Jan-Mar", periods[0].Label)
	assert.Equal(t, "2024-01", periods[0].Key)
	assert.Equal(t, "2024-10", periods[3].Key)
}

func TestBuildPeriods_Labels(t *testing.T) {
	assert.Equal(t, "Fev", domain.BuildPeriods(2023, domain.Mensal)[1].Label)
	assert.Equal(t, "2023", domain.BuildPeriods(2023, domain.Anual)[0].Label)
	assert.Equal(t, "Mai-Ago", domain.BuildPeriods(2023, domain.Quadrimestral)[1].Label)
	assert.Equal(t, domain.NewDate(2024, time.February, 29), domain.BuildPeriods(2024, domain.Mensal)[1].End)
}

func TestCurrentPeriodIndex(t *testing.T) {
	now := time.Date(2024, time.August, 15, 10, 0, 0, 0, time.UTC)

	periods := domain.BuildPeriods(2024, domain.Trimestral)
	assert.Equal(t, 2, domain.CurrentPeriodIndex(periods, 2024, domain.Trimestral, now))

	periods = domain.BuildPeriods(2024, domain.Mensal)
	assert.Equal(t, 7, domain.CurrentPeriodIndex(periods, 2024, domain.Mensal, now))

	past := domain.BuildPeriods(2023, domain.Semestral)
	assert.Equal(t, 1, domain.CurrentPeriodIndex(past, 2023, domain.Semestral, now))
}

func TestParsePeriodicity(t *testing.T) {
	p, err := domain.ParsePeriodicity("")
	require.NoError(t, err)
	assert.Equal(t, domain.Mensal, p)

	_, err = domain.ParsePeriodicity("quinzenal")
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}
