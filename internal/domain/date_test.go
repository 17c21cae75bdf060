package domain_test

import (
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := domain.NewDate(2024, time.March, 1)

	for _, in := range []string{"2024-03-01", " 2024-03-01 ", "2024-03-01T10:30:00Z", "2024-03-01 10:30:00+00"} {
		got, err := domain.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"2024-03-01garbage", "2024-03-011", "01/03/2024", ""} {
		_, err := domain.ParseDate(in)
		assert.Error(t, err, in)
	}
}
