package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalytics struct {
	from, to time.Time
	failOn   string
}

func (f *fakeAnalytics) fail(op string) error {
	if f.failOn == op {
		return errors.New("consulta fallida")
	}
	return nil
}

func (f *fakeAnalytics) CountActiveLocations(ctx context.Context, org string) (int, error) {
	return 3, f.fail("locations")
}

func (f *fakeAnalytics) CountTransfersByStatus(ctx context.Context, org string) (map[string]int, error) {
	return map[string]int{"approved": 2, "completed": 7}, f.fail("status")
}

func (f *fakeAnalytics) CountBelowMinimum(ctx context.Context, org string) (int, error) {
	return 4, f.fail("low")
}

func (f *fakeAnalytics) SumTransitVariance(ctx context.Context, org string, from, to time.Time) (decimal.Decimal, error) {
	f.from, f.to = from, to
	return decimal.NewFromInt(12), f.fail("variance")
}

func TestGetSummary(t *testing.T) {
	repo := &fakeAnalytics{}
	uc := NewDashboardUseCase(repo)
	uc.now = func() time.Time { return time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC) }

	out, err := uc.GetSummary(context.Background(), "org")
	require.NoError(t, err)
	assert.Equal(t, 3, out.ActiveLocations)
	assert.Equal(t, 7, out.TransfersByStatus["completed"])
	assert.Equal(t, 4, out.LowStockItems)
	assert.True(t, out.MonthlyTransitVariance.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "Febrero 2026", out.DateLabel)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), repo.from)
}

func TestGetSummary_PropagaError(t *testing.T) {
	uc := NewDashboardUseCase(&fakeAnalytics{failOn: "low"})
	_, err := uc.GetSummary(context.Background(), "org")
	assert.ErrorContains(t, err, "stock bajo mínimo")
}
