// Package forecast estimates 30-day product demand for dashboards.
// Estimates are advisory and never gate a stock movement.
package forecast

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Horizon is the period every estimate covers.
const Horizon = 30 * 24 * time.Hour

type Predictor interface {
	PredictDemand(ctx context.Context, productID uuid.UUID) (int, error)
}

// DemandSource returns the quantity shipped for orders since a point in time.
type DemandSource interface {
	OrderDemandSince(ctx context.Context, productID uuid.UUID, since time.Time) (int, error)
}

// MovingAverage scales the trailing window's order demand to the horizon.
type MovingAverage struct {
	source DemandSource
	window time.Duration
	now    func() time.Time
}

func NewMovingAverage(source DemandSource, windowDays int) *MovingAverage {
	if windowDays <= 0 {
		windowDays = 90
	}
	return &MovingAverage{
		source: source,
		window: time.Duration(windowDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

func (m *MovingAverage) PredictDemand(ctx context.Context, productID uuid.UUID) (int, error) {
	shipped, err := m.source.OrderDemandSince(ctx, productID, m.now().Add(-m.window))
	if err != nil {
		return 0, errors.Wrap(err, "load demand history")
	}
	perHorizon := float64(shipped) * float64(Horizon) / float64(m.window)
	return int(math.Round(perHorizon)), nil
}

// SuggestedReorder is how much to buy so stock covers the forecast.
func SuggestedReorder(forecast, onHand int) int {
	if forecast > onHand {
		return forecast - onHand
	}
	return 0
}
