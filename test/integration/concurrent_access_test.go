// Package integration provides end-to-end tests for the carbonfootprint
// binary and its Kafka publisher.
//
// This file verifies the engine and the service are safe under concurrent
// use and return identical results regardless of interleaving.
//
// Run with: go test ./test/integration/... -v -run Concurrent
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/location"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/weather"
)

const (
	// numGoroutines is the number of concurrent goroutines for stress testing.
	numGoroutines = 150

	// numIterations is the number of iterations per goroutine.
	numIterations = 10
)

// TestConcurrentAccess_Calculator runs every calculator operation from many
// goroutines and checks each result against the sequential value.
func TestConcurrentAccess_Calculator(t *testing.T) {
	calc := carbon.NewCalculator(nil)

	want := carbon.EmissionsBreakdown{
		Travel:      calc.TravelEmissions(420, "bus"),
		Electricity: calc.ElectricityEmissions(310, "canada"),
		Diet:        calc.DietEmissions("mixed", 5),
	}

	var wg sync.WaitGroup
	results := make(chan carbon.EmissionsBreakdown, numGoroutines*numIterations)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				var b carbon.EmissionsBreakdown
				b.Set(carbon.SectionTravel, calc.TravelEmissions(420, "bus"))
				b.Set(carbon.SectionElectricity, calc.ElectricityEmissions(310, "canada"))
				b.Set(carbon.SectionDiet, calc.DietEmissions("mixed", 5))
				results <- b
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for b := range results {
		assert.Equal(t, want, b)
		count++
	}
	assert.Equal(t, numGoroutines*numIterations, count)
}

// TestConcurrentAccess_Service calculates reports concurrently through a
// shared service with a cached location search and a shared publisher.
func TestConcurrentAccess_Service(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	metrics := observability.NewMetricsForTesting()
	cached, err := location.NewCachedSearch(location.NewStaticSearch(nil), 16, metrics)
	require.NoError(t, err)

	publisher := report.NewWriterPublisher(&lockedDiscard{})
	svc := footprint.NewService(
		carbon.NewCalculator(nil),
		cached,
		weather.NewStaticLookup(clock),
		report.NewBuilder(clock),
		zerolog.Nop(),
		footprint.WithMetrics(metrics),
		footprint.WithPublisher(publisher),
	)

	req := footprint.Request{
		Travel: &footprint.TravelInput{Vehicle: "car", OriginQuery: "Berlin", DestinationQuery: "Paris"},
		Diet:   &footprint.DietInput{Diet: "pescatarian"},
	}
	first, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)
	ids := make(chan string, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rpt, err := svc.Calculate(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if rpt.Summary.TotalKg != first.Summary.TotalKg {
				t.Errorf("total %v differs from %v", rpt.Summary.TotalKg, first.Summary.TotalKg)
			}
			ids <- rpt.ID
		}()
	}
	wg.Wait()
	close(errs)
	close(ids)

	for err := range errs {
		t.Errorf("concurrent calculate failed: %v", err)
	}
	seen := make(map[string]bool, numGoroutines)
	for id := range ids {
		assert.False(t, seen[id], "duplicate report id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 2, cached.Len())
}

// lockedDiscard counts writes; WriterPublisher serializes access to it.
type lockedDiscard struct{ n int }

func (d *lockedDiscard) Write(p []byte) (int, error) {
	d.n++
	return len(p), nil
}
