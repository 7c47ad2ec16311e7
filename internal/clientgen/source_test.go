package clientgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/autoshop/internal/catalog"
	"github.com/andy/autoshop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		domain.NewPart(domain.PartTypeBrakes, "Brake Pads", decimal.NewFromInt(2500)),
		domain.NewPart(domain.PartTypeFilters, "Oil Filter", decimal.NewFromInt(400)),
		domain.NewPart(domain.PartTypeBattery, "Battery", decimal.NewFromInt(6000)),
	)
	require.NoError(t, err)
	return cat
}

func testPools() Pools {
	return Pools{
		FirstNames: []string{"Ivan", "Anna"},
		LastNames:  []string{"Petrov"},
		Vehicles:   []VehicleModels{{Brand: "Lada", Models: []string{"Niva", "Vesta"}}},
		MinYear:    2000,
	}
}

func TestRandomSource_ProducesValidArrivals(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cat := testCatalog(t)
	src, err := NewRandomSource(NewRand(42), testPools(), cat, fixedClock{now})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		a, err := src.Next(context.Background())
		require.NoError(t, err)
		require.NoError(t, a.Client.ValidateAt(now))
		assert.GreaterOrEqual(t, a.Client.Vehicle.Year, 2000)
		assert.LessOrEqual(t, a.Client.Vehicle.Year, 2024)
		assert.Equal(t, "Lada", a.Client.Vehicle.Brand)
		assert.NotEmpty(t, a.Client.Contact)

		_, err = cat.Get(a.BrokenPart.Name)
		assert.NoError(t, err)
	}
}

func TestRandomSource_SameSeedSameClients(t *testing.T) {
	clock := fixedClock{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cat := testCatalog(t)
	a, err := NewRandomSource(NewRand(7), testPools(), cat, clock)
	require.NoError(t, err)
	b, err := NewRandomSource(NewRand(7), testPools(), cat, clock)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		x, _ := a.Next(context.Background())
		y, _ := b.Next(context.Background())
		assert.Equal(t, x.Client, y.Client)
		assert.Equal(t, x.BrokenPart.Name, y.BrokenPart.Name)
	}
}

func TestNewRandomSource_Validation(t *testing.T) {
	cat := testCatalog(t)
	empty, err := catalog.New()
	require.NoError(t, err)

	_, err = NewRandomSource(nil, testPools(), cat, nil)
	assert.Error(t, err)

	_, err = NewRandomSource(NewRand(1), testPools(), empty, nil)
	assert.Error(t, err)

	_, err = NewRandomSource(NewRand(1), Pools{Vehicles: testPools().Vehicles}, cat, nil)
	assert.Error(t, err)

	_, err = NewRandomSource(NewRand(1), Pools{FirstNames: []string{"A"}, Vehicles: []VehicleModels{{Brand: "Kia"}}}, cat, nil)
	assert.Error(t, err)
}

func TestRandomSource_HonorsCancellation(t *testing.T) {
	src, err := NewRandomSource(NewRand(1), testPools(), testCatalog(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScriptedSource(t *testing.T) {
	cat := testCatalog(t)
	pads, _ := cat.Get("brake pads")
	client := domain.NewClient("Anna", "", domain.Vehicle{Brand: "Kia", Model: "Rio", Year: 2015, Plate: "K001KK"})

	src := NewScriptedSource(Arrival{Client: client, BrokenPart: pads}, Arrival{Client: client, BrokenPart: pads})
	assert.Equal(t, 2, src.Remaining())

	for i := 0; i < 2; i++ {
		a, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Brake Pads", a.BrokenPart.Name)
	}

	_, err := src.Next(context.Background())
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 0, src.Remaining())
}

func TestRandomSeedIsPositive(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Positive(t, RandomSeed())
	}
}
