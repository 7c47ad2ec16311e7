package clientgen

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/andy/autoshop/internal/catalog"
	"github.com/andy/autoshop/internal/domain"
)

// plate letters that look the same in Latin and Cyrillic
const plateLetters = "ABEKMHOPCTYX"

type VehicleModels struct {
	Brand  string
	Models []string
}

// Pools are the values a RandomSource draws clients from
type Pools struct {
	FirstNames []string
	LastNames  []string
	Vehicles   []VehicleModels
	MinYear    int
}

func (p Pools) Validate() error {
	if len(p.FirstNames) == 0 {
		return errors.New("at least one first name is required")
	}
	if len(p.Vehicles) == 0 {
		return errors.New("at least one vehicle is required")
	}
	for _, v := range p.Vehicles {
		if strings.TrimSpace(v.Brand) == "" || len(v.Models) == 0 {
			return fmt.Errorf("vehicle %q needs a brand and at least one model", v.Brand)
		}
	}
	return nil
}

// RandomSource generates clients with a random broken part from the catalog
type RandomSource struct {
	rng     *rand.Rand
	pools   Pools
	catalog *catalog.Catalog
	clock   domain.Clock
}

// NewRandomSource draws from rng. Pass NewRand(seed) for reproducible runs.
func NewRandomSource(rng *rand.Rand, pools Pools, cat *catalog.Catalog, clock domain.Clock) (*RandomSource, error) {
	if rng == nil {
		return nil, errors.New("random source needs a generator")
	}
	if cat == nil || cat.Len() == 0 {
		return nil, errors.New("random source needs a non-empty catalog")
	}
	if err := pools.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if pools.MinYear < domain.MinVehicleYear {
		pools.MinYear = domain.MinVehicleYear
	}
	return &RandomSource{rng: rng, pools: pools, catalog: cat, clock: clock}, nil
}

// NewRand returns a PCG generator for seed
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// RandomSeed returns a non-zero seed from the OS entropy source
func RandomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}

func (s *RandomSource) Next(ctx context.Context) (Arrival, error) {
	if err := ctx.Err(); err != nil {
		return Arrival{}, err
	}

	name := pick(s.rng, s.pools.FirstNames)
	if len(s.pools.LastNames) > 0 {
		name += " " + pick(s.rng, s.pools.LastNames)
	}

	v := s.pools.Vehicles[s.rng.IntN(len(s.pools.Vehicles))]
	vehicle := domain.Vehicle{
		Brand: v.Brand,
		Model: pick(s.rng, v.Models),
		Year:  s.year(),
		Plate: s.plate(),
	}

	client := domain.NewClient(name, s.phone(), vehicle)
	part := s.catalog.At(s.rng.IntN(s.catalog.Len()))
	return Arrival{Client: client, BrokenPart: part}, nil
}

func (s *RandomSource) year() int {
	maxYear := s.clock.Now().Year()
	minYear := s.pools.MinYear
	if minYear > maxYear {
		return maxYear
	}
	return minYear + s.rng.IntN(maxYear-minYear+1)
}

// plate returns a plate like "K123MX 77"
func (s *RandomSource) plate() string {
	letter := func() byte { return plateLetters[s.rng.IntN(len(plateLetters))] }
	return fmt.Sprintf("%c%03d%c%c %02d", letter(), s.rng.IntN(1000), letter(), letter(), 1+s.rng.IntN(99))
}

func (s *RandomSource) phone() string {
	return fmt.Sprintf("+7 9%02d %03d-%02d-%02d",
		s.rng.IntN(100), s.rng.IntN(1000), s.rng.IntN(100), s.rng.IntN(100))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}
