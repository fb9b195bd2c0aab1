package utils

import (
	"fmt"
	"math/rand"

	"github.com/Pallinder/go-randomdata"
)

type RandomNameGenerator map[string]struct{}

// SeedNames makes the silly name sequence reproducible. It replaces the
// generator source for the whole process.
func SeedNames(seed int64) {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
}

func (rng *RandomNameGenerator) RandomName() string {
	if *rng == nil {
		*rng = make(map[string]struct{})
	}
	for attempt := 0; ; attempt++ {
		name := randomdata.SillyName()
		if attempt > 64 {
			name = fmt.Sprintf("%s %d", name, len(*rng))
		}
		// avoid duplicate names
		if _, exists := (*rng)[name]; !exists {
			(*rng)[name] = struct{}{}
			return name
		}
	}
}
