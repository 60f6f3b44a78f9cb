package generator

import (
	"math/rand/v2"

	"github.com/starford/datagen/internal/models"
)

const (
	maxFilesPerLeaf = 8
	maxDay          = 26
	maxMonth        = 12
	// manualThreshold splits the unit interval: draws above it are "manuell".
	manualThreshold = 0.6

	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// newRand returns a PCG-backed generator. A zero seed picks a random one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// fileCount draws the number of documents for one leaf directory, in [1, 8].
func fileCount(r *rand.Rand) int {
	return 1 + r.IntN(maxFilesPerLeaf)
}

// creationDate draws a day in [1, 26] and a month in [1, 12] for year.
func creationDate(r *rand.Rand, year int) models.Date {
	day := 1 + r.IntN(maxDay)
	month := 1 + r.IntN(maxMonth)
	return models.Date{Day: day, Month: month, Year: year}
}

// reference draws an Aktenzeichen. Uniqueness is not guaranteed.
func reference(r *rand.Rand) string {
	b := make([]byte, models.ReferenceLength)
	for i := range b {
		b[i] = alphanumeric[r.IntN(len(alphanumeric))]
	}
	return string(b)
}

func technique(r *rand.Rand) models.Technique {
	if r.Float64() > manualThreshold {
		return models.TechniqueManual
	}
	return models.TechniqueDigital
}
