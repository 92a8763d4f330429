package lifetimes

import (
	"fmt"
	"math"
	"math/rand/v2"

	"cltv-predict/pkg/models"

	"gonum.org/v1/gonum/stat/distuv"
)

// SimulatedCustomer est un client tiré du modèle BG/NBD ajusté.
type SimulatedCustomer struct {
	Frequency int
	Recency   float64
	T         float64
	Alive     bool
}

// Simulate tire un client par valeur de T: taux d'achat ~ Gamma(r, alpha), probabilité d'abandon
// après chaque achat ~ Beta(a, b), inter-achats exponentiels. La fréquence compte les unités de temps
// distinctes contenant au moins un achat.
func (m *BetaGeoModel) Simulate(T []float64, src rand.Source) []SimulatedCustomer {
	p := m.Params
	rng := rand.New(src)
	dropout := distuv.Beta{Alpha: p.A, Beta: p.B, Src: src}
	rate := distuv.Gamma{Alpha: p.R, Beta: p.Alpha, Src: src}

	out := make([]SimulatedCustomer, len(T))
	for i, horizon := range T {
		death := dropout.Rand()
		lambda := rate.Rand()
		wait := distuv.Exponential{Rate: lambda, Src: src}

		var (
			elapsed float64
			units   = map[int]struct{}{}
			last    float64
			alive   = true
		)
		next := wait.Rand()
		for alive && elapsed+next < horizon {
			elapsed += next
			units[int(elapsed)] = struct{}{}
			last = elapsed
			next = wait.Rand()
			alive = rng.Float64() > death
		}
		out[i] = SimulatedCustomer{Frequency: len(units), Recency: last, T: horizon, Alive: alive}
	}
	return out
}

// PeriodTransactions compte les clients par fréquence, observés et simulés, sur les classes
// 0..maxFrequency-1 plus une classe "maxFrequency+".
func (m *BetaGeoModel) PeriodTransactions(maxFrequency int, seed uint64) ([]models.PeriodCount, error) {
	if maxFrequency <= 0 {
		return nil, fmt.Errorf("%w: max frequency must be positive", ErrInvalidInput)
	}
	simulated := m.Simulate(m.T, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	bin := func(f float64) int {
		return int(math.Min(f, float64(maxFrequency)))
	}
	counts := make([]models.PeriodCount, maxFrequency+1)
	for k := range counts {
		counts[k].Label = fmt.Sprint(k)
	}
	counts[maxFrequency].Label = fmt.Sprintf("%d+", maxFrequency)

	for _, f := range m.Frequency {
		counts[bin(f)].Actual++
	}
	for _, c := range simulated {
		counts[bin(float64(c.Frequency))].Simulated++
	}
	return counts, nil
}
