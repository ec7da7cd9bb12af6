package lsystem

import "math/rand/v2"

// Expand rewrites the axiom cfg.Iterations times. Each symbol with rules is
// replaced by one alternative picked with probability proportional to its
// weight; other symbols are copied through. The output depends only on cfg
// and the state of rng.
func Expand(cfg *Config, rng *rand.Rand) []rune {
	current := []rune(cfg.Axiom)
	for i := 0; i < cfg.Iterations; i++ {
		next := make([]rune, 0, len(current)*2)
		for _, sym := range current {
			alts, ok := cfg.Rules[sym]
			if !ok || len(alts) == 0 {
				next = append(next, sym)
				continue
			}
			next = append(next, []rune(choose(alts, rng).Out)...)
		}
		current = next
	}
	return current
}

func choose(alts []Production, rng *rand.Rand) Production {
	if len(alts) == 1 {
		return alts[0]
	}
	var total float32
	for _, p := range alts {
		total += p.Weight
	}
	r := rng.Float32() * total
	for _, p := range alts {
		if r < p.Weight {
			return p
		}
		r -= p.Weight
	}
	return alts[len(alts)-1]
}
