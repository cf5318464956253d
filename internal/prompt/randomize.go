package prompt

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/dmorgan81/promobot/internal/log"
)

var ErrNoBriefs = errors.New("no briefs configured")

// Randomizer picks fallback briefs and seeds. Briefs are "product|audience"
// lines; the audience part is optional.
type Randomizer struct {
	briefs []string
	rnd    *rand.Rand
	mu     sync.Mutex
}

func NewRandomizer(briefs []string, source rand.Source) *Randomizer {
	return &Randomizer{briefs: briefs, rnd: rand.New(source)}
}

func (r *Randomizer) Randomize(ctx context.Context) (Brief, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	log.Info("getting random brief")
	if len(r.briefs) == 0 {
		return Brief{}, ErrNoBriefs
	}

	r.mu.Lock()
	idx := r.rnd.Intn(len(r.briefs))
	r.mu.Unlock()

	product, audience, _ := strings.Cut(r.briefs[idx], "|")
	return Brief{Product: strings.TrimSpace(product), Audience: strings.TrimSpace(audience)}, nil
}

// Seed returns a random non-zero generation seed.
func (r *Randomizer) Seed() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.rnd.Int63n(1<<32-1)) + 1
}
