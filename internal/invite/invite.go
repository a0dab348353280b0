// Package invite generates the short shareable codes used to join rooms.
package invite

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// CodeLength is the fixed length of every invite code, including the
// degraded fallback shape.
const CodeLength = 6

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxAttempts bounds the regenerate-on-collision loop.
const maxAttempts = 5

// ActiveCodeChecker reports whether the code is already in use by an active
// room. Settled and archived rooms do not count: their codes may be reused.
type ActiveCodeChecker func(ctx context.Context, code string) (bool, error)

// Generator produces invite codes with a uniqueness check against active rooms.
type Generator struct {
	inUse ActiveCodeChecker
	now   func() time.Time
	randN func(n int) int
}

// NewGenerator creates a Generator backed by the given checker.
func NewGenerator(inUse ActiveCodeChecker) *Generator {
	return &Generator{
		inUse: inUse,
		now:   time.Now,
		randN: rand.Intn,
	}
}

// Generate returns a fresh 6-character code. On repeated collisions it falls
// back to a degraded shape: a 4-character random prefix plus the last two
// digits of the current time in base 36. The fallback trades the uniqueness
// check for forward progress and is expected to be rare.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		code := g.randomCode()

		taken, err := g.inUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		slog.Warn("invite code collision, regenerating", "code", code, "attempt", attempt)
	}

	suffix := strconv.FormatInt(g.now().UnixMilli(), 36)
	suffix = strings.ToUpper(suffix[len(suffix)-2:])
	code := g.randomCode()[:CodeLength-2] + suffix
	slog.Warn("invite code generation degraded to timestamp fallback", "code", code)
	return code, nil
}

func (g *Generator) randomCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(charset[g.randN(len(charset))])
	}
	return b.String()
}
