// Package reqid issues the request IDs that tie a submission to its log row
// and ledger copies.
package reqid

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

const maxAttempts = 10

// LogIndex answers whether a request ID is already taken.
type LogIndex interface {
	HasRequestID(ctx context.Context, requestID string) (bool, error)
}

// Generator produces IDs shaped REQ-<epochMillis>-<3 digits>. Collisions are
// retried up to maxAttempts before the submission is failed outright.
type Generator struct {
	index LogIndex

	now     func() time.Time
	randInt func(n int) int
}

// New builds a Generator backed by the given index.
func New(index LogIndex) *Generator {
	return &Generator{
		index:   index,
		now:     time.Now,
		randInt: rand.Intn,
	}
}

// Generate returns a request ID not present in the log.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := fmt.Sprintf("REQ-%d-%03d", g.now().UnixMilli(), g.randInt(1000))
		taken, err := g.index.HasRequestID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check request id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", appErrors.ErrGenerationExhausted
}
