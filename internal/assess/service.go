// Package assess runs one form submission: the risk estimate is always
// produced, the recommendation only when symptoms were entered.
package assess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/saviour/internal/patient"
	"github.com/Skufu/saviour/internal/risk"
)

// ErrEmptySymptoms is returned instead of calling the recommender when the
// symptoms field is blank.
var ErrEmptySymptoms = errors.New("symptoms are required")

// EmptySymptomsWarning is shown to the user for a blank symptoms field.
const EmptySymptomsWarning = "Please enter symptoms to proceed."

type Recommender interface {
	Recommend(ctx context.Context, in patient.Input) (string, error)
}

type Service struct {
	rng         risk.RandomSource
	recommender Recommender
	logger      zerolog.Logger
}

func NewService(rng risk.RandomSource, rec Recommender, logger zerolog.Logger) *Service {
	return &Service{rng: rng, recommender: rec, logger: logger}
}

// Outcome is everything published back to the form for one submission.
// At most one of Recommendation, Warning and Error is set.
type Outcome struct {
	Risk           risk.Result `json:"risk"`
	Display        string      `json:"display"`
	Summary        string      `json:"summary"`
	Recommendation string      `json:"recommendation,omitempty"`
	Warning        string      `json:"warning,omitempty"`
	Error          string      `json:"error,omitempty"`

	// Err is the underlying recommendation failure, if any.
	Err error `json:"-"`
}

// Estimate evaluates the risk score on its own.
func (s *Service) Estimate(in patient.Input) risk.Result {
	return risk.Evaluate(in, s.rng)
}

// Submit handles a "SAVE A LIFE" press. A recommendation failure is recorded
// on the outcome and never affects the risk result.
func (s *Service) Submit(ctx context.Context, in patient.Input) Outcome {
	r := s.Estimate(in)
	out := Outcome{
		Risk:    r,
		Display: r.Display(),
		Summary: in.Summary(),
	}

	if !in.HasSymptoms() {
		out.Warning = EmptySymptomsWarning
		out.Err = ErrEmptySymptoms
		return out
	}

	start := time.Now()
	text, err := s.recommender.Recommend(ctx, in)
	if err != nil {
		s.logger.Error().Err(err).Dur("latency", time.Since(start)).Msg("recommendation failed")
		out.Error = fmt.Sprintf("An error occurred: %v", err)
		out.Err = err
		return out
	}

	s.logger.Info().Dur("latency", time.Since(start)).Int("chars", len(text)).Msg("recommendation received")
	out.Recommendation = text
	return out
}
