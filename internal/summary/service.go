package summary

import (
	"context"
	"errors"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Generator turns a prompt into raw model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Store interface {
	GetSimulation(ctx context.Context, id primitive.ObjectID) (*models.Simulation, error)
	// SaveSummary stores the summary unless the run already has one, and
	// returns the record as stored.
	SaveSummary(ctx context.Context, id primitive.ObjectID, summary string, tags []string) (*models.Simulation, error)
}

type Service struct {
	gen    Generator
	store  Store
	logger *zap.Logger
}

// NewService builds the backfill service. gen may be nil when no generator is
// configured; Generate then fails for runs that are not yet summarized.
func NewService(gen Generator, store Store, logger *zap.Logger) *Service {
	return &Service{gen: gen, store: store, logger: logger}
}

// Generate returns the summary of run id, calling the generator only when the
// run has none yet. A stored summary is never regenerated.
func (s *Service) Generate(ctx context.Context, id primitive.ObjectID) (Result, error) {
	sim, err := s.store.GetSimulation(ctx, id)
	if err != nil {
		return Result{}, err
	}

	if st, ok := sim.Summary().(models.Summarized); ok {
		return Result{Summary: st.Text, Tags: st.Tags}, nil
	}

	if s.gen == nil {
		return Result{}, apperr.New(apperr.Internal, "AI summary generation is not configured.")
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(*sim))
	if err != nil {
		if errors.Is(err, ErrThrottled) {
			s.logger.Warn("summary generator throttled", zap.String("simulation_id", id.Hex()), zap.Error(err))
			return Result{}, apperr.Wrap(apperr.Throttled, err, "API rate limit exceeded.")
		}
		return Result{}, apperr.Wrap(apperr.Internal, err, "Failed to get AI summary")
	}

	res, err := Parse(text)
	if err != nil {
		s.logger.Error("summary response rejected",
			zap.String("simulation_id", id.Hex()),
			zap.String("raw", text),
			zap.Error(err),
		)
		return Result{}, apperr.Wrap(apperr.UpstreamFormat, err, "Failed to get AI summary")
	}

	stored, err := s.store.SaveSummary(ctx, id, res.Summary, res.Tags)
	if err != nil {
		return Result{}, err
	}
	// A concurrent request may have saved first; its summary wins.
	if st, ok := stored.Summary().(models.Summarized); ok {
		res = Result{Summary: st.Text, Tags: st.Tags}
	}

	s.logger.Info("summary generated", zap.String("simulation_id", id.Hex()), zap.Strings("tags", res.Tags))
	return res, nil
}
