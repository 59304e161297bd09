package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/form"
	"github.com/jask/restopick/internal/logger"
	"github.com/jask/restopick/internal/recommend"
)

// DefaultEmptyMessage is shown for a zero-result response without a message.
const DefaultEmptyMessage = "No restaurants found matching your criteria."

// RecommendClient is the backend call the service depends on.
type RecommendClient interface {
	Recommend(ctx context.Context, req recommend.Request, requestID string) (recommend.Response, error)
}

// OutcomeKind classifies a finished submission.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeEmpty
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return repository.OutcomeSuccess
	case OutcomeEmpty:
		return repository.OutcomeEmpty
	default:
		return repository.OutcomeFailed
	}
}

// Result is what the form renders after a submission. Message is set for
// the empty and failed kinds and goes to the error box.
type Result struct {
	Kind            OutcomeKind
	SubmissionID    string
	Summary         string
	Recommendations []recommend.Recommendation
	Message         string
	Err             error
}

// OK reports whether cards should be rendered.
func (r Result) OK() bool { return r.Kind == OutcomeSuccess }

// RecommendService sends criteria to the backend and records the attempt.
type RecommendService struct {
	Client  RecommendClient
	History *repository.SubmissionRepo
	Now     func() time.Time
}

// ToRequest builds the wire payload. An empty cuisine selection is sent as
// null.
func ToRequest(c form.Criteria) recommend.Request {
	req := recommend.Request{
		City:       c.City,
		PriceRange: c.PriceRange,
		MinRating:  c.MinRating,
	}
	if len(c.Cuisines) > 0 {
		req.Cuisine = append([]string(nil), c.Cuisines...)
	}
	return req
}

// Recommend issues exactly one request for crit. submissionID doubles as the
// X-Request-ID header and the history row id.
func (s *RecommendService) Recommend(ctx context.Context, submissionID string, crit form.Criteria) Result {
	log := logger.FromContext(ctx).With(zap.String("submission_id", submissionID))
	s.start(ctx, log, submissionID, crit)

	resp, err := s.Client.Recommend(ctx, ToRequest(crit), submissionID)
	res := classify(resp, err)
	res.SubmissionID = submissionID

	s.finish(ctx, log, res)
	log.Info("submission finished",
		zap.Stringer("criteria", crit),
		zap.Stringer("outcome", res.Kind),
		zap.Int("count", len(res.Recommendations)),
	)
	return res
}

func classify(resp recommend.Response, err error) Result {
	if err != nil {
		return Result{Kind: OutcomeFailed, Message: recommend.UserMessage(err), Err: err}
	}
	if resp.Empty() {
		msg := resp.Message
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		return Result{Kind: OutcomeEmpty, Message: msg}
	}
	return Result{
		Kind:            OutcomeSuccess,
		Summary:         resp.Summary,
		Recommendations: resp.Recommendations,
	}
}

func (s *RecommendService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// History failures are logged and never change the outcome shown to the user.
func (s *RecommendService) start(ctx context.Context, log *zap.Logger, id string, crit form.Criteria) {
	if s.History == nil {
		return
	}
	err := s.History.Start(ctx, repository.Submission{
		ID:         id,
		City:       crit.City,
		PriceRange: crit.PriceRange,
		Cuisines:   crit.Cuisines,
		MinRating:  crit.MinRating,
		CreatedAt:  s.now(),
	})
	if err != nil {
		log.Warn("record submission", zap.Error(err))
	}
}

func (s *RecommendService) finish(ctx context.Context, log *zap.Logger, res Result) {
	if s.History == nil {
		return
	}
	err := s.History.Finish(ctx, res.SubmissionID, res.Kind.String(), len(res.Recommendations), res.Message, s.now())
	if err != nil {
		log.Warn("record submission outcome", zap.Error(err))
	}
}
