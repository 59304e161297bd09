package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/logger"
	"github.com/jask/restopick/internal/recommend"
)

// ErrInvalidRating is returned for ratings outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// FeedbackClient delivers feedback to the backend.
type FeedbackClient interface {
	SendFeedback(ctx context.Context, fb recommend.Feedback) error
}

// FeedbackService rates recommended restaurants. Every rating is kept
// locally, including ones the backend did not accept.
type FeedbackService struct {
	Client FeedbackClient
	Store  *repository.FeedbackRepo
	Now    func() time.Time
}

// Rate sends one rating. submissionID links it to the result set it came
// from and may be empty.
func (s *FeedbackService) Rate(ctx context.Context, submissionID, restaurant string, rating int, comment string) error {
	restaurant = strings.TrimSpace(restaurant)
	if restaurant == "" {
		return errors.New("restaurant name is required")
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	log := logger.FromContext(ctx)

	sendErr := s.Client.SendFeedback(ctx, recommend.Feedback{
		RestaurantName: restaurant,
		Rating:         rating,
		Comment:        comment,
	})

	if s.Store != nil {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		rec := repository.Feedback{
			ID:             uuid.NewString(),
			RestaurantName: restaurant,
			Rating:         rating,
			Comment:        comment,
			Delivered:      sendErr == nil,
			CreatedAt:      now().UTC(),
		}
		if submissionID != "" {
			rec.SubmissionID = &submissionID
		}
		if sendErr != nil {
			rec.Error = recommend.UserMessage(sendErr)
		}
		if err := s.Store.Record(ctx, rec); err != nil {
			log.Warn("record feedback", zap.Error(err))
		}
	}

	if sendErr != nil {
		return fmt.Errorf("send feedback: %w", sendErr)
	}
	log.Info("feedback sent", zap.String("restaurant", restaurant), zap.Int("rating", rating))
	return nil
}
