package reviewerrors

import (
	"context"
)

// Repository defines persistence for review errors
type Repository interface {
	Save(ctx context.Context, e *ReviewError) error
	ListByReview(ctx context.Context, tenant string, reviewID string, limit int) ([]*ReviewError, error)
}
