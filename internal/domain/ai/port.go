package ai

import (
	"context"

	"github.com/bryanwahyu/brandlens/internal/domain/assets"
)

// Client is the external analysis collaborator. It returns the raw JSON
// document from the model; parsing lives in the issues package.
type Client interface {
	Analyze(ctx context.Context, assetURL string, kind assets.Kind) (string, error)
}
