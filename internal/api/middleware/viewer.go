package middleware

import (
	"context"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

type viewerKey struct{}

func WithViewer(ctx context.Context, viewer domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFromContext returns the caller stored by the authenticator, or an
// anonymous viewer.
func ViewerFromContext(ctx context.Context) domain.Viewer {
	viewer, _ := ctx.Value(viewerKey{}).(domain.Viewer)
	return viewer
}
