package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern records the matched router pattern, e.g.
// "/api/v1/orders/calculate-total", as the label every downstream middleware
// uses in place of the raw URL path. A nil ctx is tolerated for tests.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the recorded pattern, or "" when the
// request never passed through RoutePatternMiddleware.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	pattern, _ := ctx.Value(routePatternKey{}).(string)
	return pattern
}
