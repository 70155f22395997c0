package audit

import "context"

// RequestInfo carries request-scoped context (client address, agent,
// optional operator reason) into audit entries written for mutations
// performed under that request.
type RequestInfo struct {
	IP        string
	UserAgent string
	Reason    string
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
