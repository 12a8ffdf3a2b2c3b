package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
	RoleAdmin      = "ADMIN"
)

type requestDataKey struct{}

// RequestData carries the already-verified identity of the inbound request.
// The core trusts it; producing it is the auth layer's job.
type RequestData struct {
	UserID uuid.UUID
	Role   string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
