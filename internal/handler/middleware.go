package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// ActorHeader carries the caller's user ID, set by the upstream identity layer.
const ActorHeader = "X-User-ID"

const actorKey = "actor_id"

// UserLookup resolves the caller's profile.
type UserLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// RequireActor rejects requests without a known caller and stores the caller's ID.
func RequireActor(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ActorHeader)
		if raw == "" {
			Unauthorized(c, ActorHeader+" header is required")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			BadRequest(c, ActorHeader+" must be a UUID")
			return
		}

		if _, err := users.Get(c.Request.Context(), id.String()); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				Unauthorized(c, "unknown user")
				return
			}
			_ = c.Error(err)
			InternalError(c, err.Error())
			return
		}

		c.Set(actorKey, id.String())
		c.Next()
	}
}

// ActorID returns the caller set by RequireActor.
func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}

// RequestLogger logs one line per request with zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor := ActorID(c); actor != "" {
			fields = append(fields, zap.String("actor_id", actor))
		}

		switch {
		case len(c.Errors) > 0:
			log.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, name+" must be a UUID")
		return "", false
	}
	return id.String(), true
}
