// server/internal/api/handlers/common.go
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"freight-match-api-server/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// opTimeout bounds every persistence call issued from a handler.
const opTimeout = 10 * time.Second

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), opTimeout)
}

// newID builds a readable prefixed id, e.g. "LOAD-9F3A21BC".
func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

// paginationParams reads ?page= and ?limit= with defaults 1 and 10.
func paginationParams(c *gin.Context) (page, limit int64) {
	page = defaultPage
	limit = defaultLimit
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// totalPages rounds up; zero items means zero pages.
func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// paginatedResponse is the envelope every list endpoint returns.
func paginatedResponse(items interface{}, total, page, limit int64) gin.H {
	return gin.H{
		"items":      items,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages(total, limit),
	}
}

// respondError maps a domain error to its HTTP status and writes the body.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), gin.H{"error": apperr.Message(err)})
}

// withTransaction runs fn inside a Mongo multi-document transaction.
func withTransaction(ctx context.Context, db *mongo.Database, fn func(mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)
	return session.WithTransaction(ctx, fn)
}
