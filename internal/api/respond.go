package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// respondError maps a service error onto an HTTP response.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verr.Fields})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to log in with provided credentials"})
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

func respondInvalidParam(c *gin.Context, name, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": validation.Errors{name: errors.New(message)},
	})
}

// pathID parses a uuid path parameter, answering 404 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}

func pageParams(c *gin.Context) types.PageParams {
	return types.PageParams{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}.Normalize()
}

// withLinks fills the next and previous links of a page from the current request URL.
func withLinks[T any](c *gin.Context, page *types.Page[T], params types.PageParams) *types.Page[T] {
	link := func(n int) *string {
		u := url.URL{
			Scheme:   "http",
			Host:     c.Request.Host,
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
		}
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			u.Scheme = "https"
		}
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		q.Set("limit", strconv.Itoa(params.Limit))
		u.RawQuery = q.Encode()
		s := u.String()
		return &s
	}

	if int64(params.Page*params.Limit) < page.Count {
		page.Next = link(params.Page + 1)
	}
	if params.Page > 1 {
		page.Previous = link(params.Page - 1)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page
}
