package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	apperrors "github.com/Vijayesvar/PLEDG-MF/pkg/errors"
	"github.com/Vijayesvar/PLEDG-MF/pkg/ratelimit"
	"github.com/Vijayesvar/PLEDG-MF/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultMaxBodyBytes = int64(1 << 20)
	defaultHSTSMaxAge   = int64(31536000)

	corsAllowedHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Correlation-ID"
	corsAllowedMethods = "POST, OPTIONS, GET, PUT, PATCH, DELETE"
	corsExposedHeaders = "Content-Disposition, X-Correlation-ID"
)

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Correlation-ID")
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		ctx := context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-ID", id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		ctx := context.WithValue(c.Request.Context(), log.LoggerKeyForContext, correlatedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		routerService.logger.WithCorrelationID(c.Request.Context()).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if shouldSetHSTS(c) {
			h.Set("Strict-Transport-Security", buildHSTSValue())
		}
		c.Next()
	}
}

// shouldSetHSTS is on by default in production (HSTS_ENABLED overrides) and only
// applies to requests that arrived over TLS, directly or via a terminating proxy.
func shouldSetHSTS(c *gin.Context) bool {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	if !utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod") {
		return false
	}

	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func buildHSTSValue() string {
	maxAge := defaultHSTSMaxAge
	if raw := utils.GetEnvTrimmed("HSTS_MAX_AGE"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxAge = parsed
		}
	}

	value := fmt.Sprintf("max-age=%d", maxAge)
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		value += "; includeSubDomains"
	}
	return value
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := defaultMaxBodyBytes
	if raw := utils.GetEnvTrimmed("MAX_REQUEST_BODY_BYTES"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxBytes = parsed
		}
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func parseAllowedOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowedOrigins := parseAllowedOrigins(os.Getenv("CORS_ALLOWED_ORIGIN"))
		if len(allowedOrigins) == 0 {
			routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set, denying cross-origin request", "origin", origin)
			c.Next()
			return
		}

		originAllowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				originAllowed = true
				break
			}
		}

		if !originAllowed {
			routerService.logger.Warn("CORS origin not allowed", "origin", origin, "allowed_origins", allowedOrigins)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.middlewareConfig.TimeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// Do NOT call c.Next() in a goroutine: gin.Context is not safe for concurrent use.
		c.Next()

		// Mid-flight enforcement belongs to http.Server Read/WriteTimeouts; this
		// only reports a chain that overran its deadline without writing.
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(c.Request.Context()).Warn("Request timeout detected")
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				apperrors.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
		}
	}
}

// limiterFor resolves the limiter for a route. Handler overrides win over
// controller overrides, which win over the router default.
func (routerService *RouterService) limiterFor(handlerKey string, controller *RESTController) ratelimit.RateLimiter {
	if limiter, ok := routerService.rateLimitOverrides[handlerKey]; ok {
		return limiter
	}
	if limiter, ok := routerService.rateLimitOverrides[controller.mountPoint]; ok {
		return limiter
	}
	return routerService.rateLimiter
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		handlerPath := c.Request.URL.Path
		handlerKey := routerService.keyForPathAndMethod(c.FullPath(), c.Request.Method)

		handlerController, controllerFound := routerService.handlerToControllerMap[handlerKey]
		if !controllerFound || handlerController == nil {
			routerService.logger.Error("Request reached a route without a controller mapping",
				"path", handlerPath,
				"method", c.Request.Method,
			)
			c.AbortWithStatusJSON(http.StatusNotFound, NotFoundResult(fmt.Sprintf("There is no handler configured to handle any resource at the path %s", handlerPath)).ToJSON())
			return
		}

		usedLimiter := routerService.limiterFor(handlerKey, handlerController)
		if usedLimiter == nil {
			c.Next()
			return
		}

		limit, window := usedLimiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		key := fmt.Sprintf("ratelimit:%s", clientIP)
		limited, err := usedLimiter.IsLimited(c.Request.Context(), key)
		if err != nil {
			// Fail open: an unhealthy limiter backend must not block legitimate traffic.
			routerService.logger.Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}

		if limited {
			routerService.logger.Warn("Rate limit exceeded", "client_ip", clientIP, "path", handlerPath)
			retryAfterSeconds := int(math.Ceil(window.Seconds()))
			if retryAfterSeconds < 1 {
				retryAfterSeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
				Limit:      limit,
				Window:     window.String(),
				RetryAfter: strconv.Itoa(retryAfterSeconds),
			}).ToJSON())
			return
		}

		c.Next()
	}
}
