package waitlist

import (
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/pkg/constants"
	"github.com/Vijayesvar/PLEDG-MF/pkg/factory"
	"github.com/Vijayesvar/PLEDG-MF/pkg/ratelimit"
)

func NewWaitlistController(
	store Store,
	logger *log.Logger,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			service := NewWaitlistService(logger, store)

			signupLimiter := createSignupRateLimiter(rs, logger)

			rs.AddPostHandler(c, signupLimiter, "", createEntryHandler(service))
			rs.AddGetHandler(c, nil, "", listEntriesHandler(service))
			rs.AddDeleteHandler(c, nil, "", clearEntriesHandler(service))
			rs.AddGetHandler(c, nil, "/stats", getStatsHandler(service))
			rs.AddGetHandler(c, nil, "/export", exportEntriesHandler(service))
			rs.AddGetHandler(c, nil, "/:id", getEntryHandler(service))
			rs.AddPutHandler(c, nil, "/:id", updateEntryHandler(service))
			rs.AddPatchHandler(c, nil, "/:id/status", updateStatusHandler(service))
			rs.AddDeleteHandler(c, nil, "/:id", deleteEntryHandler(service))
		},
	)
}

// createSignupRateLimiter shares the router's Redis client when it has one so
// the signup budget holds across replicas.
func createSignupRateLimiter(rs *router.RouterService, logger *log.Logger) ratelimit.RateLimiter {
	var limiterLogger ratelimit.Logger
	if logger != nil {
		limiterLogger = logger
	}

	return factory.NewDefaultRateLimiterFactory(rs.GetRedisClient(), limiterLogger).
		CreateRateLimiter("signup", constants.SignupRateLimitRequests, time.Minute)
}

func createEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req CreateEntryRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind request", "error", err)
			return router.BindingErrorResult(err, &req)
		}

		response, err := service.CreateEntry(ctx.Request.Context(), &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.CreatedResult(response, "Waitlist entry")
	}
}

func listEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ListEntriesQuery

		if err := ctx.ShouldBindQuery(&query); err != nil {
			router.GetLogger(ctx).Warn("Invalid list query", "error", err)
			return router.BindingErrorResult(err, &query)
		}

		response, err := service.ListEntries(ctx.Request.Context(), ToQuery(query))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist entries retrieved successfully")
	}
}

func getStatsHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		stats, err := service.GetStats(ctx.Request.Context())
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(stats, "Waitlist statistics retrieved successfully")
	}
}

func exportEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ExportQuery

		if err := ctx.ShouldBindQuery(&query); err != nil {
			return router.BindingErrorResult(err, &query)
		}

		format, err := ParseExportFormat(query.Format)
		if err != nil {
			return router.BadRequestResult("Unsupported export format", nil)
		}

		export, err := service.ExportEntries(ctx.Request.Context(), format)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.DownloadResult(export.FileName, export.ContentType, export.Body)
	}
}

func getEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseInt64Param(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.FindEntryByID(ctx.Request.Context(), id)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist entry retrieved successfully")
	}
}

func updateEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseInt64Param(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req UpdateEntryRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind request", "error", err)
			return router.BindingErrorResult(err, &req)
		}

		response, err := service.UpdateEntry(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist entry updated successfully")
	}
}

func updateStatusHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseInt64Param(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req UpdateStatusRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			return router.BindingErrorResult(err, &req)
		}

		response, err := service.UpdateStatus(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Waitlist entry status updated successfully")
	}
}

func deleteEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseInt64Param(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.DeleteEntry(ctx.Request.Context(), id); err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(nil, "Waitlist entry deleted successfully")
	}
}

func clearEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		if err := service.ClearEntries(ctx.Request.Context()); err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(nil, "Waitlist cleared successfully")
	}
}
