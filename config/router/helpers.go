package router

import (
	"net/http"
	"strconv"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	apperrors "github.com/Vijayesvar/PLEDG-MF/pkg/errors"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	if logger := ctx.Request.Context().Value(log.LoggerKeyForContext); logger != nil {
		if l, ok := logger.(*log.Logger); ok {
			return l
		}
	}

	baseLogger := log.NewLoggerWithJSONOutput()
	return baseLogger.WithCorrelationID(ctx.Request.Context())
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

func CreatedResult(data any, resourceName string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusCreated,
		Data:       data,
		Message:    resourceName + " created successfully",
	}
}

// DownloadResult answers with a file attachment rather than the JSON envelope.
func DownloadResult(fileName, contentType string, body []byte) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Message:    "Download ready",
		Download: &Download{
			FileName:    fileName,
			ContentType: contentType,
			Body:        body,
		},
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too Many Requests",
	}
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusBadRequest,
		Data:       payload,
		Message:    message,
	}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusNotFound,
		Data:       nil,
		Message:    message,
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusInternalServerError,
		Data:       nil,
		Message:    message,
	}
}

func ServiceUnavailableResult(message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusServiceUnavailable,
		Data:       data,
		Message:    message,
	}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

// AppErrorResult maps an error from the service layer onto the envelope without
// leaking internal error text.
func AppErrorResult(err error) *ServiceResult {
	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err),
		nil,
	)
}

// BindingErrorResult turns a ShouldBind* failure into a 400 listing field errors when it can.
func BindingErrorResult(err error, payload any) *ServiceResult {
	if validationErrors := apperrors.FormatValidationErrors(err, payload); len(validationErrors) > 0 {
		return BadRequestResult("Invalid request payload", validationErrors)
	}
	return BadRequestResult("Invalid request body", nil)
}

// ParseInt64Param reads a positive 64-bit identifier from the path.
func ParseInt64Param(ctx *RequestContext, paramName string) (int64, *ServiceResult) {
	idParam := ctx.Param(paramName)
	id, err := strconv.ParseInt(idParam, 10, 64)

	if err != nil || id <= 0 {
		GetLogger(ctx).Warn("Invalid ID parameter", "param", paramName, "value", idParam, "error", err)
		return 0, BadRequestResult("Invalid ID parameter", nil)
	}

	return id, nil
}
