package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cogsdomain "github.com/smallbiznis/storecogs/internal/cogs/domain"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	salesdomain "github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/ratelimit"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, cogsdomain.ErrDuplicateKey),
		errors.Is(err, cogsdomain.ErrBatchBusy):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many uploads, retry later",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, cogsdomain.ErrBatchAborted):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "batch_aborted",
			Message: "import stopped at the first failing row",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, cogsdomain.ErrBatchInterrupted):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, cogsdomain.ErrBatchBusy):
		return "another import is running"
	case errors.Is(err, cogsdomain.ErrDuplicateKey):
		return "a report with this store, week period and period already exists"
	default:
		return "conflict"
	}
}

// classifyErrorForLog returns the error type and code written to the
// request log.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if vErr := asValidationErrors(err); vErr != nil {
		code := "validation_error"
		if len(vErr.Errors) > 0 {
			code = vErr.Errors[0].Code
		}
		return "validation_error", code
	}
	if isValidationError(err) {
		return "validation_error", validationErrorCode(err)
	}
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal_error", "internal_error"
	}
	return payload.Type, sentinelCode(err, payload.Type)
}

func sentinelCode(err error, fallback string) string {
	for _, target := range []error{
		cogsdomain.ErrBatchBusy,
		cogsdomain.ErrDuplicateKey,
		cogsdomain.ErrBatchAborted,
		cogsdomain.ErrBatchInterrupted,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return fallback
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCogsValidationError(err),
		isStoreValidationError(err),
		isSalesValidationError(err),
		isSpreadsheetValidationError(err),
		errors.Is(err, importlogdomain.ErrInvalidDataset):
		return true
	default:
		return false
	}
}

func isCogsValidationError(err error) bool {
	switch {
	case errors.Is(err, cogsdomain.ErrEmptySheet),
		errors.Is(err, cogsdomain.ErrTooManyRows),
		errors.Is(err, cogsdomain.ErrInvalidID),
		errors.Is(err, cogsdomain.ErrInvalidStore),
		errors.Is(err, cogsdomain.ErrInvalidWeek),
		errors.Is(err, cogsdomain.ErrInvalidWeekPeriod):
		return true
	default:
		return false
	}
}

func isStoreValidationError(err error) bool {
	return errors.Is(err, storedirdomain.ErrEmptySheet) ||
		errors.Is(err, storedirdomain.ErrInvalidStoreNumber)
}

func isSalesValidationError(err error) bool {
	switch {
	case errors.Is(err, salesdomain.ErrEmptySheet),
		errors.Is(err, salesdomain.ErrInvalidID),
		errors.Is(err, salesdomain.ErrInvalidDate),
		errors.Is(err, salesdomain.ErrInvalidValue):
		return true
	default:
		return false
	}
}

func isSpreadsheetValidationError(err error) bool {
	return errors.Is(err, spreadsheet.ErrUnreadable) ||
		errors.Is(err, spreadsheet.ErrSheetMissing) ||
		errors.Is(err, spreadsheet.ErrTooManyRows)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, cogsdomain.ErrNotFound),
		errors.Is(err, storedirdomain.ErrNotFound),
		errors.Is(err, salesdomain.ErrNotFound),
		errors.Is(err, importlogdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case isSpreadsheetValidationError(err):
		for _, target := range []error{spreadsheet.ErrUnreadable, spreadsheet.ErrSheetMissing, spreadsheet.ErrTooManyRows} {
			if errors.Is(err, target) {
				return target.Error()
			}
		}
	}
	code := err.Error()
	if i := strings.Index(code, ":"); i > 0 {
		code = code[:i]
	}
	return code
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "empty_sheet", "too_many_rows", "unreadable_spreadsheet", "sheet_not_found":
		return "file"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "empty_sheet":
		return "the sheet has no data rows"
	case "too_many_rows":
		return "the sheet has too many rows"
	case "unreadable_spreadsheet":
		return "the file is not a readable xlsx workbook"
	case "sheet_not_found":
		return "the requested sheet does not exist"
	default:
		return "invalid value"
	}
}
