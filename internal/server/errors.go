package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omer-farooq/pairswap/internal/lifecycle"
)

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		// Handle Echo HTTP errors (like 404, 400, etc.)
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		// Handle all other errors as internal server error
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// failureStatus maps an attempt's failure code to the HTTP status that best
// reflects where the attempt stopped. Codes that mean funds may or did move
// are distinguished so callers do not blindly retry.
func failureStatus(code lifecycle.FailureCode) (int, string) {
	switch code {
	case lifecycle.QueryFailed:
		return http.StatusBadGateway, "chain query failed"
	case lifecycle.SimulationFailed:
		return http.StatusUnprocessableEntity, "transaction simulation failed"
	case lifecycle.SigningFailed:
		return http.StatusInternalServerError, "transaction signing failed"
	case lifecycle.SubmissionRejected:
		return http.StatusBadGateway, "transaction rejected at submission"
	case lifecycle.OnChainExecutionFailed:
		return http.StatusUnprocessableEntity, "transaction failed on chain"
	case lifecycle.ConfirmationTimeout:
		// Outcome unknown; the transaction may still land.
		return http.StatusGatewayTimeout, "confirmation timed out, outcome unknown"
	case lifecycle.SlippageExceeded:
		// The swap succeeded on chain below the requested minimum.
		return http.StatusConflict, "swap succeeded below requested minimum"
	case lifecycle.DecodeFailed:
		return http.StatusBadGateway, "chain response could not be decoded"
	}
	return http.StatusInternalServerError, "swap attempt failed"
}
