package handlers

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/validation"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type apiError struct {
	status int
	code   string
}

// errorTable maps service sentinels to their HTTP status and response code.
var errorTable = []struct {
	err error
	apiError
}{
	{services.ErrEmailTaken, apiError{fiber.StatusConflict, "EMAIL_TAKEN"}},
	{services.ErrInvalidCredentials, apiError{fiber.StatusUnauthorized, "INVALID_CREDENTIALS"}},
	{services.ErrInvalidToken, apiError{fiber.StatusUnauthorized, "INVALID_TOKEN"}},
	{services.ErrUserNotFound, apiError{fiber.StatusNotFound, "USER_NOT_FOUND"}},
	{services.ErrAccountInactive, apiError{fiber.StatusForbidden, "ACCOUNT_INACTIVE"}},
	{services.ErrCannotModifySelf, apiError{fiber.StatusBadRequest, "CANNOT_MODIFY_SELF"}},

	{services.ErrTourNotFound, apiError{fiber.StatusNotFound, "TOUR_NOT_FOUND"}},
	{services.ErrAccessDenied, apiError{fiber.StatusForbidden, "ACCESS_DENIED"}},
	{services.ErrNoPanoramas, apiError{fiber.StatusBadRequest, "NO_PANORAMAS"}},

	{services.ErrPanoramaNotFound, apiError{fiber.StatusNotFound, "PANORAMA_NOT_FOUND"}},
	{services.ErrCannotDeactivateStartPanorama, apiError{fiber.StatusBadRequest, "CANNOT_DEACTIVATE_START_PANORAMA"}},
	{services.ErrCannotDeleteOnlyActivePanorama, apiError{fiber.StatusBadRequest, "CANNOT_DELETE_ONLY_ACTIVE_PANORAMA"}},
	{services.ErrInvalidPanoramaIDs, apiError{fiber.StatusBadRequest, "INVALID_PANORAMA_IDS"}},
	{services.ErrInvalidPanoramaCount, apiError{fiber.StatusBadRequest, "INVALID_PANORAMA_COUNT"}},
	{services.ErrInvalidFileType, apiError{fiber.StatusBadRequest, "INVALID_FILE_TYPE"}},
	{services.ErrFileTooLarge, apiError{fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"}},

	{services.ErrHotspotNotFound, apiError{fiber.StatusNotFound, "HOTSPOT_NOT_FOUND"}},
	{services.ErrTargetPanoramaNotFound, apiError{fiber.StatusBadRequest, "TARGET_PANORAMA_NOT_FOUND"}},
	{services.ErrTargetPanoramaRequired, apiError{fiber.StatusBadRequest, "TARGET_PANORAMA_REQUIRED"}},
}

func errorResponse(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Code: code, Message: message,
	})
}

// respondError writes the response for an error returned by a service.
// Unknown errors are logged and hidden behind SERVER_ERROR.
func respondError(c *fiber.Ctx, err error) error {
	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "VALIDATION_ERROR", Message: ve.Error(), Details: ve.Details(),
		})
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return errorResponse(c, e.status, e.code, e.err.Error())
		}
	}

	slog.Error("request failed",
		"request_id", requestID(c),
		"action", c.Method()+" "+c.Route().Path,
		"error", err.Error(),
	)
	return errorResponse(c, fiber.StatusInternalServerError, "SERVER_ERROR", "Internal server error")
}

// ErrorHandler is the Fiber-wide error handler for errors that escape the
// route handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return errorResponse(c, fe.Code, "NOT_FOUND", fe.Message)
		case fiber.StatusRequestEntityTooLarge:
			return errorResponse(c, fe.Code, "FILE_TOO_LARGE", services.ErrFileTooLarge.Error())
		case fiber.StatusTooManyRequests:
			return errorResponse(c, fe.Code, "RATE_LIMITED", "Too many requests")
		case fiber.StatusMethodNotAllowed:
			return errorResponse(c, fe.Code, "METHOD_NOT_ALLOWED", fe.Message)
		}
		if fe.Code < fiber.StatusInternalServerError {
			return errorResponse(c, fe.Code, "BAD_REQUEST", fe.Message)
		}
	}
	return respondError(c, err)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// parseBody decodes the JSON body strictly, rejecting unknown fields, and
// validates the result.
func parseBody(c *fiber.Ctx, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return validation.New("body", "json", "Invalid request body: "+err.Error())
	}
	if verr := validation.ValidateStruct(out); verr != nil {
		return verr
	}
	return nil
}

func parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return validation.New("query", "query", "Invalid query parameters")
	}
	if verr := validation.ValidateStruct(out); verr != nil {
		return verr
	}
	return nil
}

// parseID reads a uuid path parameter. Malformed ids cannot name an entity,
// so they map to the not-found error of that entity.
func parseID(c *fiber.Ctx, param string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
