package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"factory_crm_backend/internal/middleware"
	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// parseIDQuery reads an optional int64 query parameter.
func parseIDQuery(c *gin.Context, key string) (*int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := utils.StrToInt64(raw)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+key+" format.", "must be a positive integer"))
		return nil, false
	}
	return &id, true
}

// parsePagination reads page and page_size, defaulting to 1 and 20.
func parsePagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, ok = utils.ParsePositiveInt(c.Query("page"), 1)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
		return 0, 0, false
	}
	pageSize, ok = utils.ParsePositiveInt(c.Query("page_size"), 20)
	if !ok || pageSize > 200 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be between 1 and 200"))
		return 0, 0, false
	}
	return page, pageSize, true
}

func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return models.Actor{}, false
	}
	return actor, true
}

func bindJSON(c *gin.Context, dst interface{}, op string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.LogWarn(err, op+": Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return false
	}
	return true
}

func respondList(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// respondServiceError maps service errors onto the API error taxonomy.
func respondServiceError(c *gin.Context, err error, op, failure string) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.LogInfo(op+": completion blocked by stock", map[string]interface{}{"material_id": stockErr.MaterialID})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInsufficientStock,
			"Insufficient stock to complete the order.", err.Error()).WithMaterialInfo(stockErr))
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrClientValidation):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Operation not permitted.", err.Error()))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrMaterialNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrPhoneNumberExists), errors.Is(err, services.ErrUsernameExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
	case errors.Is(err, services.ErrRoleNotFound):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.LogError(err, op+": unexpected error")
		utils.RespondInternal(c, failure)
	}
}
