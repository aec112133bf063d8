// internal/handlers/task_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Generate derives tasks for an application and trigger event. Repeat calls
// for the same pair are reported as already generated.
// POST /api/v1/applications/:id/tasks/generate
func (h *TaskHandler) Generate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		TriggerEvent string `json:"trigger_event" binding:"required,trigger_event"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}

	result, err := h.taskService.GenerateForApplication(scope, applicationID, models.TriggerEvent(req.TriggerEvent))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrInvalidTriggerEvent):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	message := i18n.T(lang, i18n.KeyTasksGenerated)
	if result.AlreadyGenerated {
		message = i18n.T(lang, i18n.KeyTasksAlreadyGenerated)
	}

	utils.SuccessResponse(c, gin.H{
		"message":           message,
		"tasks":             result.Tasks,
		"already_generated": result.AlreadyGenerated,
	})
}

// ListForApplication returns all tasks for one application.
// GET /api/v1/applications/:id/tasks
func (h *TaskHandler) ListForApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListForApplication(scope, applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, tasks)
}

// CreateManual adds a user-defined task to an application.
// POST /api/v1/applications/:id/tasks
func (h *TaskHandler) CreateManual(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	task, err := h.taskService.CreateManualTask(scope, applicationID, &req)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, task)
}

// Complete marks a pending task done.
// PUT /api/v1/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(scope, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			utils.NotFoundResponse(c, "task")
		case errors.Is(err, services.ErrTaskAlreadyCompleted):
			utils.ErrorResponse(c, http.StatusConflict, "TASK_COMPLETED", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, task)
}

// Reopen reverts a completed task to pending.
// PUT /api/v1/tasks/:id/reopen
func (h *TaskHandler) Reopen(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.ReopenTask(scope, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			utils.NotFoundResponse(c, "task")
		case errors.Is(err, services.ErrTaskNotCompleted):
			utils.ErrorResponse(c, http.StatusConflict, "TASK_NOT_COMPLETED", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, task)
}

// ListUpcoming returns pending tasks due within a horizon, nearest first.
// GET /api/v1/tasks/upcoming?days=30
func (h *TaskHandler) ListUpcoming(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	horizonDays := 30
	if daysStr := c.Query("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 || days > 365 {
			utils.BadRequestResponse(c, "Invalid days parameter", nil)
			return
		}
		horizonDays = days
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListUpcoming(scope, horizonDays, params)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(tasks, total, params))
}
