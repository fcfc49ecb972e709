package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskly/internal/engine"
)

type addSubtaskRequest struct {
	Title  string `json:"nama_sub_tugas"`
	TaskID string `json:"tugas_id" binding:"required"`
}

type toggleResponse struct {
	Message string `json:"message"`
	engine.RecomputedState
}

func (h *handler) handleGetSubtasks(c *gin.Context) {
	subs, err := h.engine.GetSubtasks(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		abort(c, fromEngineError("Error fetching subtasks.", err))
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *handler) handleAddSubtask(c *gin.Context) {
	var req addSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error(), err))
		return
	}

	sub, err := h.engine.AddSubtask(c.Request.Context(), req.TaskID, req.Title)
	if err != nil {
		abort(c, fromEngineError("Gagal menambahkan sub-tugas.", err))
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handler) handleToggleSubtask(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errMissingCompleted.Error(), err))
		return
	}

	state, err := h.engine.ToggleSubtask(c.Request.Context(), c.Param("id"), *req.Completed)
	if err != nil {
		abort(c, fromEngineError("Error updating subtask.", err))
		return
	}

	msg := "Subtask updated successfully."
	if state.Transitioned {
		msg = "Subtask and parent task updated successfully."
	}
	c.JSON(http.StatusOK, toggleResponse{Message: msg, RecomputedState: state})
}
