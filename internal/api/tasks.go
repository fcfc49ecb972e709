package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/model"
)

type createTaskRequest struct {
	Title     string   `json:"nama_tugas"`
	StartDate string   `json:"tanggal"`
	Deadline  string   `json:"deadline"`
	UserID    string   `json:"user_id"`
	Members   []string `json:"anggota"`
	Subtasks  []string `json:"sub_tugas"`
}

type createTaskResponse struct {
	Message string `json:"message"`
	model.TaskWithSubtasks
}

type updateStatusRequest struct {
	Completed *bool `json:"is_completed" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handler) handleCreateTask(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, newBadRequestError(errInvalidRequestBody.Error(), err))
			return
		}

		task, err := h.engine.CreateTask(c.Request.Context(), engine.NewTask{
			Title:     req.Title,
			StartDate: req.StartDate,
			Deadline:  req.Deadline,
			Kind:      kind,
			OwnerID:   req.UserID,
			Members:   req.Members,
			Subtasks:  req.Subtasks,
		})
		if err != nil {
			abort(c, fromEngineError("Gagal menambahkan tugas.", err))
			return
		}

		c.JSON(http.StatusCreated, createTaskResponse{
			Message:          task.ID,
			TaskWithSubtasks: task,
		})
	}
}

// handleGetTasks lists a user's tasks. Group tasks come pre-split into
// buckets, personal tasks as a flat list.
func (h *handler) handleGetTasks(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := engine.ListFilter{UserID: c.Param("userId"), Kind: &kind}

		if kind == model.KindGroup {
			buckets, err := h.engine.ListBuckets(c.Request.Context(), filter)
			if err != nil {
				abort(c, fromEngineError("Gagal mengambil tugas kelompok.", err))
				return
			}
			c.JSON(http.StatusOK, buckets)
			return
		}

		tasks, err := h.engine.ListTasks(c.Request.Context(), filter)
		if err != nil {
			abort(c, fromEngineError("Error fetching tasks.", err))
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func (h *handler) handleGetBucket(kind model.Kind, completed bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := h.engine.ListBuckets(c.Request.Context(), engine.ListFilter{
			UserID: c.Param("userId"),
			Kind:   &kind,
		})
		if err != nil {
			abort(c, fromEngineError("Error fetching tasks.", err))
			return
		}

		if completed {
			c.JSON(http.StatusOK, buckets.Completed)
			return
		}
		c.JSON(http.StatusOK, buckets.InProgress)
	}
}

func (h *handler) handleUpdateTaskStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errMissingCompleted.Error(), err))
		return
	}

	if err := h.engine.UpdateTaskStatus(c.Request.Context(), c.Param("id"), *req.Completed); err != nil {
		abort(c, fromEngineError("Error updating task.", err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Task updated successfully."})
}
