package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type memberResponse struct {
	UserID string `json:"user_id"`
}

type setMembersRequest struct {
	Members []string `json:"members" binding:"required"`
}

func (h *handler) handleGetMembers(c *gin.Context) {
	members, err := h.engine.GetMembers(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		abort(c, fromEngineError("Gagal mengambil anggota tugas.", err))
		return
	}

	out := make([]memberResponse, len(members))
	for i, id := range members {
		out[i] = memberResponse{UserID: id}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) handleSetMembers(c *gin.Context) {
	var req setMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errMissingMembers.Error(), err))
		return
	}

	if err := h.engine.SetMembers(c.Request.Context(), c.Param("taskId"), req.Members); err != nil {
		abort(c, fromEngineError("Gagal memperbarui anggota kelompok.", err))
		return
	}

	msg := "Anggota kelompok berhasil diperbarui."
	if len(req.Members) == 0 {
		msg = "Semua anggota dihapus."
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}
