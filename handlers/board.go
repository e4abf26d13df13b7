package handlers

import (
	"errors"
	"io"
	"net/http"

	"laundrybook/middleware"
	"laundrybook/services/board"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BoardHandler exposes the slot board: current view, live stream, reserve.
type BoardHandler struct {
	Board  board.BoardService
	Logger *zap.Logger
}

func NewBoardHandler(b board.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{Board: b, Logger: logger}
}

// GetSlotsHandler returns the current rendered board state.
func (h *BoardHandler) GetSlotsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Board.View())
}

// StreamSlotsHandler pushes the full board view over SSE on every change.
// This is the live channel browsers subscribe to; each event carries a
// complete snapshot, never a delta.
func (h *BoardHandler) StreamSlotsHandler(c *gin.Context) {
	ch, cancel := h.Board.Watch()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case view, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", view)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// ReserveSlotHandler books the slot for the authenticated resident's room.
func (h *BoardHandler) ReserveSlotHandler(c *gin.Context) {
	slotID := c.Param("id")
	room := c.GetString(middleware.CtxRoom)
	if room == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no room on session"})
		return
	}

	slot, err := h.Board.Reserve(c.Request.Context(), slotID, room)
	switch {
	case errors.Is(err, board.ErrAlreadyBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "slot already taken", "kind": "already-booked"})
		return
	case errors.Is(err, board.ErrReservationPending):
		c.JSON(http.StatusConflict, gin.H{"error": "reservation already in progress", "kind": "reservation-pending"})
		return
	case errors.Is(err, board.ErrUnknownSlot):
		c.JSON(http.StatusNotFound, gin.H{"error": "no such slot", "kind": "not-found"})
		return
	case err != nil:
		h.Logger.Error("Reservation failed", zap.String("slot", slotID), zap.String("room", room), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "reservation failed, please try again", "kind": "transport-error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Slot booked successfully",
		"slot":    slot,
	})
}
