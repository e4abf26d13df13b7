package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"laundrybook/middleware"
	"laundrybook/models"
	"laundrybook/services/board"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubBoard serves a fixed view and scripts Reserve outcomes.
type stubBoard struct {
	view       board.View
	reserveErr error
	reserved   []string
}

func (b *stubBoard) Start(context.Context) error { return nil }
func (b *stubBoard) Stop()                       {}
func (b *stubBoard) View() board.View            { return b.view }

func (b *stubBoard) Watch() (<-chan board.View, func()) {
	ch := make(chan board.View, 1)
	ch <- b.view
	close(ch)
	return ch, func() {}
}

func (b *stubBoard) Reserve(_ context.Context, slotID, room string) (models.Slot, error) {
	if b.reserveErr != nil {
		return models.Slot{}, b.reserveErr
	}
	b.reserved = append(b.reserved, room+"/"+slotID)
	return models.Slot{ID: slotID, Time: "08:00 AM", BookedBy: room}, nil
}

func boardRouter(b board.BoardService, room string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBoardHandler(b, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if room != "" {
			c.Set(middleware.CtxRoom, room)
		}
	})
	r.GET("/api/slots", h.GetSlotsHandler)
	r.POST("/api/slots/:id/reserve", h.ReserveSlotHandler)
	return r
}

func TestGetSlotsHandler(t *testing.T) {
	stub := &stubBoard{view: board.View{
		Slots: []board.SlotView{
			{Slot: models.Slot{ID: "s1", Time: "08:00 AM", Available: true}},
		},
		Total:     1,
		Available: 1,
	}}
	r := boardRouter(stub, "A-204")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var view board.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Slots, 1)
	assert.Equal(t, "s1", view.Slots[0].ID)
	assert.Equal(t, 1, view.Available)
	assert.False(t, view.Faulted)
}

func TestReserveSlotHandler(t *testing.T) {
	stub := &stubBoard{}
	r := boardRouter(stub, "A-204")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/slots/s1/reserve", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"A-204/s1"}, stub.reserved)
}

func TestReserveSlotHandlerNoRoomOnSession(t *testing.T) {
	r := boardRouter(&stubBoard{}, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/slots/s1/reserve", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReserveSlotHandlerErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{board.ErrAlreadyBooked, http.StatusConflict, "already-booked"},
		{board.ErrReservationPending, http.StatusConflict, "reservation-pending"},
		{board.ErrUnknownSlot, http.StatusNotFound, "not-found"},
		{context.DeadlineExceeded, http.StatusBadGateway, "transport-error"},
	}
	for _, tc := range cases {
		r := boardRouter(&stubBoard{reserveErr: tc.err}, "A-204")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/slots/s1/reserve", nil))
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.kind, body["kind"], "error %v", tc.err)
	}
}
