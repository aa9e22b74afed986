package workoutlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/middleware"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The stream endpoint runs behind the request metrics middleware, whose
// response writer wrapper must support hijacking for the upgrade to work.
func TestHandler_HandleStream(t *testing.T) {
	deps := newTestService(t)
	ctx := context.Background()

	_, err := deps.service.Start(ctx, "user-1", deps.adHocRef)
	require.NoError(t, err)

	handler := NewHandler(deps.service)
	withUser := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleStream(w, r.WithContext(auth.ContextWithUserID(r.Context(), "user-1")))
	})

	server := httptest.NewServer(middleware.RequestMetrics(deps.metricsMgr)(withUser))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	deps.service.broadcast("user-1")

	var update StatusUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, StateInProgress, update.State)
	assert.Equal(t, "Peito Extra", update.WorkoutName)

	// cancelling the workout closes the subscriber channel and the
	// handler answers with a normal close frame
	require.NoError(t, deps.service.Cancel("user-1"))

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "workout ended", closeErr.Text)
}

func TestHandler_HandleStream_noActiveWorkout(t *testing.T) {
	deps := newTestService(t)

	handler := NewHandler(deps.service)
	req := httptest.NewRequest(http.MethodGet, "/workout/stream", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user-1"))
	recorder := httptest.NewRecorder()

	handler.HandleStream(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
