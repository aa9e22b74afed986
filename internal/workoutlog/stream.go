package workoutlog

import (
	"errors"
	"net/http"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var statusUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin is enforced by the CORS middleware before the upgrade
		return true
	},
}

// HandleStream upgrades the connection and pushes one status update per
// second while the workout is in progress. The connection is closed when
// the workout finishes, is cancelled, or the client goes away.
func (handler *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	updates, cancel, err := handler.service.Subscribe(userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveWorkout) {
			http.Error(w, "no active workout", http.StatusNotFound)
			return
		}
		log.Errorf("workout stream, subscribe [user %s]: %s", userID, err)
		http.Error(w, "workout stream failed", http.StatusInternalServerError)
		return
	}

	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Errorf("workout stream, upgrade [user %s]: %s", userID, err)
		return
	}

	log.Debugf("workout stream opened [user %s]", userID)

	// the read pump exists only to notice a client-side close
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		cancel()
		if err := conn.Close(); err != nil {
			log.Debugf("workout stream, close conn [user %s]: %s", userID, err)
		}
		log.Debugf("workout stream closed [user %s]", userID)
	}()

	for update := range updates {
		if err := conn.WriteJSON(update); err != nil {
			log.Debugf("workout stream, write [user %s]: %s", userID, err)
			return
		}
	}

	// updates channel closed, the workout ended
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "workout ended")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		log.Debugf("workout stream, close msg [user %s]: %s", userID, err)
	}
}
