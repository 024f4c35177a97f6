// Package ws implements the real-time messaging and presence engine: the
// connection registry, the message router, and the presence notifier behind
// the /ws endpoint.
//
// Known limitation: clientMsgId is stored and echoed for reconciliation but
// not deduplicated, so a client retry after a dropped acknowledgement
// creates a duplicate row.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gossip/internal/security"
)

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	// browsers cannot set Authorization on the upgrade request
	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	return ""
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
//
// The upgrade is authenticated via bearer token; the session is registered
// as online only when the client sends joinroom. Inbound events are
// dispatched in arrival order, one at a time per connection, so messages
// from the same sending session are never reordered. No handler failure is
// fatal: the loop keeps serving remaining events until the transport drops.
func MakeHandler(
	router *Router,
	tokens *security.TokenService,
	allowedOrigins []string,
	log *zap.SugaredLogger,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin:  checkOrigin,
		Subprotocols: []string{"bearer"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		authUserID, err := tokens.ParseUserID(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		sess := newSession(conn)
		log.Debugw("session connected", "session_id", sess.ID(), "user_id", authUserID)

		ctx := r.Context()
		defer func() {
			// the request context is done once the handler unwinds
			router.Disconnect(context.Background(), sess)
			_ = conn.Close()
			log.Debugw("session disconnected", "session_id", sess.ID())
		}()

		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			dispatch(ctx, router, sess, authUserID, ev, log)
		}
	}
}

func dispatch(ctx context.Context, router *Router, sess Session, authUserID int64, ev Event, log *zap.SugaredLogger) {
	switch ev.Event {
	case EventJoinRoom:
		var p JoinRoomPayload
		if !decode(sess, ev.Data, &p, log) {
			return
		}
		if p.UserID != authUserID {
			_ = writeEvent(sess, EventError, ErrorEvent{Message: "joinroom user does not match token"})
			return
		}
		_ = router.JoinRoom(ctx, sess, p)

	case EventMessage:
		var p DirectMessagePayload
		if !decode(sess, ev.Data, &p, log) {
			return
		}
		router.Direct(ctx, sess, p)

	case EventMarkRead:
		var p MarkReadPayload
		if !decode(sess, ev.Data, &p, log) {
			return
		}
		router.MarkRead(ctx, p)

	case EventJoinGroup:
		var p JoinGroupPayload
		if !decode(sess, ev.Data, &p, log) {
			return
		}
		router.JoinGroup(ctx, sess, p)

	case EventGroupMessage:
		var p GroupMessagePayload
		if !decode(sess, ev.Data, &p, log) {
			return
		}
		router.Group(ctx, sess, p)

	default:
		log.Debugw("unknown event", "event", ev.Event, "session_id", sess.ID())
	}
}

func decode(sess Session, raw json.RawMessage, v any, log *zap.SugaredLogger) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Debugw("malformed event payload", "session_id", sess.ID(), "err", err)
		_ = writeEvent(sess, EventError, ErrorEvent{Message: "malformed event payload"})
		return false
	}
	return true
}
