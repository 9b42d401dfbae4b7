package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"threadline/internal/middleware"
	"threadline/internal/models"
	"threadline/internal/notifications"
	"threadline/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Action names accepted on the WebSocket endpoint. Every action carries the
// same body shape as the corresponding HTTP endpoint, with path parameters
// folded into the data object.
const (
	actionRegister   = "register"
	actionLogin      = "login"
	actionGetPosts   = "get_posts"
	actionCreatePost = "create_post"
	actionEditPost   = "edit_post"
)

// wsEnvelope is one inbound WebSocket message: a tagged request variant.
type wsEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type wsError struct {
	Error string `json:"error"`
}

// WebsocketHandler upgrades the connection, registers it with the hub and
// runs the receive loop until the client disconnects.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		client, err := s.hub.Register(conn)
		if err != nil {
			if msg, merr := json.Marshal(wsError{Error: err.Error()}); merr == nil {
				_ = conn.WriteMessage(websocket.TextMessage, msg)
			}
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			s.dispatch(context.Background(), c, message)
		}

		go client.WritePump()

		// ReadPump blocks until disconnect and unregisters the client.
		client.ReadPump()
	})
}

// dispatch decodes one message, runs the matching handler synchronously and
// replies on the same connection. Failures of any kind - malformed JSON,
// missing fields, or a handler error - collapse into a single
// {"error": ...} message and the connection stays open for further
// messages; only client disconnect ends the loop.
func (s *Server) dispatch(ctx context.Context, client *notifications.Client, message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		observability.WebSocketActionsTotal.WithLabelValues("malformed", "error").Inc()
		s.sendError(client, models.NewMalformedRequestError("invalid JSON message"))
		return
	}

	var payload any
	var err error

	switch env.Action {
	case actionRegister:
		var req registerRequest
		if err = decodeData(env.Data, &req); err == nil {
			payload, err = s.register(ctx, req)
		}
	case actionLogin:
		var req loginRequest
		if err = decodeData(env.Data, &req); err == nil {
			payload, err = s.login(ctx, req)
		}
	case actionGetPosts:
		var req listPostsRequest
		if err = decodeData(env.Data, &req); err == nil {
			payload, err = s.listPosts(ctx, req)
		}
	case actionCreatePost:
		var req createPostRequest
		if err = decodeData(env.Data, &req); err == nil {
			payload, err = s.createPost(ctx, req)
		}
	case actionEditPost:
		var req editPostRequest
		if err = decodeData(env.Data, &req); err == nil {
			payload, err = s.editPost(ctx, req)
		}
	default:
		// Dropping unrecognized actions on the floor hides client bugs;
		// answer with an explicit error instead.
		err = models.NewMalformedRequestError("unknown action: " + env.Action)
	}

	action := env.Action
	if action == "" {
		action = "missing"
	}

	if err != nil {
		observability.WebSocketActionsTotal.WithLabelValues(action, "error").Inc()
		s.sendError(client, err)
		return
	}

	response, merr := json.Marshal(payload)
	if merr != nil {
		observability.WebSocketActionsTotal.WithLabelValues(action, "error").Inc()
		s.sendError(client, models.NewInternalError(merr))
		return
	}

	observability.WebSocketActionsTotal.WithLabelValues(action, "ok").Inc()
	client.TrySend(response)
}

// sendError writes the wire error shape to the caller. Every error kind,
// including ones that would map to 403 or 404 over HTTP, uses the same
// shape here.
func (s *Server) sendError(client *notifications.Client, err error) {
	message := err.Error()
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	response, merr := json.Marshal(wsError{Error: message})
	if merr != nil {
		middleware.Logger.Error("failed to marshal websocket error",
			slog.String("error", merr.Error()))
		return
	}
	client.TrySend(response)
}

// decodeData unmarshals the envelope payload into the request variant.
func decodeData(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return models.NewMalformedRequestError("data is required")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return models.NewMalformedRequestError("invalid data payload")
	}
	return nil
}
