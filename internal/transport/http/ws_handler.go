package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"emotion-quiz-service/internal/app"
	"emotion-quiz-service/internal/assets"
	"emotion-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type difficultyPayload struct {
	Tier domain.Tier `json:"tier"`
}

type randomModePayload struct {
	Enabled bool `json:"enabled"`
}

type subjectPayload struct {
	Subject string `json:"subject"`
}

type startTrialPayload struct {
	// ExposureMs of zero uses the server default.
	ExposureMs int64 `json:"exposureMs"`
}

type emotionPayload struct {
	Emotion domain.EmotionCode `json:"emotion"`
}

type loadFailurePayload struct {
	Asset domain.AssetID `json:"asset"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
// Several connections may share a session id; the session is closed when the last one leaves.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	catalogID := r.URL.Query().Get("catalogId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	opened, err := h.service.Open(ctx, sessionID, catalogID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	sessionID = opened.SessionID
	defer h.service.Release(ctx, sessionID)

	frames, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	send := make(chan any, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	framesDone := make(chan struct{})

	send <- outboundMessage[domain.Snapshot]{Type: "opened", Payload: opened}

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(framesDone)
		for {
			select {
			case frame, ok := <-frames:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[domain.Frame]{Type: "frame", Payload: frame}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(r, sessionID, inbound)
		if err != nil {
			reply = errorMessage(err)
		}
		if reply != nil && !enqueue(send, writerDone, reply) {
			break
		}
	}

	close(closeSignals)
	<-framesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer, or reports false once the writer has stopped.
func enqueue(send chan<- any, writerDone <-chan struct{}, msg any) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) (any, error) {
	ctx := r.Context()
	switch inbound.Type {
	case "setDifficulty":
		var p difficultyPayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		if err := h.service.SetDifficulty(ctx, sessionID, p.Tier); err != nil {
			return nil, err
		}
		return h.snapshot(r, sessionID)
	case "setRandomMode":
		var p randomModePayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		if err := h.service.SetRandomMode(ctx, sessionID, p.Enabled); err != nil {
			return nil, err
		}
		return h.snapshot(r, sessionID)
	case "selectSubject":
		var p subjectPayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		if err := h.service.SelectManualSubject(ctx, sessionID, p.Subject); err != nil {
			return nil, err
		}
		return h.snapshot(r, sessionID)
	case "startTrial":
		var p startTrialPayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		meta, err := h.service.StartTrial(ctx, sessionID, time.Duration(p.ExposureMs)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		return outboundMessage[domain.TrialMeta]{Type: "trialStarted", Payload: meta}, nil
	case "selectEmotion":
		var p emotionPayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		if err := h.service.SelectEmotion(ctx, sessionID, p.Emotion); err != nil {
			return nil, err
		}
		return h.snapshot(r, sessionID)
	case "submitAnswer":
		result, err := h.service.SubmitAnswer(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return outboundMessage[domain.SubmitResult]{Type: "result", Payload: result}, nil
	case "loadFailure":
		var p loadFailurePayload
		if err := decode(inbound, &p); err != nil {
			return nil, err
		}
		outcome, err := h.service.ReportLoadFailure(ctx, sessionID, p.Asset)
		if err != nil {
			return nil, err
		}
		return outboundMessage[assets.LoadOutcome]{Type: "loadOutcome", Payload: outcome}, nil
	case "snapshot":
		return h.snapshot(r, sessionID)
	default:
		return nil, errUnsupportedMessage
	}
}

func (h *WSHandler) snapshot(r *http.Request, sessionID string) (any, error) {
	snap, err := h.service.Snapshot(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	return outboundMessage[domain.Snapshot]{Type: "snapshot", Payload: snap}, nil
}

var (
	errUnsupportedMessage = errors.New("unsupported message type")
	errInvalidPayload     = errors.New("invalid payload")
)

func decode(inbound inboundMessage, v any) error {
	if len(inbound.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(inbound.Payload, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

func errorMessage(err error) outboundMessage[errorPayload] {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrCatalogNotFound):
		return "catalog_not_found"
	case errors.Is(err, domain.ErrInvalidCatalog):
		return "invalid_catalog"
	case errors.Is(err, domain.ErrUnknownTier):
		return "unknown_tier"
	case errors.Is(err, domain.ErrUnknownEmotion):
		return "unknown_emotion"
	case errors.Is(err, domain.ErrInvalidSubject):
		return "invalid_subject"
	case errors.Is(err, domain.ErrNoAnswerSelected):
		return "no_answer_selected"
	case errors.Is(err, domain.ErrNoTrialInProgress):
		return "no_trial_in_progress"
	case errors.Is(err, domain.ErrInvalidExposure):
		return "invalid_exposure"
	case errors.Is(err, domain.ErrUnknownAsset):
		return "unknown_asset"
	case errors.Is(err, errInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, errUnsupportedMessage):
		return "unsupported_message"
	default:
		return "internal"
	}
}
