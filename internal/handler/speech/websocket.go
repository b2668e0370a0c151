package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tkavin/mind-mirror/backend/internal/service/conversation"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
)

// Responder runs one conversation exchange for the voice loop. Satisfied by
// *conversation.Orchestrator.
type Responder interface {
	Respond(ctx context.Context, userText string) (conversation.Reply, error)
}

// WebSocketHandler drives the hands-free voice loop: buffered audio in,
// transcript plus spoken reply out.
type WebSocketHandler struct {
	speechSvc SpeechService
	responder Responder
	state     *session.State
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler creates the websocket voice handler.
func NewWebSocketHandler(speechSvc SpeechService, responder Responder, state *session.State) *WebSocketHandler {
	return &WebSocketHandler{
		speechSvc: speechSvc,
		responder: responder,
		state:     state,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the websocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// AudioMessage carries one chunk of recorded audio.
type AudioMessage struct {
	AudioData []byte `json:"audioData"`
	Format    string `json:"format"`
	IsFinal   bool   `json:"isFinal"`
}

// TextMessage carries typed text through the voice channel.
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage adjusts voice-loop behavior mid-connection.
type ConfigMessage struct {
	TTSEnabled *bool `json:"ttsEnabled,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connectionState struct {
	ttsEnabled  bool
	audioFormat string
	buffer      bytes.Buffer
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] voice loop connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	state := &connectionState{ttsEnabled: h.state.TTSEnabled()}

	h.sendInfo(conn, map[string]any{
		"type":       "connected",
		"transcribe": h.speechSvc.CanTranscribe(),
		"synthesize": h.speechSvc.CanSynthesize(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			h.handleMessage(ctx, conn, state, &msg)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "audio":
		h.handleAudioMessage(ctx, conn, state, msg.Data)
	case "text":
		h.handleTextMessage(ctx, conn, state, msg.Data)
	case "config":
		h.handleConfigMessage(conn, state, msg.Data)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleAudioMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	if !h.speechSvc.CanTranscribe() {
		h.sendError(conn, "speech recognition is not configured")
		return
	}

	var audio AudioMessage
	if err := json.Unmarshal(raw, &audio); err != nil {
		h.sendError(conn, "invalid audio payload")
		return
	}

	if len(audio.AudioData) > 0 {
		state.buffer.Write(audio.AudioData)
	}
	if audio.Format != "" {
		state.audioFormat = audio.Format
	}

	if audio.IsFinal {
		h.processBufferedAudio(ctx, conn, state)
	}
}

func (h *WebSocketHandler) processBufferedAudio(ctx context.Context, conn *websocket.Conn, state *connectionState) {
	audioBytes := state.buffer.Bytes()
	state.buffer.Reset()

	if len(audioBytes) == 0 {
		return
	}

	format := state.audioFormat
	if format == "" {
		format = "wav"
	}

	transcript, err := h.speechSvc.Transcribe(ctx, audioBytes, format)
	if err != nil {
		h.sendError(conn, fmt.Sprintf("speech recognition failed: %v", err))
		return
	}

	h.sendInfo(conn, map[string]any{
		"type":       "transcript",
		"text":       transcript.Text,
		"language":   transcript.Language,
		"confidence": transcript.Confidence,
	})

	if transcript.Text == "" {
		return
	}

	h.processUserText(ctx, conn, state, transcript.Text)
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, "invalid text payload")
		return
	}
	if text.Text == "" {
		return
	}

	h.processUserText(ctx, conn, state, text.Text)
}

func (h *WebSocketHandler) processUserText(ctx context.Context, conn *websocket.Conn, state *connectionState, userText string) {
	reply, err := h.responder.Respond(ctx, userText)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.sendInfo(conn, map[string]any{
		"type":    "reply",
		"text":    reply.Text,
		"source":  reply.Source,
		"emotion": reply.Emotion,
	})

	if state.ttsEnabled && reply.Text != "" {
		h.sendTTS(ctx, conn, reply)
	}
}

func (h *WebSocketHandler) sendTTS(ctx context.Context, conn *websocket.Conn, reply conversation.Reply) {
	audio := reply.Audio
	format := reply.AudioFormat
	if len(audio) == 0 {
		var err error
		audio, format, err = h.speechSvc.Synthesize(ctx, reply.Text, reply.Emotion)
		if err != nil {
			log.Printf("[websocket] synthesis failed: %v", err)
			h.sendInfo(conn, map[string]any{
				"type":  "tts",
				"error": "synthesis failed",
			})
			return
		}
	}
	if len(audio) == 0 {
		return
	}

	h.sendInfo(conn, map[string]any{
		"type":      "tts",
		"audioData": base64.StdEncoding.EncodeToString(audio),
		"format":    format,
		"isFinal":   true,
	})
}

func (h *WebSocketHandler) handleConfigMessage(conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, "invalid config payload")
		return
	}

	if cfg.TTSEnabled != nil {
		state.ttsEnabled = *cfg.TTSEnabled
	}

	h.sendInfo(conn, map[string]any{
		"type": "config",
		"tts":  state.ttsEnabled,
	})
}

func (h *WebSocketHandler) sendInfo(conn *websocket.Conn, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop keeps the connection alive under the read deadline.
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
