package speech

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tkavin/mind-mirror/backend/internal/service/conversation"
)

type fakeVoiceResponder struct {
	reply conversation.Reply
}

func (f *fakeVoiceResponder) Respond(_ context.Context, _ string) (conversation.Reply, error) {
	return f.reply, nil
}

func dialVoiceLoop(t *testing.T, svc SpeechService, responder Responder) *websocket.Conn {
	t.Helper()

	state := newTestState(t)
	r := chi.NewRouter()
	New(svc, state).RegisterRoutes(r, responder)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/speech/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing voice loop: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessages(t *testing.T, conn *websocket.Conn, count int) []map[string]any {
	t.Helper()
	var out []map[string]any
	for len(out) < count {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("reading websocket message: %v", err)
		}
		out = append(out, msg.Data)
	}
	return out
}

func TestVoiceLoopTextExchange(t *testing.T) {
	responder := &fakeVoiceResponder{reply: conversation.Reply{
		Text: "I'm here for you.", Source: "primary", Emotion: "sad",
	}}
	svc := &fakeSpeechService{canSynthesize: true, audio: []byte("mp3"), format: "mp3"}
	conn := dialVoiceLoop(t, svc, responder)

	// connected greeting
	readMessages(t, conn, 1)

	payload, _ := json.Marshal(map[string]any{
		"type": "text",
		"data": map[string]string{"text": "I feel down"},
	})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("writing text message: %v", err)
	}

	messages := readMessages(t, conn, 2)
	reply := messages[0]
	if reply["type"] != "reply" || reply["text"] != "I'm here for you." {
		t.Fatalf("unexpected reply message: %v", reply)
	}
	if reply["emotion"] != "sad" {
		t.Fatalf("expected emotion in reply, got %v", reply)
	}

	tts := messages[1]
	if tts["type"] != "tts" || tts["audioData"] == "" {
		t.Fatalf("unexpected tts message: %v", tts)
	}
}

func TestVoiceLoopConfigDisablesTTS(t *testing.T) {
	responder := &fakeVoiceResponder{reply: conversation.Reply{Text: "hello", Source: "primary"}}
	svc := &fakeSpeechService{canSynthesize: true, audio: []byte("mp3"), format: "mp3"}
	conn := dialVoiceLoop(t, svc, responder)

	readMessages(t, conn, 1)

	configPayload, _ := json.Marshal(map[string]any{
		"type": "config",
		"data": map[string]bool{"ttsEnabled": false},
	})
	if err := conn.WriteMessage(websocket.TextMessage, configPayload); err != nil {
		t.Fatalf("writing config message: %v", err)
	}

	ack := readMessages(t, conn, 1)[0]
	if ack["type"] != "config" || ack["tts"] != false {
		t.Fatalf("unexpected config ack: %v", ack)
	}

	textPayload, _ := json.Marshal(map[string]any{
		"type": "text",
		"data": map[string]string{"text": "hi"},
	})
	if err := conn.WriteMessage(websocket.TextMessage, textPayload); err != nil {
		t.Fatalf("writing text message: %v", err)
	}

	reply := readMessages(t, conn, 1)[0]
	if reply["type"] != "reply" {
		t.Fatalf("expected reply without tts, got %v", reply)
	}
}

func TestVoiceLoopRejectsUnknownType(t *testing.T) {
	conn := dialVoiceLoop(t, &fakeSpeechService{}, &fakeVoiceResponder{})

	readMessages(t, conn, 1)

	payload, _ := json.Marshal(map[string]any{"type": "video"})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("writing message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading error message: %v", err)
	}
	if msg.Type != "error" || !strings.Contains(msg.Data["message"], "unsupported") {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
