package voice

import (
	"context"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// The Live API is a persistent WebSocket: one setup exchange, then
// realtime media both ways until either side closes.
const (
	defaultLiveHost = "generativelanguage.googleapis.com"
	livePath        = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	inputMIMEType = "audio/pcm;rate=16000"
)

// LiveConfig parameterizes a Live session at open time.
type LiveConfig struct {
	Host    string // empty picks the public endpoint
	APIKey  string
	Model   string
	Voice   string
	Persona string
}

// ServerEvent is one inbound message, already reduced to what the session
// consumes.
type ServerEvent struct {
	Audio        string // base64 PCM at 24 kHz, empty when none
	Interrupted  bool
	TurnComplete bool
}

// --- wire shapes -----------------------------------------------------------

type liveClientMessage struct {
	Setup         *liveSetup     `json:"setup,omitempty"`
	RealtimeInput *realtimeInput `json:"realtimeInput,omitempty"`
}

type liveSetup struct {
	Model             string            `json:"model"`
	GenerationConfig  *liveGenConfig    `json:"generationConfig,omitempty"`
	SystemInstruction *liveContent      `json:"systemInstruction,omitempty"`
}

type liveGenConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoice `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type liveContent struct {
	Parts []livePart `json:"parts"`
}

type livePart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *liveBlob `json:"inlineData,omitempty"`
}

type liveBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInput struct {
	MediaChunks []liveBlob `json:"mediaChunks"`
}

type liveServerMessage struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		ModelTurn    *liveContent `json:"modelTurn"`
		Interrupted  bool         `json:"interrupted"`
		TurnComplete bool         `json:"turnComplete"`
	} `json:"serverContent"`
}

// --- connection ------------------------------------------------------------

// LiveConn is a live WebSocket to the voice model. It satisfies Transport.
type LiveConn struct {
	ws  *websocket.Conn
	log zerolog.Logger
}

// DialLive opens the streaming connection, sends the setup message and
// waits for the remote acknowledgement.
func DialLive(ctx context.Context, cfg LiveConfig, log zerolog.Logger) (*LiveConn, error) {
	host := cfg.Host
	if host == "" {
		host = defaultLiveHost
	}
	url := fmt.Sprintf("wss://%s%s?key=%s", host, livePath, cfg.APIKey)

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial live endpoint: %w", err)
	}

	setup := liveClientMessage{Setup: &liveSetup{
		Model: "models/" + cfg.Model,
		GenerationConfig: &liveGenConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: &voiceConfig{
					PrebuiltVoiceConfig: &prebuiltVoice{VoiceName: cfg.Voice},
				},
			},
		},
		SystemInstruction: &liveContent{Parts: []livePart{{Text: cfg.Persona}}},
	}}
	if err := ws.WriteJSON(setup); err != nil {
		ws.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	// The first server message acknowledges the setup.
	var ack liveServerMessage
	if err := ws.ReadJSON(&ack); err != nil {
		ws.Close()
		return nil, fmt.Errorf("await setup ack: %w", err)
	}
	if ack.SetupComplete == nil {
		ws.Close()
		return nil, fmt.Errorf("unexpected first message, want setupComplete")
	}

	return &LiveConn{ws: ws, log: log.With().Str("component", "live").Logger()}, nil
}

// SendAudio ships one transport-encoded upstream frame. Only the upload
// pump writes, so no write lock is needed.
func (c *LiveConn) SendAudio(data string) error {
	msg := liveClientMessage{RealtimeInput: &realtimeInput{
		MediaChunks: []liveBlob{{MIMEType: inputMIMEType, Data: data}},
	}}
	return c.ws.WriteJSON(msg)
}

// Read blocks for the next meaningful server event. A clean remote close
// comes back as io.EOF.
func (c *LiveConn) Read() (ServerEvent, error) {
	for {
		var msg liveServerMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ServerEvent{}, io.EOF
			}
			return ServerEvent{}, err
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}
		ev := ServerEvent{Interrupted: sc.Interrupted, TurnComplete: sc.TurnComplete}
		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData != nil && p.InlineData.Data != "" {
					ev.Audio = p.InlineData.Data
					break
				}
			}
		}
		if ev.Audio == "" && !ev.Interrupted && !ev.TurnComplete {
			continue
		}
		return ev, nil
	}
}

func (c *LiveConn) Close() error {
	return c.ws.Close()
}
