// Package handler serves the decoder over HTTP and WebSocket.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/psd-decoder/internal/codec"
	"github.com/rcarmo/psd-decoder/internal/config"
	"github.com/rcarmo/psd-decoder/internal/export"
	"github.com/rcarmo/psd-decoder/internal/logging"
	"github.com/rcarmo/psd-decoder/internal/protocol/decodemsg"
)

const (
	webSocketReadBufferSize  = 8192
	webSocketWriteBufferSize = 8192 * 2
)

var errTextMessage = errors.New("handler: text messages are not supported, send binary requests")

// Handler decodes request messages received over HTTP or WebSocket.
type Handler struct {
	compositor      *codec.Compositor
	maxPixels       int
	maxMessageBytes int64
	allowedOrigins  []string
	log             *logging.Logger
	upgrader        websocket.Upgrader
}

// New builds a handler from the decode and security sections of cfg.
func New(cfg *config.Config, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	var opts []codec.Option
	if cfg.Decode.ConcurrentChannels {
		opts = append(opts, codec.WithConcurrentChannels())
	}

	h := &Handler{
		compositor:      codec.NewCompositor(opts...),
		maxPixels:       cfg.Decode.MaxPixels,
		maxMessageBytes: int64(cfg.Decode.MaxMessageBytes),
		allowedOrigins:  cfg.Security.AllowedOrigins,
		log:             logger,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedOrigin(r.Header.Get("Origin"), h.allowedOrigins)
		},
	}

	return h
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/decode", h.Decode)
	mux.HandleFunc("/ws", h.WebSocket)
	mux.HandleFunc("/healthz", Healthz)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// imageOptions holds the optional ?format=&width= query parameters.
type imageOptions struct {
	format export.Format
	width  int
}

func parseImageOptions(r *http.Request) (*imageOptions, error) {
	q := r.URL.Query()
	if q.Get("format") == "" {
		return nil, nil
	}

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		return nil, err
	}

	width, err := strconv.Atoi(q.Get("width"))
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("%w: %q", export.ErrInvalidWidth, q.Get("width"))
	}

	return &imageOptions{format: format, width: width}, nil
}

// Decode handles POST /decode. The body is a single request message.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imgOpts, err := parseImageOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxMessageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return
	}

	req, err := decodemsg.ParseRequest(body)
	if err != nil {
		h.log.Debug("decode: malformed request from %s: %v", r.RemoteAddr, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.checkPixelLimit(req); err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	if imgOpts != nil && (req.PixelCount == 0 || int(req.PixelCount)%imgOpts.width != 0) {
		http.Error(w, fmt.Sprintf("%v: width %d, %d pixels", export.ErrInvalidWidth, imgOpts.width, req.PixelCount), http.StatusBadRequest)
		return
	}

	pixels, err := req.Decode(h.compositor)
	if err != nil {
		h.log.Warn("decode: %s request (%d pixels) failed: %v", req.Layout, req.PixelCount, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if imgOpts == nil {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(pixels)))
		_, _ = w.Write(pixels)
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, pixels, imgOpts.width, imgOpts.format); err != nil {
		if errors.Is(err, export.ErrTranslucentQOI) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("decode: encode %s: %v", imgOpts.format, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", imgOpts.format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) checkPixelLimit(req *decodemsg.Request) error {
	if int64(req.PixelCount) > int64(h.maxPixels) {
		return fmt.Errorf("%w: %d > %d", decodemsg.ErrPixelLimit, req.PixelCount, h.maxPixels)
	}
	return nil
}

// handleMessage turns one request message into one response message.
func (h *Handler) handleMessage(data []byte) *decodemsg.Response {
	req, err := decodemsg.ParseRequest(data)
	if err != nil {
		return decodemsg.NewResponse(nil, err)
	}

	if err := h.checkPixelLimit(req); err != nil {
		return decodemsg.NewResponse(nil, err)
	}

	return decodemsg.NewResponse(req.Decode(h.compositor))
}

// WebSocket handles GET /ws. Every binary message is decoded and answered
// with one binary response, in order.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade websocket: %v", err)
		return
	}

	defer func() {
		if err := wsConn.Close(); err != nil {
			h.log.Debug("close websocket: %v", err)
		}
	}()

	wsConn.SetReadLimit(h.maxMessageBytes)

	for {
		messageType, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("read websocket message: %v", err)
			}
			return
		}

		var resp *decodemsg.Response
		if messageType == websocket.BinaryMessage {
			resp = h.handleMessage(data)
		} else {
			resp = decodemsg.NewResponse(nil, errTextMessage)
		}

		if resp.Status != decodemsg.StatusOK {
			h.log.Debug("ws decode from %s: %s", r.RemoteAddr, resp.Message)
		}

		if err := wsConn.WriteMessage(websocket.BinaryMessage, resp.Serialize()); err != nil {
			h.log.Warn("write websocket message: %v", err)
			return
		}
	}
}

// isAllowedOrigin accepts requests without an Origin header (non-browser
// clients), any origin when no allow-list is configured, loopback origins,
// and origins matching an allow-list entry with or without its scheme.
func isAllowedOrigin(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	if isLoopbackHost(u.Hostname()) {
		return true
	}

	withScheme := u.Scheme + "://" + u.Host
	for _, entry := range allowed {
		candidate := strings.TrimSuffix(strings.TrimSpace(entry), "/")
		if candidate == "" {
			continue
		}
		if candidate == withScheme || candidate == u.Host {
			return true
		}
	}

	return false
}

func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
