package cmd

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/surface"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// maxBody caps uploaded configs and tap bodies.
	maxBody = 4 << 20
)

func newServeCommand(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve previews, taps and live action events over HTTP",
		Long: `Serve the configured group to desktop surfaces.

  GET  /render/{family}.{png|svg|txt}   render a family (?dark=1, ?scale=2)
  GET  /config                          the stored tree
  PUT  /config                          store a tree (YAML or JSON)
  POST /tap                             record a tap {"action":..., "payload":...}
  GET  /ws                              action events and reload notices
  GET  /metrics                         Prometheus metrics

Pending actions are drained on the updater schedule and pushed to every
websocket client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.Serve.Addr
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := host.NewUpdater(a.host, c.cfg.Group, c.cfg.Updater.Schedule, nil)
			if err != nil {
				return err
			}
			u.Start()
			defer u.Stop()
			stopFollow, err := follow(ctx, a, c.cfg.Group, c.cfg.Updater.Schedule)
			if err != nil {
				return err
			}
			defer stopFollow()

			srv := newServer(a, c.cfg.Group)
			hs := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			errc := make(chan error, 1)
			go func() { errc <- hs.ListenAndServe() }()
			log.Info().Str("addr", addr).Str("group", c.cfg.Group).Msg("serving")

			select {
			case err := <-errc:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
			}
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.closeClients()
			return hs.Shutdown(shutdown)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	return cmd
}

// server exposes one group over HTTP.
type server struct {
	app      *app
	group    string
	upgrader websocket.Upgrader
	plain    *lipgloss.Renderer

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newServer(a *app, group string) *server {
	return &server{
		app:   a,
		group: group,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Surfaces connect from local desktop shells, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		plain:   lipgloss.NewRenderer(io.Discard),
		clients: make(map[*wsClient]struct{}),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render/{file}", s.handleRender)
	mux.HandleFunc("GET /config", s.handleGetConfig)
	mux.HandleFunc("PUT /config", s.handlePutConfig)
	mux.HandleFunc("POST /tap", s.handleTap)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	name, ext, _ := strings.Cut(r.PathValue("file"), ".")
	family, ok := element.ParseFamily(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown family %q", name), http.StatusNotFound)
		return
	}
	format, err := formatOf(ext, "")
	if err != nil || ext == "" {
		http.Error(w, fmt.Sprintf("unknown format %q", ext), http.StatusNotFound)
		return
	}
	scale := 2.0
	if v := r.URL.Query().Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 8 {
			http.Error(w, "scale must be in (0, 8]", http.StatusBadRequest)
			return
		}
		scale = f
	}

	fr := newFrame(format, frameOptions{
		Scale:       scale,
		Transparent: truthy(r.URL.Query().Get("transparent")),
		Renderer:    s.plain,
	})
	sf := surface.New(s.app.store, s.group, fr.backend, surface.Options{
		Family: family,
		Dark:   truthy(r.URL.Query().Get("dark")),
		Images: s.app.resolver(),
	})
	if _, err := sf.Refresh(r.Context(), true); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	if err := fr.write(w); err != nil {
		log.Warn().Err(err).Str("family", family.String()).Msg("render response not written")
	}
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.host.GetConfig(r.Context(), s.group)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(snap.Raw) == 0 {
		http.Error(w, "no configuration", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", strconv.Quote(snap.Key()))
	w.Write(snap.Raw)
}

func (s *server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	raw, err := element.DecodeYAML(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	changed, err := s.app.host.SetConfig(r.Context(), s.group, raw, truthy(r.URL.Query().Get("skipReload")))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

type tapRequest struct {
	Action  string `json:"action"`
	Payload string `json:"payload"`
}

func (s *server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid tap: "+err.Error(), http.StatusBadRequest)
		return
	}
	toggled, err := s.tap(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrEmptyAction) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"toggled": toggled})
}

func (s *server) tap(ctx context.Context, req tapRequest) (bool, error) {
	return s.app.host.Tap(ctx, s.group, actions.NewEvent(req.Action, req.Payload))
}

// wsMessage is every frame exchanged on /ws.
type wsMessage struct {
	Type  string     `json:"type"`
	Group string     `json:"group,omitempty"`
	Event *eventJSON `json:"event,omitempty"`
	Nonce uint64     `json:"nonce,omitempty"`
	Hash  string     `json:"hash,omitempty"`
	// Action and Payload carry taps sent by the client.
	Action  string `json:"action,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// wsClient is a connected desktop surface. It registers with the host as a
// reload target and subscribes to dispatched actions.
type wsClient struct {
	id     string
	srv    *server
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func (c *wsClient) ID() string { return c.id }

// Reload tells the client to refetch; it carries the new nonce and hash so
// the client can skip a redundant fetch.
func (c *wsClient) Reload(ctx context.Context) error {
	snap, err := host.Load(ctx, c.srv.app.store, c.srv.group)
	if err != nil {
		return err
	}
	return c.send(wsMessage{Type: "reload", Group: c.srv.group, Nonce: snap.Nonce, Hash: host.Hash(snap.Raw)})
}

func (c *wsClient) send(m wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(m)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
	c.conn.Close()
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &wsClient{id: uuid.NewString(), srv: s, conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	unregister := s.app.host.Registry().Register(s.group, c)
	sub := s.app.host.Dispatcher().Subscribe(func(ev actions.Event) {
		e := toEventJSON(ev)
		if err := c.send(wsMessage{Type: "action", Group: s.group, Event: &e}); err != nil {
			log.Debug().Err(err).Str("surface", c.id).Msg("action not pushed")
		}
	})
	log.Info().Str("surface", c.id).Str("remote", r.RemoteAddr).Msg("surface connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		sub.Cancel()
		unregister()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
		log.Info().Str("surface", c.id).Msg("surface disconnected")
	}()

	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxBody)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	if err := c.Reload(r.Context()); err != nil {
		log.Debug().Err(err).Str("surface", c.id).Msg("initial reload not sent")
	}
	for {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("surface", c.id).Msg("websocket read")
			}
			return
		}
		switch m.Type {
		case "tap":
			if _, err := s.tap(r.Context(), tapRequest{Action: m.Action, Payload: m.Payload}); err != nil {
				c.send(wsMessage{Type: "error", Action: m.Action, Payload: err.Error()})
			}
		case "ping":
			c.send(wsMessage{Type: "pong"})
		default:
			log.Debug().Str("surface", c.id).Str("type", m.Type).Msg("unknown websocket message")
		}
	}
}

func (s *server) closeClients() {
	s.mu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
