package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/live"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxMessageSz = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Message types sent by the client.
const (
	msgResize = "resize"
	msgScroll = "scroll"
	msgOpen   = "open"
	msgClose  = "close"
)

// clientMessage is one client event. Fields not used by Type are ignored.
type clientMessage struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Src    string  `json:"src"`
	VW     int     `json:"vw"`
	VH     int     `json:"vh"`
}

func (m clientMessage) viewport() gallery.Size {
	return gallery.Size{Width: m.VW, Height: m.VH}
}

// session is one websocket client driving its own live gallery.
type session struct {
	id      string
	conn    *websocket.Conn
	gallery *live.Gallery
	logger  *log.Logger

	// out holds at most one pending snapshot; a newer one replaces an
	// unsent one. Error frames queue in errs and are never replaced.
	out       chan []byte
	errs      chan []byte
	done      chan struct{}
	stopped   chan struct{} // closed when writeLoop returns
	closeOnce sync.Once
}

// handleLive upgrades to a websocket and runs a live gallery session until
// the client goes away or the server shuts down.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}

	id := uuid.NewString()
	logger := s.logger.With("session", id[:8])
	sess := &session{
		id:      id,
		conn:    conn,
		logger:  logger,
		out:     make(chan []byte, 1),
		errs:    make(chan []byte, 8),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	sess.gallery = live.New(s.prober, s.exif, s.cfg.LiveConfig(s.catalog), logger)
	sess.gallery.OnChange(func(snap live.Snapshot) { sess.send(snap) })

	go sess.writeLoop()
	s.addSession(sess)
	defer s.removeSession(sess)
	defer sess.close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger.Info("live session opened", "remote", r.RemoteAddr)

	refs, err := s.catalog.Refs(ctx)
	if err != nil {
		sess.sendError(err)
		return
	}
	sess.gallery.SetImages(ctx, refs)
	sess.readLoop(ctx)
	logger.Info("live session closed")
}

func (sess *session) readLoop(ctx context.Context) {
	sess.conn.SetReadLimit(maxMessageSz)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.logger.Warn("live session read", "err", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.sendError(errors.Wrap(errors.ErrCodeInvalidMessage, err, "malformed message"))
			continue
		}
		if err := sess.handle(ctx, msg); err != nil {
			sess.sendError(err)
		}
	}
}

// handle applies one client event to the gallery.
func (sess *session) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case msgResize:
		if msg.Width < 0 {
			return errors.New(errors.ErrCodeInvalidMessage, "width must not be negative: %v", msg.Width)
		}
		sess.gallery.Resize(msg.Width)
		if msg.VW > 0 && msg.VH > 0 {
			sess.gallery.ResizeLightbox(msg.viewport())
		}
	case msgScroll:
		sess.gallery.Scroll(msg.Top, msg.Height)
	case msgOpen:
		if msg.Src == "" {
			return errors.New(errors.ErrCodeInvalidMessage, "open needs a src")
		}
		if _, err := sess.gallery.Open(ctx, msg.Src, msg.viewport()); err != nil {
			return err
		}
	case msgClose:
		sess.gallery.CloseLightbox()
	default:
		return errors.New(errors.ErrCodeInvalidMessage, "unknown message type %q", msg.Type)
	}
	return nil
}

func (sess *session) send(snap live.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		sess.logger.Error("encode snapshot", "err", err)
		return
	}
	for {
		select {
		case <-sess.done:
			return
		case sess.out <- data:
			return
		default:
			select {
			case <-sess.out:
			default:
			}
		}
	}
}

func (sess *session) sendError(err error) {
	sess.logger.Debug("live session error", "err", err)
	data, _ := json.Marshal(newAPIError(err))
	select {
	case sess.errs <- data:
	case <-sess.done:
	default:
		sess.logger.Warn("dropping error frame, client is not reading")
	}
}

// writeLoop is the only writer of data frames. On a write failure it
// closes the connection, which ends readLoop and with it the session.
func (sess *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer close(sess.stopped)

	for {
		select {
		case <-sess.done:
			sess.flushErrors()
			return
		case data := <-sess.out:
			if !sess.write(data) {
				return
			}
		case data := <-sess.errs:
			if !sess.write(data) {
				return
			}
		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.conn.Close()
				return
			}
		}
	}
}

// flushErrors writes the error frames still queued when the session ends.
func (sess *session) flushErrors() {
	for {
		select {
		case data := <-sess.errs:
			if !sess.write(data) {
				return
			}
		default:
			return
		}
	}
}

func (sess *session) write(data []byte) bool {
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		sess.logger.Debug("live session write", "err", err)
		sess.conn.Close()
		return false
	}
	return true
}

// close stops the gallery, waits for queued error frames to be written and
// closes the connection. It is safe to call more than once and from any
// goroutine except writeLoop.
func (sess *session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		sess.gallery.Close()
		<-sess.stopped
		sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		sess.conn.Close()
	})
}

func (s *Server) addSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *Server) removeSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, sess.id)
}

func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessionsMu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}
