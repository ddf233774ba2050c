// Package webui serves a browser frontend for a running session. Frames are
// pushed to every connected WebSocket as binary messages and key events
// come back as JSON text messages.
package webui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	emucore "github.com/user-none/gbbridge/api"
	"github.com/user-none/gbbridge/inputmap"
)

//go:embed static
var static embed.FS

var staticRoot = mustSub(static, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("webui: embedded assets: %v", err))
	}
	return sub
}

// socketQueue bounds the frames waiting on a slow client. Newer frames are
// dropped while it is full.
const socketQueue = 2

// Hello is the first text message sent on every connection.
type Hello struct {
	Title  string `json:"title,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// KeyEvent is a client input message. Exactly one of Button, Key or Code
// selects the button.
type KeyEvent struct {
	Button  string `json:"button,omitempty"`
	Key     string `json:"key,omitempty"`
	Code    int    `json:"code,omitempty"`
	Pressed bool   `json:"pressed"`
}

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the title sent in the Hello message.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.hello.Title = title
	}
}

// WithLogger sets the logger for connection errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server is the WebSocket frontend.
type Server struct {
	listenAddr string
	input      inputmap.ButtonSetter
	keys       *inputmap.Map
	hello      Hello
	logger     *log.Logger

	mux  *http.ServeMux
	http *http.Server

	socketsRw sync.RWMutex
	sockets   []*Socket
	closed    bool
	wg        sync.WaitGroup
}

// Socket is one connected client.
type Socket struct {
	s    *Server
	conn net.Conn
	wmu  sync.Mutex

	// write channel:
	q chan outbound
}

type outbound struct {
	op   ws.OpCode
	data []byte
}

// NewServer creates a frontend that forwards key events to input using
// keys for translation.
func NewServer(listenAddr string, input inputmap.ButtonSetter, keys *inputmap.Map, opts ...Option) *Server {
	s := &Server{
		listenAddr: listenAddr,
		input:      input,
		keys:       keys,
		hello: Hello{
			Width:  emucore.FrameWidth,
			Height: emucore.FrameHeight,
		},
		logger:  log.Default(),
		mux:     http.NewServeMux(),
		sockets: make([]*Socket, 0, 2),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.Handle("/ws", http.HandlerFunc(s.handleSocket))

	s.mux.Handle("/", http.FileServer(http.FS(staticRoot)))

	s.http = &http.Server{Addr: listenAddr, Handler: s.mux}
	return s
}

// Handler returns the HTTP handler for mounting elsewhere.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.listenAddr
}

// ListenAndServe blocks until Close is called or the listener fails.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleSocket(rw http.ResponseWriter, req *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(req, rw)
	if err != nil {
		s.logger.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	hello, err := json.Marshal(s.hello)
	if err != nil {
		conn.Close()
		return
	}

	k := newSocket(s, conn, hello)
	if !s.appendSocket(k) {
		conn.Close()
		return
	}

	go k.readHandler()
	go k.writeHandler()
}

// newSocket returns a socket whose queue already holds hello. The socket
// must be queued before it is visible to Publish so that hello is always
// the first message and never waits behind frames.
func newSocket(s *Server, conn net.Conn, hello []byte) *Socket {
	k := &Socket{
		s:    s,
		conn: conn,
		q:    make(chan outbound, socketQueue+1),
	}
	k.q <- outbound{op: ws.OpText, data: hello}
	return k
}

func (s *Server) appendSocket(k *Socket) bool {
	s.socketsRw.Lock()
	defer s.socketsRw.Unlock()
	if s.closed {
		return false
	}
	s.sockets = append(s.sockets, k)
	s.wg.Add(2)
	return true
}

// removeSocket also closes the socket's write channel. Publish holds the
// read lock while sending so the two never race.
func (s *Server) removeSocket(k *Socket) {
	s.socketsRw.Lock()
	defer s.socketsRw.Unlock()

	for i, sk := range s.sockets {
		if sk == k {
			s.sockets = append(s.sockets[:i], s.sockets[i+1:]...)
			close(k.q)
			break
		}
	}
}

// Clients returns the number of connected sockets.
func (s *Server) Clients() int {
	s.socketsRw.RLock()
	defer s.socketsRw.RUnlock()
	return len(s.sockets)
}

// Publish sends frame to every connected client. It never blocks; clients
// whose queue is full miss this frame. frame is copied.
func (s *Server) Publish(frame []byte) {
	s.socketsRw.RLock()
	defer s.socketsRw.RUnlock()
	if len(s.sockets) == 0 {
		return
	}

	data := make([]byte, len(frame))
	copy(data, frame)
	for _, k := range s.sockets {
		select {
		case k.q <- outbound{op: ws.OpBinary, data: data}:
		default:
		}
	}
}

// Close stops the HTTP listener, disconnects every client and waits for
// their handlers to exit. No key event is forwarded after Close returns.
func (s *Server) Close() error {
	err := s.http.Close()

	s.socketsRw.Lock()
	s.closed = true
	sockets := append([]*Socket(nil), s.sockets...)
	s.socketsRw.Unlock()

	for _, k := range sockets {
		k.conn.Close()
	}
	s.wg.Wait()
	return err
}

// Dispatch applies a client event. It reports false for events that
// name no known button.
func (s *Server) Dispatch(ev KeyEvent) bool {
	switch {
	case ev.Button != "":
		b, ok := emucore.ParseButton(ev.Button)
		if !ok {
			return false
		}
		s.input.SetButton(b, ev.Pressed)
		return true
	case ev.Key != "":
		b, ok := s.keys.LookupName(ev.Key)
		if !ok {
			return false
		}
		s.input.SetButton(b, ev.Pressed)
		return true
	case ev.Code != 0:
		return s.keys.Dispatch(s.input, inputmap.Key(ev.Code), ev.Pressed)
	}
	return false
}

// lockedWriter serializes control replies from the reader with frames from
// the writer.
type lockedWriter struct {
	k *Socket
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.k.wmu.Lock()
	defer w.k.wmu.Unlock()
	return w.k.conn.Write(p)
}

func (k *Socket) readHandler() {
	defer k.s.wg.Done()
	// the reader is in control of the lifetime of the socket:
	defer func() {
		_ = k.conn.Close()
		k.s.removeSocket(k)
	}()

	rw := struct {
		io.Reader
		io.Writer
	}{k.conn, lockedWriter{k}}

	for {
		msg, op, err := wsutil.ReadClientData(rw)
		if err != nil {
			if !isClosed(err) {
				k.s.logger.Printf("Failed to read websocket frame: %v", err)
			}
			return
		}
		if op != ws.OpText {
			continue
		}

		var ev KeyEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			k.s.logger.Printf("Failed to decode key event: %v", err)
			continue
		}
		k.s.Dispatch(ev)
	}
}

func (k *Socket) writeHandler() {
	defer k.s.wg.Done()

	w := lockedWriter{k}
	for m := range k.q {
		var err error
		if m.op == ws.OpText {
			err = wsutil.WriteServerText(w, m.data)
		} else {
			err = wsutil.WriteServerBinary(w, m.data)
		}
		if err != nil {
			if !isClosed(err) {
				k.s.logger.Printf("Failed to write websocket frame: %v", err)
			}
			// Unblock the reader; it owns teardown.
			k.conn.Close()
			for range k.q {
			}
			return
		}
	}
}

func isClosed(err error) bool {
	var closed wsutil.ClosedError
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.As(err, &closed)
}
