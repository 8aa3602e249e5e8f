package app

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/internal/controller"
	"github.com/suxatcode/concentric-layout/layout"
)

const (
	MsgRun           = "run"
	MsgPin           = "pin"
	MsgUnpin         = "unpin"
	MsgUpdateForces  = "updateForces"
	MsgUpdateDataset = "updateDataset"
	MsgCancel        = "cancel"
	MsgSnapshot      = "snapshot"
	MsgDone          = "done"
	MsgError         = "error"

	maxMessageSize = 1 << 20
)

// Message is exchanged over the layout websocket. Clients send run, pin,
// unpin, updateForces, updateDataset and cancel; the server answers with
// snapshot, done and error.
type Message struct {
	Type  string    `json:"type"`
	Query *db.Query `json:"query,omitempty"`
	// Forces overrides single force parameters, see ForceConfig.WithOverrides
	Forces   json.RawMessage  `json:"forces,omitempty"`
	ID       string           `json:"id,omitempty"`
	X        float64          `json:"x,omitempty"`
	Y        float64          `json:"y,omitempty"`
	Snapshot *layout.Snapshot `json:"snapshot,omitempty"`
	// Iterations of a finished run
	Iterations int    `json:"iterations,omitempty"`
	Error      string `json:"error,omitempty"`
}

// stream is a single websocket connection driving one layout session.
type stream struct {
	server  *Server
	session *controller.Session
	conn    *websocket.Conn
	// gorilla connections support one concurrent writer
	writeMu sync.Mutex
	runs    sync.WaitGroup
	logger  zerolog.Logger
}

func (s *Server) layoutStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Error().Msgf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	st := &stream{
		server:  s,
		session: s.ctrl.NewSession(),
		conn:    conn,
		logger:  *log.Ctx(r.Context()),
	}
	ctx, cancel := context.WithCancel(st.logger.WithContext(context.Background()))
	defer func() {
		cancel()
		st.runs.Wait()
	}()
	for {
		msg := Message{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				st.logger.Warn().Msgf("websocket closed: %v", err)
			}
			return
		}
		if err := st.handle(ctx, msg); err != nil {
			st.logger.Warn().Msgf("%s: %v", msg.Type, err)
			if err := st.send(Message{Type: MsgError, Error: err.Error()}); err != nil {
				return
			}
		}
	}
}

func (st *stream) send(msg Message) error {
	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	st.conn.SetWriteDeadline(time.Now().Add(st.server.conf.HTTPTimeout))
	return st.conn.WriteJSON(msg)
}

func (st *stream) handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MsgRun:
		return st.run(ctx, msg)
	case MsgPin:
		st.session.Pin(msg.ID, msg.X, msg.Y)
	case MsgUnpin:
		st.session.Unpin(msg.ID)
	case MsgUpdateForces:
		if len(msg.Forces) == 0 {
			return errors.New("missing forces")
		}
		return st.session.OverrideForces(msg.Forces)
	case MsgUpdateDataset:
		if msg.Query == nil {
			return errors.New("missing query")
		}
		ds, err := st.server.ctrl.Dataset(ctx, *msg.Query)
		if err != nil {
			return err
		}
		return st.session.UpdateDataset(ds)
	case MsgCancel:
		st.session.Cancel()
	default:
		return errors.Errorf("unknown message type '%s'", msg.Type)
	}
	return nil
}

// run starts the layout in the background; snapshots are sent as they are
// produced, followed by done or error.
func (st *stream) run(ctx context.Context, msg Message) error {
	if st.session.Running() {
		return controller.ErrSessionRunning
	}
	q := db.Query{}
	if msg.Query != nil {
		q = *msg.Query
	}
	forces, err := st.server.forcesWith(msg.Forces)
	if err != nil {
		return err
	}
	st.runs.Add(1)
	go func() {
		defer st.runs.Done()
		stats, err := st.session.RunFromSource(ctx, st.server.ctrl, q, forces, func(snap layout.Snapshot) error {
			return st.send(Message{Type: MsgSnapshot, Snapshot: &snap})
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			st.send(Message{Type: MsgError, Error: err.Error()})
			return
		}
		st.send(Message{Type: MsgDone, Iterations: stats.Iterations})
	}()
	return nil
}
