package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/transcript"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsReadLimit = 64 * 1024
)

const errBusyText = "a response is still being generated; your message was not sent"

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	store := transcript.New(s.greeting)
	ctrl := session.NewController(store, s.completer, session.WithLogger(s.logger))
	feed := transcript.NewFeed(store)
	defer feed.Close()

	s.logger.Printf("web: session %s connected from %s", id, r.RemoteAddr)
	defer s.logger.Printf("web: session %s closed", id)

	conn.SetReadLimit(wsReadLimit)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		s.logger.Printf("web: session %s set read deadline failed: %v", id, err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// errs carries the text of the error shown with the next frames; "" clears it.
	errs := make(chan string, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		var last transcript.State
		var errText string
		write := func() error {
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return err
			}
			return conn.WriteJSON(newSnapshotFrame(id, last, errText, s.policy))
		}

		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-feed.C():
				if !ok {
					return
				}
				last = st
				if err := write(); err != nil {
					return
				}
			case e := <-errs:
				errText = e
				// the failing Submit has already published its final state
				select {
				case st, ok := <-feed.C():
					if ok {
						last = st
					}
				default:
				}
				if err := write(); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in inboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "input":
			store.SetInput(in.Text)
		case "submit":
			text := in.Text
			if strings.TrimSpace(text) == "" {
				text = store.Snapshot().Input
			}
			go s.submit(ctx, id, ctrl, text, errs)
		default:
			pushError(errs, "unknown frame type "+in.Type)
		}
	}
}

// submit runs one request and reports its failure to the page
func (s *Server) submit(ctx context.Context, id string, ctrl *session.Controller, text string, errs chan<- string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if ctrl.Store().Snapshot().Busy {
		s.rejectBusy(ctrl, text, errs)
		return
	}
	pushError(errs, "")

	err := ctrl.Submit(ctx, text)
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, session.ErrEmptyInput):
		return
	case errors.Is(err, session.ErrBusy):
		s.rejectBusy(ctrl, text, errs)
		return
	}

	s.logger.Printf("web: session %s: %v", id, err)
	msg := err.Error()
	if hint := apierrors.Hint(err); hint != "" {
		msg += " (" + hint + ")"
	}
	pushError(errs, msg)
}

// rejectBusy hands text back as the unsent input, since the page has
// already cleared its textarea.
func (s *Server) rejectBusy(ctrl *session.Controller, text string, errs chan<- string) {
	store := ctrl.Store()
	if store.Snapshot().Input == "" {
		store.SetInput(text)
	}
	pushError(errs, errBusyText)
}

func pushError(errs chan<- string, text string) {
	select {
	case errs <- text:
	default:
	}
}
