package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/tradejournal/pricing"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type priceResponse struct {
	Latest  *pricing.Quote  `json:"latest"`
	History []pricing.Quote `json:"history"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	resp := priceResponse{History: s.feed.History()}
	q, err := s.feed.Latest()
	switch {
	case err == nil:
		resp.Latest = &q
	case !errors.Is(err, pricing.ErrNoQuote):
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// streamMessage is one websocket frame. The first frame carries the
// history; later frames carry one quote each.
type streamMessage struct {
	Type    string          `json:"type"` // "history" or "quote"
	Quote   *pricing.Quote  `json:"quote,omitempty"`
	History []pricing.Quote `json:"history,omitempty"`
}

func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", "error", err)
		return
	}

	quotes, unsubscribe := s.feed.Subscribe(16)
	if s.metrics != nil {
		s.metrics.WSClients.Inc()
	}
	defer func() {
		unsubscribe()
		conn.Close()
		if s.metrics != nil {
			s.metrics.WSClients.Dec()
		}
		s.log.Debug("price stream closed", "remote", r.RemoteAddr)
	}()

	// reader: only pongs and close frames are expected
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(streamMessage{Type: "history", History: s.feed.History()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case q, ok := <-quotes:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(streamMessage{Type: "quote", Quote: &q}); err != nil {
				return
			}
			if s.metrics != nil {
				s.metrics.QuotesTotal.Inc()
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
