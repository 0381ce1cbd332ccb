package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/ALfish152/Jeep-Route-Finder/internal/adapters/nats"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
)

// wsMessage is sent from client to server.
//
//	{"action":"plan","start":"Lawas","end":"SM City Batangas","hour":8,"day":1}
//	{"action":"subscribe"}   relay every computed plan summary
//	{"action":"unsubscribe"}
type wsMessage struct {
	Action        string           `json:"action"`
	ID            string           `json:"id,omitempty"` // echoed back on replies
	StartPoint    *domain.GeoPoint `json:"start_point,omitempty"`
	EndPoint      *domain.GeoPoint `json:"end_point,omitempty"`
	Start         string           `json:"start,omitempty"`
	End           string           `json:"end,omitempty"`
	StartLandmark string           `json:"start_landmark,omitempty"`
	Hour          *int             `json:"hour,omitempty"`
	Day           *int             `json:"day,omitempty"`
	Discount      bool             `json:"discount,omitempty"`
}

type wsReply struct {
	Type    string      `json:"type"` // plan | event | status | error
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

const wsPlanTimeout = 15 * time.Second

func (m wsMessage) query() (usecases.PlanQuery, error) {
	q := usecases.PlanQuery{
		Start:         m.StartPoint,
		End:           m.EndPoint,
		StartText:     m.Start,
		EndText:       m.End,
		StartLandmark: m.StartLandmark,
		Hour:          m.Hour,
		Discount:      m.Discount,
	}
	if m.Day != nil {
		d, err := weekday(*m.Day)
		if err != nil {
			return q, err
		}
		q.Weekday = &d
	}
	return q, nil
}

// WebSocketHandler returns a handler for interactive planning: clients send
// plan requests as they move the hour slider and get ranked plans back on
// the same socket. Subscribed clients also receive every plan summary
// published on NATS. nc may be nil, in which case subscribe is refused.
func WebSocketHandler(plans *usecases.PlanService, nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		var sub *nats.Subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(wsReply{Type: "error", Message: "invalid JSON"})
				continue
			}

			switch m.Action {
			case "plan":
				q, err := m.query()
				if err != nil {
					_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: err.Error()})
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), wsPlanTimeout)
				res, err := plans.Plan(ctx, q)
				cancel()
				if err != nil {
					_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: err.Error()})
					continue
				}
				_ = writeJSON(wsReply{Type: "plan", ID: m.ID, Payload: res})

			case "subscribe":
				if nc == nil {
					_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: "event relay not configured"})
					continue
				}
				if sub != nil {
					_ = writeJSON(wsReply{Type: "status", ID: m.ID, Message: "already subscribed"})
					continue
				}
				s, err := nc.Subscribe(natsadapter.SubjectPlanComputed, func(msg *nats.Msg) {
					_ = writeJSON(wsReply{Type: "event", Payload: json.RawMessage(msg.Data)})
				})
				if err != nil {
					_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: "subscribe failed: " + err.Error()})
					continue
				}
				sub = s
				_ = writeJSON(wsReply{Type: "status", ID: m.ID, Message: "subscribed"})

			case "unsubscribe":
				if sub == nil {
					_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: "not subscribed"})
					continue
				}
				_ = sub.Unsubscribe()
				sub = nil
				_ = writeJSON(wsReply{Type: "status", ID: m.ID, Message: "unsubscribed"})

			default:
				_ = writeJSON(wsReply{Type: "error", ID: m.ID, Message: "unknown action: " + m.Action})
			}
		}

		close(done)
		if sub != nil {
			_ = sub.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
