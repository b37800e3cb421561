package wsgraphql

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/metrics"
)

type operation struct {
	cancel context.CancelFunc
}

type connection struct {
	server *Server
	ws     *websocket.Conn
	send   chan message
	done   chan struct{}

	// ctx carries the authenticated caller once the connection is acknowledged.
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	initReceived bool
	acked        bool
	subs         map[string]*operation

	closeOnce sync.Once
}

func newConnection(s *Server, ws *websocket.Conn, base context.Context) *connection {
	ctx, cancel := context.WithCancel(base)

	return &connection{
		server: s,
		ws:     ws,
		send:   make(chan message, 16),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]*operation),
	}
}

func (c *connection) run() {
	initTimer := time.AfterFunc(c.server.conf.InitTimeout, func() {
		c.mu.Lock()
		acked := c.acked
		c.mu.Unlock()

		if !acked {
			c.closeWith(CloseInitTimeout, "Connection initialisation timeout")
		}
	})
	defer initTimer.Stop()

	go c.writePump()
	c.readPump()
}

func (c *connection) readPump() {
	defer c.closeWith(websocket.CloseNormalClosure, "")

	pongWait := c.server.conf.PingPeriod * 2
	if c.server.conf.MaxMessageSize > 0 {
		c.ws.SetReadLimit(c.server.conf.MaxMessageSize)
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				zap.L().Debug("websocket closed", zap.Error(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var msg message
		if err = json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.closeWith(CloseInvalidMessage, "Invalid message received")
			return
		}

		if !c.handle(msg) {
			return
		}
	}
}

// handle processes one client message and reports whether the connection stays open.
func (c *connection) handle(msg message) bool {
	switch msg.Type {
	case msgConnectionInit:
		return c.handleInit(msg)

	case msgPing:
		c.write(message{Type: msgPong})
		return true

	case msgPong:
		return true

	case msgSubscribe:
		return c.handleSubscribe(msg)

	case msgComplete:
		c.stop(msg.ID)
		return true

	default:
		c.closeWith(CloseInvalidMessage, "Invalid message received")
		return false
	}
}

func (c *connection) handleInit(msg message) bool {
	c.mu.Lock()
	if c.initReceived {
		c.mu.Unlock()
		c.closeWith(CloseTooManyInits, "Too many initialisation requests")
		return false
	}
	c.initReceived = true
	c.mu.Unlock()

	ctx, err := c.authenticate(msg.Payload)
	if err != nil {
		c.closeWith(CloseInvalidMessage, "Invalid connection_init payload")
		return false
	}

	c.mu.Lock()
	c.ctx = ctx
	c.acked = true
	c.mu.Unlock()

	c.write(message{Type: msgConnectionAck})

	return true
}

// authenticate reads the optional authorization entry of the init payload.
// A connection without one, or with a token that does not verify, stays
// anonymous. Only a payload that is not an object is an error.
func (c *connection) authenticate(payload json.RawMessage) (context.Context, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return c.ctx, nil
	}

	var params map[string]interface{}
	if err := json.Unmarshal(payload, &params); err != nil {
		return nil, err
	}

	var header string
	for key, value := range params {
		if s, ok := value.(string); ok && strings.EqualFold(key, "authorization") {
			header = s
			break
		}
	}
	if header == "" || c.server.auth == nil {
		return c.ctx, nil
	}

	ctx, err := c.server.auth.ContextWithToken(c.ctx, header)
	if err != nil {
		zap.L().Debug("websocket token rejected, continuing anonymously", zap.Error(err))
		return c.ctx, nil
	}

	return ctx, nil
}

func (c *connection) handleSubscribe(msg message) bool {
	c.mu.Lock()
	acked := c.acked
	c.mu.Unlock()
	if !acked {
		c.closeWith(CloseUnauthorized, "Unauthorized")
		return false
	}

	var payload subscribePayload
	if msg.ID == "" || json.Unmarshal(msg.Payload, &payload) != nil || payload.Query == "" {
		c.closeWith(CloseInvalidMessage, "Invalid message received")
		return false
	}

	c.mu.Lock()
	if _, exists := c.subs[msg.ID]; exists {
		c.mu.Unlock()
		c.closeWith(CloseSubscriberInUse, "Subscriber for "+msg.ID+" already exists")
		return false
	}
	ctx, cancel := context.WithCancel(c.ctx)
	op := &operation{cancel: cancel}
	c.subs[msg.ID] = op
	c.mu.Unlock()

	results, err := c.server.exec.Subscribe(ctx, payload.Query, payload.OperationName, payload.Variables)
	if err != nil {
		c.finish(msg.ID, op)
		c.writeErrors(msg.ID, []map[string]string{{"message": err.Error()}})
		return true
	}

	go c.forward(ctx, msg.ID, op, results)

	return true
}

// forward relays results of one operation until it ends or is stopped.
func (c *connection) forward(ctx context.Context, id string, op *operation, results <-chan interface{}) {
	defer c.finish(id, op)

	for {
		select {
		case <-ctx.Done():
			return

		case r, ok := <-results:
			if !ok {
				if ctx.Err() == nil {
					c.write(message{ID: id, Type: msgComplete})
				}
				return
			}

			resp, isResponse := r.(*graphql.Response)
			if !isResponse {
				continue
			}
			metrics.GraphQLRequests.WithLabelValues("ws", metrics.Outcome(len(resp.Errors) > 0)).Inc()

			// A result without data is a request error and ends the operation.
			if len(resp.Data) == 0 && len(resp.Errors) > 0 {
				c.writeErrors(id, resp.Errors)
				return
			}

			payload, err := json.Marshal(resp)
			if err != nil {
				zap.L().Error("failed to encode subscription result", zap.String("id", id), zap.Error(err))
				continue
			}
			c.write(message{ID: id, Type: msgNext, Payload: payload})
		}
	}
}

func (c *connection) writeErrors(id string, errs interface{}) {
	payload, err := json.Marshal(errs)
	if err != nil {
		zap.L().Error("failed to encode errors", zap.String("id", id), zap.Error(err))
		return
	}

	c.write(message{ID: id, Type: msgError, Payload: payload})
}

// stop ends the operation id on client request. The id may be reused right away.
func (c *connection) stop(id string) {
	c.mu.Lock()
	op, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()

	if ok {
		op.cancel()
	}
}

func (c *connection) finish(id string, op *operation) {
	c.mu.Lock()
	if c.subs[id] == op {
		delete(c.subs, id)
	}
	c.mu.Unlock()

	op.cancel()
}

func (c *connection) write(msg message) {
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(c.server.conf.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			data, err := json.Marshal(msg)
			if err != nil {
				zap.L().Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
				continue
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err = c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}

// closeWith stops every operation, sends a close frame with code and drops
// the connection. Only the first call has an effect.
func (c *connection) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)

		if code != websocket.CloseAbnormalClosure {
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason),
				time.Now().Add(writeWait))
		}
		_ = c.ws.Close()
	})
}
