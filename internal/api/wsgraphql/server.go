// Package wsgraphql serves GraphQL subscriptions over the graphql-transport-ws
// WebSocket protocol.
package wsgraphql

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/metrics"
)

const writeWait = 10 * time.Second

// Executor runs one operation and streams its results. Queries and mutations
// yield a single result. *graphql.Schema satisfies it.
type Executor interface {
	Subscribe(ctx context.Context, queryString, operationName string, variables map[string]interface{}) (<-chan interface{}, error)
}

// Authenticator turns the authorization value of connection_init into a
// context carrying the caller.
type Authenticator interface {
	ContextWithToken(ctx context.Context, header string) (context.Context, error)
}

type Config struct {
	InitTimeout    time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	CheckOrigin    func(r *http.Request) bool
}

type Server struct {
	exec     Executor
	auth     Authenticator
	conf     Config
	upgrader websocket.Upgrader
}

func NewServer(exec Executor, auth Authenticator, conf Config) *Server {
	if conf.InitTimeout <= 0 {
		conf.InitTimeout = 10 * time.Second
	}
	if conf.PingPeriod <= 0 {
		conf.PingPeriod = 30 * time.Second
	}

	return &Server{
		exec: exec,
		auth: auth,
		conf: conf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{Protocol},
			CheckOrigin:     conf.CheckOrigin,
		},
	}
}

func IsUpgrade(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}

func (s *Server) Handle(ctx *gin.Context) {
	s.ServeHTTP(ctx.Writer, ctx.Request)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	if ws.Subprotocol() != Protocol {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseProtocolError, "unsupported subprotocol"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	c := newConnection(s, ws, context.WithoutCancel(r.Context()))
	c.run()
}
