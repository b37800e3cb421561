package wsgraphql

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

// fakeExecutor streams the values pushed on feed and records the caller of
// each operation.
type fakeExecutor struct {
	feed    chan string
	callers chan string
}

func (e *fakeExecutor) Subscribe(ctx context.Context, query, _ string, _ map[string]interface{}) (<-chan interface{}, error) {
	caller, _ := ctx.Value(ctxKey{}).(string)
	e.callers <- caller

	out := make(chan interface{})
	go func() {
		defer close(out)

		if strings.Contains(query, "broken") {
			out <- &graphql.Response{Errors: []*gqlerrors.QueryError{gqlerrors.Errorf("syntax error")}}
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-e.feed:
				if !ok {
					return
				}
				out <- &graphql.Response{Data: json.RawMessage(`{"value":"` + v + `"}`)}
			}
		}
	}()

	return out, nil
}

type fakeAuth struct{}

func (fakeAuth) ContextWithToken(ctx context.Context, header string) (context.Context, error) {
	if header != "Bearer good" {
		return ctx, errors.New("bad token")
	}

	return context.WithValue(ctx, ctxKey{}, "alice"), nil
}

func newTestServer(t *testing.T, initTimeout time.Duration) (*fakeExecutor, string) {
	t.Helper()

	exec := &fakeExecutor{feed: make(chan string), callers: make(chan string, 4)}
	srv := NewServer(exec, fakeAuth{}, Config{
		InitTimeout:    initTimeout,
		PingPeriod:     time.Second,
		MaxMessageSize: 1 << 16,
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return exec, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{Subprotocols: []string{Protocol}}
	conn, _, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func receive(t *testing.T, conn *websocket.Conn) message {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg message
	require.NoError(t, json.Unmarshal(data, &msg))

	return msg
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}

		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, code, closeErr.Code)
		return
	}
}

func TestServer_SubscribeFlow(t *testing.T) {
	exec, url := newTestServer(t, time.Second)
	conn := dial(t, url)

	send(t, conn, `{"type":"connection_init","payload":{"Authorization":"Bearer good"}}`)
	assert.Equal(t, msgConnectionAck, receive(t, conn).Type)

	send(t, conn, `{"type":"ping"}`)
	assert.Equal(t, msgPong, receive(t, conn).Type)

	send(t, conn, `{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`)
	assert.Equal(t, "alice", <-exec.callers)

	exec.feed <- "a"
	next := receive(t, conn)
	assert.Equal(t, msgNext, next.Type)
	assert.Equal(t, "1", next.ID)
	assert.JSONEq(t, `{"data":{"value":"a"}}`, string(next.Payload))

	close(exec.feed)
	done := receive(t, conn)
	assert.Equal(t, msgComplete, done.Type)
	assert.Equal(t, "1", done.ID)
}

func TestServer_AnonymousConnection(t *testing.T) {
	tests := []struct {
		name string
		init string
	}{
		{"no payload", `{"type":"connection_init"}`},
		{"no authorization", `{"type":"connection_init","payload":{"lang":"fr"}}`},
		{"bad token", `{"type":"connection_init","payload":{"authorization":"Bearer bad"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, url := newTestServer(t, time.Second)
			conn := dial(t, url)

			send(t, conn, tt.init)
			assert.Equal(t, msgConnectionAck, receive(t, conn).Type)

			send(t, conn, `{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`)
			assert.Equal(t, "", <-exec.callers)
		})
	}
}

func TestServer_ClientComplete(t *testing.T) {
	exec, url := newTestServer(t, time.Second)
	conn := dial(t, url)

	send(t, conn, `{"type":"connection_init"}`)
	receive(t, conn)

	send(t, conn, `{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`)
	<-exec.callers
	send(t, conn, `{"id":"1","type":"complete"}`)

	// The id is free again once the client completed it.
	send(t, conn, `{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`)
	select {
	case <-exec.callers:
	case <-time.After(2 * time.Second):
		t.Fatal("second subscribe was not executed")
	}

	send(t, conn, `{"type":"ping"}`)
	assert.Equal(t, msgPong, receive(t, conn).Type)
}

func TestServer_RequestErrorEndsOperation(t *testing.T) {
	exec, url := newTestServer(t, time.Second)
	conn := dial(t, url)

	send(t, conn, `{"type":"connection_init"}`)
	receive(t, conn)

	send(t, conn, `{"id":"7","type":"subscribe","payload":{"query":"broken"}}`)
	<-exec.callers

	msg := receive(t, conn)
	assert.Equal(t, msgError, msg.Type)
	assert.Equal(t, "7", msg.ID)
	assert.Contains(t, string(msg.Payload), "syntax error")
}

func TestServer_CloseCodes(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		wantCode int
	}{
		{
			name:     "subscribe before init",
			messages: []string{`{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`},
			wantCode: CloseUnauthorized,
		},
		{
			name:     "init payload is not an object",
			messages: []string{`{"type":"connection_init","payload":["Bearer good"]}`},
			wantCode: CloseInvalidMessage,
		},
		{
			name:     "second init",
			messages: []string{`{"type":"connection_init"}`, `{"type":"connection_init"}`},
			wantCode: CloseTooManyInits,
		},
		{
			name:     "garbage",
			messages: []string{`not json`},
			wantCode: CloseInvalidMessage,
		},
		{
			name:     "unknown type",
			messages: []string{`{"type":"connection_init"}`, `{"type":"start"}`},
			wantCode: CloseInvalidMessage,
		},
		{
			name: "duplicate id",
			messages: []string{
				`{"type":"connection_init"}`,
				`{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`,
				`{"id":"1","type":"subscribe","payload":{"query":"subscription { value }"}}`,
			},
			wantCode: CloseSubscriberInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, url := newTestServer(t, time.Second)
			conn := dial(t, url)

			for _, m := range tt.messages {
				send(t, conn, m)
			}

			expectClose(t, conn, tt.wantCode)
		})
	}
}

func TestServer_InitTimeout(t *testing.T) {
	_, url := newTestServer(t, 50*time.Millisecond)
	conn := dial(t, url)

	expectClose(t, conn, CloseInitTimeout)
}
