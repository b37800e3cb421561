package wsgraphql

import "github.com/goccy/go-json"

// Protocol is the WebSocket subprotocol implemented by Server.
const Protocol = "graphql-transport-ws"

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

// Close codes sent before the server drops a connection.
const (
	CloseInvalidMessage  = 4400
	CloseUnauthorized    = 4401
	CloseInitTimeout     = 4408
	CloseSubscriberInUse = 4409
	CloseTooManyInits    = 4429
)

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}
