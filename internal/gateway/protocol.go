package gateway

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the mesh protocol revision announced in mesh.hello.
const ProtocolVersion = 1

// maxFrameBytes bounds a single websocket frame.
const maxFrameBytes = 1 << 20

// Frame kinds.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Server-pushed events.
const (
	EventHello    = "mesh.hello"
	EventState    = "mesh.state"
	EventShutdown = "server.shutdown"
)

// serverEvents is advertised in mesh.hello.
var serverEvents = []string{EventHello, EventState, EventShutdown}

// Error codes carried in ErrorShape.Code.
const (
	CodeInvalidParams  = "invalid_params"
	CodeInvalidRequest = "invalid_request"
	CodeMethodNotFound = "method_not_found"
	CodeUpstream       = "upstream_error"
)

// Frame is the single JSON envelope on the mesh socket. Clients send
// requests {type,id,method,params}; the server answers with responses
// {type,id,ok,payload|error} and pushes events {type,event,payload,seq}.
type Frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Event   string          `json:"event,omitempty"`
	Seq     int64           `json:"seq,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`
}

// ErrorShape is the error body of a failed response.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorShape) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Hello is the first event on every mesh connection.
type Hello struct {
	Protocol int        `json:"protocol"`
	Server   ServerInfo `json:"server"`
	Features Features   `json:"features"`
}

type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	ConnID  string `json:"connId"`
}

type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

func newHello(info ServerInfo, methods []string) Hello {
	return Hello{
		Protocol: ProtocolVersion,
		Server:   info,
		Features: Features{Methods: methods, Events: serverEvents},
	}
}

// DecodeFrame parses one inbound message. Requests must carry an id and a
// method; other frame kinds are returned as-is for the caller to ignore.
func DecodeFrame(data []byte) (Frame, *ErrorShape) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, &ErrorShape{Code: CodeInvalidRequest, Message: "malformed frame"}
	}
	if f.Type != FrameTypeRequest {
		return f, nil
	}
	switch {
	case f.ID == "":
		return f, &ErrorShape{Code: CodeInvalidRequest, Message: "request is missing an id"}
	case f.Method == "":
		return f, &ErrorShape{Code: CodeInvalidRequest, Message: "request is missing a method"}
	}
	return f, nil
}

// NewRequest builds a request frame. The server never sends these; tests
// and Go clients do.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s params: %w", method, err)
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding response %s: %w", id, err)
	}
	return Frame{Type: FrameTypeResponse, ID: id, OK: boolPtr(true), Payload: raw}, nil
}

func NewErrorResponse(id string, shape ErrorShape) Frame {
	return Frame{Type: FrameTypeResponse, ID: id, OK: boolPtr(false), Error: &shape}
}

func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s: %w", event, err)
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}

func boolPtr(b bool) *bool { return &b }
