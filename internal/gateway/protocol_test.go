package gateway

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantType string
		wantCode string
	}{
		{"request", `{"type":"req","id":"1","method":"mesh.snapshot"}`, FrameTypeRequest, ""},
		{"request with params", `{"type":"req","id":"2","method":"mesh.search","params":{"company":"Acme"}}`, FrameTypeRequest, ""},
		{"event passes through", `{"type":"event","event":"mesh.state"}`, FrameTypeEvent, ""},
		{"missing id", `{"type":"req","method":"mesh.snapshot"}`, FrameTypeRequest, CodeInvalidRequest},
		{"missing method", `{"type":"req","id":"3"}`, FrameTypeRequest, CodeInvalidRequest},
		{"not json", `{"type":`, "", CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, shape := DecodeFrame([]byte(tt.in))
			assert.Equal(t, tt.wantType, f.Type)
			if tt.wantCode == "" {
				assert.Nil(t, shape)
				return
			}
			require.NotNil(t, shape)
			assert.Equal(t, tt.wantCode, shape.Code)
		})
	}
}

func TestDecodeFrameParams(t *testing.T) {
	f, shape := DecodeFrame([]byte(`{"type":"req","id":"2","method":"mesh.search","params":{"company":"Acme"}}`))
	require.Nil(t, shape)

	var p searchParams
	require.NoError(t, json.Unmarshal(f.Params, &p))
	assert.Equal(t, "Acme", p.Company)
}

func TestErrorShapeIsError(t *testing.T) {
	var err error = &ErrorShape{Code: CodeInvalidParams, Message: "Select at least five platforms (currently 3)."}
	assert.EqualError(t, err, "invalid_params: Select at least five platforms (currently 3).")

	var shape *ErrorShape
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, CodeInvalidParams, shape.Code)
}

func TestResponseFrames(t *testing.T) {
	ok, err := NewResponse("req-1", phaseResponse{Phase: "mesh"})
	require.NoError(t, err)
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"res","id":"req-1","ok":true,"payload":{"phase":"mesh"}}`, string(data))

	failed := NewErrorResponse("req-2", ErrorShape{Code: CodeMethodNotFound, Message: "unknown method: mesh.teleport"})
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"res","id":"req-2","ok":false,"error":{"code":"method_not_found","message":"unknown method: mesh.teleport"}}`, string(data))
}

func TestEventFrames(t *testing.T) {
	f, err := NewEvent(EventState, map[string]string{"phase": "idle"}, 42)
	require.NoError(t, err)
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"mesh.state","payload":{"phase":"idle"},"seq":42}`, string(data))

	f, err = NewEvent(EventShutdown, nil, 0)
	require.NoError(t, err)
	data, err = json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"server.shutdown","payload":null}`, string(data))

	_, err = NewEvent(EventState, make(chan int), 1)
	assert.ErrorContains(t, err, "encoding mesh.state")
}

func TestNewHello(t *testing.T) {
	hello := newHello(ServerInfo{Version: "1.0.0", ConnID: "conn-1"}, []string{"mesh.search", "mesh.connect"})
	assert.Equal(t, ProtocolVersion, hello.Protocol)
	assert.Equal(t, []string{EventHello, EventState, EventShutdown}, hello.Features.Events)

	data, err := json.Marshal(hello)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"commit"`)
	assert.Contains(t, string(data), `"connId":"conn-1"`)
}
