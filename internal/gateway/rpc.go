package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/service"
	"github.com/soyeahso/meshbuilder/internal/session"
)

// RequestHandler processes an incoming RPC request frame from a client.
type RequestHandler func(rc *RequestContext)

// RequestContext carries everything a handler needs. Ctx lives as long as
// the connection, so background work started from a request outlives it.
type RequestContext struct {
	Ctx    context.Context
	Client *Client
	Frame  Frame
	Server *Server
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// RespondError sends an error response.
func (rc *RequestContext) RespondError(code, message string) {
	rc.Client.RespondError(rc.Frame.ID, ErrorShape{
		Code:    code,
		Message: message,
	})
}

// Fail maps err to an error response.
func (rc *RequestContext) Fail(err error) {
	shape := errorShape(err)
	rc.RespondError(shape.Code, shape.Message)
}

// Params unmarshals the request params into the given target.
func (rc *RequestContext) Params(target any) error {
	if rc.Frame.Params == nil {
		return nil
	}
	return json.Unmarshal(rc.Frame.Params, target)
}

// userErrors are failures caused by the request rather than a provider.
var userErrors = []error{
	service.ErrCompanyRequired,
	service.ErrInvalidSolutions,
	domain.ErrTooFewPlatforms,
	session.ErrTooFewSelected,
	session.ErrNoValidNames,
	session.ErrCandidateLimit,
	session.ErrUnknownCandidate,
	session.ErrNotReviewing,
}

func errorShape(err error) ErrorShape {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return ErrorShape{Code: CodeInvalidParams, Message: err.Error()}
		}
	}
	return ErrorShape{Code: CodeUpstream, Message: err.Error()}
}
