package gateway

import (
	"github.com/soyeahso/meshbuilder/internal/layout"
	"github.com/soyeahso/meshbuilder/internal/session"
)

// registerRPCHandlers sets up the mesh session methods.
func (s *Server) registerRPCHandlers() {
	s.Handle("mesh.search", s.rpcSearch)
	s.Handle("mesh.select", s.rpcSelect)
	s.Handle("mesh.add", s.rpcAdd)
	s.Handle("mesh.update", s.rpcUpdate)
	s.Handle("mesh.remove", s.rpcRemove)
	s.Handle("mesh.confirm", s.rpcConfirm)
	s.Handle("mesh.cancel", s.rpcCancel)
	s.Handle("mesh.priorities", s.rpcPriorities)
	s.Handle("mesh.viewport", s.rpcViewport)
	s.Handle("mesh.connect", s.rpcConnect)
	s.Handle("mesh.snapshot", s.rpcSnapshot)
	s.Handle("mesh.report", s.rpcReport)
	s.Handle("gesture.press", s.rpcPress)
	s.Handle("gesture.enter", s.rpcEnter)
	s.Handle("gesture.release", s.rpcRelease)
}

type phaseResponse struct {
	Phase session.Phase `json:"phase"`
}

type requestedResponse struct {
	Requested bool `json:"requested"`
}

type reportResponse struct {
	Title    string `json:"title"`
	FileName string `json:"fileName"`
	Markdown string `json:"markdown"`
}

type searchParams struct {
	Company string `json:"company"`
}

type idParams struct {
	ID string `json:"id"`
}

type candidateParams struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

type prioritiesParams struct {
	Text string `json:"text"`
}

type connectParams struct {
	Names          []string `json:"names"`
	AllowDuplicate bool     `json:"allowDuplicate"`
}

// dispatchAction applies a and answers with the resulting phase.
func dispatchAction(rc *RequestContext, a session.Action) {
	if err := rc.Client.Session.Dispatch(a); err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(phaseResponse{Phase: rc.Client.Session.State().Phase})
}

func (s *Server) rpcSearch(rc *RequestContext) {
	var p searchParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if err := rc.Client.Session.Search(rc.Ctx, p.Company); err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(phaseResponse{Phase: rc.Client.Session.State().Phase})
}

func (s *Server) rpcSelect(rc *RequestContext) {
	var p idParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	dispatchAction(rc, session.ToggleSelection{ID: p.ID})
}

func (s *Server) rpcAdd(rc *RequestContext) {
	var p candidateParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	dispatchAction(rc, session.AddCandidate{Name: p.Name, LogoURL: p.LogoURL})
}

func (s *Server) rpcUpdate(rc *RequestContext) {
	var p candidateParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	dispatchAction(rc, session.UpdateCandidate{ID: p.ID, Name: p.Name, LogoURL: p.LogoURL})
}

func (s *Server) rpcRemove(rc *RequestContext) {
	var p idParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	dispatchAction(rc, session.RemoveCandidate{ID: p.ID})
}

func (s *Server) rpcConfirm(rc *RequestContext) {
	if err := rc.Client.Session.Confirm(rc.Ctx); err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(phaseResponse{Phase: rc.Client.Session.State().Phase})
}

func (s *Server) rpcCancel(rc *RequestContext) {
	dispatchAction(rc, session.CancelReview{})
}

func (s *Server) rpcPriorities(rc *RequestContext) {
	var p prioritiesParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	dispatchAction(rc, session.SetPriorities{Text: p.Text})
}

func (s *Server) rpcViewport(rc *RequestContext) {
	var p layout.Viewport
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if p.Width <= 0 || p.Height <= 0 {
		rc.RespondError(CodeInvalidParams, "width and height must be positive")
		return
	}
	dispatchAction(rc, session.SetViewport{Viewport: p})
}

func (s *Server) rpcConnect(rc *RequestContext) {
	var p connectParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	requested, err := rc.Client.Session.RequestAgent(rc.Ctx, p.Names, session.RequestOptions{AllowDuplicate: p.AllowDuplicate})
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(requestedResponse{Requested: requested})
}

func (s *Server) rpcSnapshot(rc *RequestContext) {
	rc.Respond(rc.Client.Session.Snapshot())
}

func (s *Server) rpcReport(rc *RequestContext) {
	v := rc.Client.Session.Snapshot()
	rc.Respond(reportResponse{
		Title:    session.ReportTitle(v.State.Company),
		FileName: session.ReportFileName(v.State.Company),
		Markdown: session.Report(v.State, v.Metrics),
	})
}

func (s *Server) rpcPress(rc *RequestContext) {
	var p idParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	rc.Respond(rc.Client.Session.Press(p.ID))
}

func (s *Server) rpcEnter(rc *RequestContext) {
	var p idParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	rc.Respond(rc.Client.Session.Enter(p.ID))
}

func (s *Server) rpcRelease(rc *RequestContext) {
	requested, err := rc.Client.Session.Release(rc.Ctx)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(requestedResponse{Requested: requested})
}
