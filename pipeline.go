package api

import (
	"errors"
	"net/http"
)

// pipeline serves one typed route. Every request runs the same stages:
// admit (read and validate), bind, self-validate, handle, check the
// response, encode. The first failing stage answers the request.
type pipeline[Req, Resp any] struct {
	handle  Handler[Req, Resp]
	status  int
	gw      *Gateway
	onError ErrorHandler
}

func (p *pipeline[Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, err := p.admit(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	req, err := decodeRequest[Req](v)
	if err != nil {
		p.fail(w, r, Error(http.StatusBadRequest, err.Error()))
		return
	}
	if sv, ok := any(req).(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			p.fail(w, r, err)
			return
		}
	}

	resp, err := p.handle(r.Context(), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	if _, ok := any(resp).(*Void); ok || resp == nil {
		w.WriteHeader(p.status)
		return
	}

	out, err := p.gw.WrapResponse(v.Key, resp)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	encodeResponse(w, out, p.status)
}

// admit reads the request and runs it through the gateway.
func (p *pipeline[Req, Resp]) admit(r *http.Request) (*Validated, error) {
	in, err := inboundFrom(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, Error(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return nil, Error(http.StatusBadRequest, err.Error())
	}
	return p.gw.Intercept(in)
}

func (p *pipeline[Req, Resp]) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		noteRejection(w, verr)
	}
	if p.onError != nil {
		p.onError(w, r, err)
		return
	}
	writeErrorResponse(w, err)
}
