package http

import (
	json "github.com/json-iterator/go"

	"github.com/robertvazan/hookless-servlets/http/cookie"
	"github.com/robertvazan/hookless-servlets/http/status"
	"github.com/robertvazan/hookless-servlets/kv"
)

// Body is a finite byte window with position/limit semantics, the Go
// equivalent of java.nio.ByteBuffer used for the response data field.
// The body occupies Data between Pos and Limit. Duplicate copies the
// triple by value so a reader never disturbs the caller's own cursor.
type Body struct {
	Data  []byte
	Pos   int
	Limit int
}

// NewBody wraps b whole, with Pos at the start and Limit at the end.
func NewBody(b []byte) Body {
	return Body{Data: b, Pos: 0, Limit: len(b)}
}

// Duplicate returns a value copy of the window. The underlying array is
// shared, but advancing the copy's Pos never affects the original.
func (b Body) Duplicate() Body {
	return b
}

// Remaining reports how many bytes are left between Pos and Limit.
func (b Body) Remaining() int {
	return b.Limit - b.Pos
}

// Response is an immutable-by-convention value describing a complete HTTP
// response: status, headers, cookies and a body window. It carries no I/O
// side effects; the Task is the only thing that ever drains its body.
type Response struct {
	status  status.Code
	headers *kv.Storage
	cookies []cookie.Cookie
	body    Body
}

// NewResponse returns a valid, empty 200 response. Headers and cookies
// start out empty so application code can simply append to them.
func NewResponse() *Response {
	return &Response{
		status:  status.OK,
		headers: kv.New(),
		body:    NewBody(nil),
	}
}

func (r *Response) Status() status.Code      { return r.status }
func (r *Response) Headers() *kv.Storage     { return r.headers }
func (r *Response) Cookies() []cookie.Cookie { return r.cookies }
func (r *Response) Body() Body               { return r.body }

// Code sets the response's status code.
func (r *Response) Code(code status.Code) *Response {
	r.status = code
	return r
}

// Header appends a header pair. Use Set instead to replace any existing
// value(s) under the same (case-insensitive) name.
func (r *Response) Header(key, value string) *Response {
	r.headers.Add(key, value)
	return r
}

// Set replaces any existing value(s) for key with value.
func (r *Response) Set(key, value string) *Response {
	r.headers.Set(key, value)
	return r
}

// Cookie appends one or more cookies, later rendered as Set-Cookie headers.
func (r *Response) Cookie(cookies ...cookie.Cookie) *Response {
	r.cookies = append(r.cookies, cookies...)
	return r
}

// String sets the response body to the bytes of s.
func (r *Response) String(s string) *Response {
	return r.Bytes([]byte(s))
}

// Bytes sets the response body to b, without copying it.
func (r *Response) Bytes(b []byte) *Response {
	r.body = NewBody(b)
	return r
}

// TryJSON marshals model into the response body and sets Content-Type.
func (r *Response) TryJSON(model any) (*Response, error) {
	b, err := json.ConfigDefault.Marshal(model)
	if err != nil {
		return r, err
	}

	return r.Set("Content-Type", "application/json").Bytes(b), nil
}

// JSON does what TryJSON does, folding a marshal error into a 500 response.
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error sets the response's status from err (status.InternalServerError by
// default, or err's own code if it is a status.HTTPError) and its body to
// err's message.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	if httpErr, ok := err.(status.HTTPError); ok {
		return r.Code(httpErr.Code).String(httpErr.Message)
	}

	c := status.InternalServerError
	if len(code) > 0 {
		c = code[0]
	}

	return r.Code(c).String(err.Error())
}

// NewDisallowed returns the 405 default response every undeclared method
// falls back to.
func NewDisallowed() *Response {
	return NewResponse().
		Code(status.MethodNotAllowed).
		Set("Cache-Control", "no-cache, no-store")
}

// NewServiceError returns the status-only 500 response written when the
// application's service invocation fails.
func NewServiceError() *Response {
	return NewResponse().
		Code(status.InternalServerError).
		Set("Cache-Control", "no-cache, no-store")
}

// NewTimeout returns the status-only 504 response written when a Task's
// deadline elapses before the reactive evaluator produces a response.
func NewTimeout() *Response {
	return NewResponse().
		Code(status.GatewayTimeout).
		Set("Cache-Control", "no-cache, no-store")
}
