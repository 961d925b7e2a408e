// Package nethttp is a reference binding of the container contract onto
// net/http. It exists so the Task has something real to drive end to end in
// examples and integration tests, without a genuine async servlet container
// to plug in. net/http offers no non-blocking readiness signal the way a
// real servlet container's NIO channels do, so IsReady always reports true
// here and reads/writes simply block inline on the Task's own goroutine —
// correct, but not actually non-blocking. A production container binding
// wired to real epoll/io_uring readiness would replace this package
// entirely; the Task itself doesn't know the difference.
package nethttp

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/robertvazan/hookless-servlets/config"
	"github.com/robertvazan/hookless-servlets/container"
	"github.com/robertvazan/hookless-servlets/http/cookie"
	"github.com/robertvazan/hookless-servlets/reactive"
	"github.com/robertvazan/hookless-servlets/servlet"
	"github.com/robertvazan/hookless-servlets/task"
)

// Handler adapts a servlet.Servlet into an http.Handler by constructing and
// driving a task.Task per request.
type Handler struct {
	Servlet   *servlet.Servlet
	Evaluator reactive.Evaluator
	Config    *config.Config
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config
	if cfg == nil {
		cfg = config.Default()
	}
	evaluator := h.Evaluator
	if evaluator == nil {
		evaluator = reactive.PollEvaluator{}
	}

	rawReq := newRawRequest(r)
	rawResp := newRawResponse(w)

	tsk := task.New(h.Servlet, evaluator, cfg, rawReq, rawResp)

	if cfg.Timeouts.Task > 0 {
		timer := time.AfterFunc(cfg.Timeouts.Task, tsk.OnTimeout)
		defer timer.Stop()
	}

	tsk.Start()
	<-tsk.Done()
}

type rawRequest struct {
	r     *http.Request
	input *inputStream
}

func newRawRequest(r *http.Request) *rawRequest {
	return &rawRequest{r: r, input: &inputStream{body: r.Body}}
}

func (rr *rawRequest) LocalAddr() string { return splitHost(rr.r.Host) }
func (rr *rawRequest) LocalPort() int    { return splitPort(rr.r.Host) }
func (rr *rawRequest) RemoteAddr() string { return splitHost(rr.r.RemoteAddr) }
func (rr *rawRequest) RemotePort() int    { return splitPort(rr.r.RemoteAddr) }
func (rr *rawRequest) Method() string     { return rr.r.Method }
func (rr *rawRequest) RequestURL() string { return rr.r.URL.Path }
func (rr *rawRequest) QueryString() string { return rr.r.URL.RawQuery }
func (rr *rawRequest) CookieHeader() string { return rr.r.Header.Get("Cookie") }

func (rr *rawRequest) HeaderNames() []string {
	names := make([]string, 0, len(rr.r.Header))
	for name := range rr.r.Header {
		names = append(names, name)
	}
	return names
}

func (rr *rawRequest) HeaderValues(name string) []string {
	return rr.r.Header.Values(name)
}

func (rr *rawRequest) InputStream() (container.InputStream, error) {
	return rr.input, nil
}

func splitHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func splitPort(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return p
}

// inputStream wraps the request body. finished becomes true the first time
// Read observes EOF; IsReady is always true since net/http's body offers no
// earlier readiness signal.
type inputStream struct {
	body     interface{ Read([]byte) (int, error); Close() error }
	listener container.ReadListener
	finished bool
}

func (s *inputStream) IsFinished() bool { return s.finished }
func (s *inputStream) IsReady() bool    { return true }

func (s *inputStream) Read(buf []byte) (int, error) {
	n, err := s.body.Read(buf)
	if err != nil {
		s.finished = true
		return n, nil
	}
	return n, nil
}

func (s *inputStream) SetReadListener(l container.ReadListener) { s.listener = l }
func (s *inputStream) Close() error                             { return s.body.Close() }

// outputStream writes straight through to the ResponseWriter and flushes
// after every write when the underlying writer supports it, so a caller
// watching the connection sees bytes promptly instead of buffered until the
// handler returns.
type outputStream struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	listener container.WriteListener
}

func (s *outputStream) IsReady() bool { return true }

func (s *outputStream) Write(buf []byte) (int, error) {
	n, err := s.w.Write(buf)
	if err != nil {
		return n, err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return n, nil
}

func (s *outputStream) SetWriteListener(l container.WriteListener) { s.listener = l }

// rawResponse defers the actual WriteHeader call until the output stream is
// first requested, since by then the Task has already finished calling
// SetStatus/SetHeader/AddCookie (serve's exact ordering) and net/http
// requires every header to be set before the status line is written.
type rawResponse struct {
	w          http.ResponseWriter
	statusCode int
	output     *outputStream
}

func newRawResponse(w http.ResponseWriter) *rawResponse {
	return &rawResponse{w: w, statusCode: http.StatusOK}
}

func (rr *rawResponse) StartAsync() container.AsyncContext { return asyncContext{} }
func (rr *rawResponse) SetStatus(code int)                 { rr.statusCode = code }
func (rr *rawResponse) SetHeader(key, value string)        { rr.w.Header().Set(key, value) }

func (rr *rawResponse) AddCookie(c cookie.Cookie) {
	http.SetCookie(rr.w, &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		MaxAge:   c.MaxAge,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: sameSite(c.SameSite),
	})
}

func (rr *rawResponse) OutputStream() (container.OutputStream, error) {
	if rr.output == nil {
		rr.w.WriteHeader(rr.statusCode)
		flusher, _ := rr.w.(http.Flusher)
		rr.output = &outputStream{w: rr.w, flusher: flusher}
	}
	return rr.output, nil
}

func sameSite(s cookie.SameSite) http.SameSite {
	switch s {
	case cookie.SameSiteLax:
		return http.SameSiteLaxMode
	case cookie.SameSiteStrict:
		return http.SameSiteStrictMode
	case cookie.SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

// asyncContext satisfies container.AsyncContext. net/http handlers already
// run on their own per-request goroutine, so "the container pool" is simply
// any goroutine; Schedule spawns one. Complete has nothing to do: the
// Handler's own ServeHTTP blocks on task.Task.Done rather than this type's
// state.
type asyncContext struct{}

func (asyncContext) SetLifecycle(container.Lifecycle) {}
func (asyncContext) Schedule(fn func())                { go fn() }
func (asyncContext) Complete()                         {}
