// Package servlet implements the application-facing surface: a registration
// based dispatcher exposing per-method handlers with the same defaults
// HttpServlet and its reactive counterpart use, plus the executor selector
// the Task needs to run the reactive evaluator.
package servlet

import (
	"sort"
	"strings"

	"github.com/robertvazan/hookless-servlets/http"
	"github.com/robertvazan/hookless-servlets/http/method"
	"github.com/robertvazan/hookless-servlets/reactive"
)

// Handler answers one HTTP method. It is pure with respect to request: the
// reactive evaluator may invoke it any number of times with the same value.
type Handler func(request *http.Request) *http.Response

// Servlet is the registration-based dispatcher applications build. The zero
// value is ready to use: every method defaults to 405 Method Not Allowed
// except HEAD (defers to GET) and OPTIONS (reflects the declared set).
type Servlet struct {
	handlers [method.Count + 1]Handler
	declared [method.Count + 1]bool
	executor reactive.Executor
}

// New returns an empty Servlet with no methods declared.
func New() *Servlet {
	return &Servlet{executor: reactive.InlineExecutor}
}

func (s *Servlet) register(m method.Method, h Handler) *Servlet {
	s.handlers[m] = h
	s.declared[m] = true
	return s
}

// Get registers the GET handler. Declaring GET also makes the default HEAD
// handler answer with GET's response (its body emptied by doHead) and adds
// both GET and HEAD to the default OPTIONS response.
func (s *Servlet) Get(h Handler) *Servlet { return s.register(method.GET, h) }

// Head registers the HEAD handler directly, overriding the GET-deferring default.
func (s *Servlet) Head(h Handler) *Servlet { return s.register(method.HEAD, h) }

func (s *Servlet) Post(h Handler) *Servlet   { return s.register(method.POST, h) }
func (s *Servlet) Put(h Handler) *Servlet    { return s.register(method.PUT, h) }
func (s *Servlet) Delete(h Handler) *Servlet { return s.register(method.DELETE, h) }
func (s *Servlet) Trace(h Handler) *Servlet  { return s.register(method.TRACE, h) }

// Options registers a custom OPTIONS handler, overriding the default
// Allow-header reflection.
func (s *Servlet) Options(h Handler) *Servlet { return s.register(method.OPTIONS, h) }

// Executor sets the executor the reactive evaluator runs Service on.
func (s *Servlet) Executor(executor reactive.Executor) *Servlet {
	s.executor = executor
	return s
}

// SelectedExecutor returns the executor Service should run on, defaulting
// to reactive.InlineExecutor when none has been set.
func (s *Servlet) SelectedExecutor() reactive.Executor {
	if s.executor == nil {
		return reactive.InlineExecutor
	}

	return s.executor
}

var disallowed = http.NewDisallowed()

// Service dispatches request to the registered handler for its method, or
// to the matching default when none is registered. It is pure with respect
// to request and may safely be invoked by the reactive evaluator any number
// of times.
func (s *Servlet) Service(request *http.Request) *http.Response {
	m := method.Parse(request.Method())

	switch m {
	case method.GET, method.POST, method.PUT, method.DELETE, method.TRACE:
		if s.declared[m] {
			return s.handlers[m](request)
		}

		return disallowed
	case method.HEAD:
		return s.doHead(request)
	case method.OPTIONS:
		if s.declared[method.OPTIONS] {
			return s.handlers[method.OPTIONS](request)
		}

		return s.doOptions()
	default:
		return disallowed
	}
}

// doHead defers to GET when HEAD isn't declared directly, then empties the
// body — the same default HttpServlet and the Java original both apply.
func (s *Servlet) doHead(request *http.Request) *http.Response {
	if s.declared[method.HEAD] {
		return s.handlers[method.HEAD](request)
	}

	if !s.declared[method.GET] {
		return disallowed
	}

	response := s.handlers[method.GET](request)
	return response.Bytes(nil)
}

// doOptions reflects on the declared-method table and assembles a sorted,
// comma-space-joined Allow header. OPTIONS is always included; HEAD is
// implied whenever GET is declared, in addition to a direct HEAD
// registration.
func (s *Servlet) doOptions() *http.Response {
	set := map[string]struct{}{"OPTIONS": {}}

	if s.declared[method.GET] {
		set["GET"] = struct{}{}
		set["HEAD"] = struct{}{}
	}
	if s.declared[method.HEAD] {
		set["HEAD"] = struct{}{}
	}
	if s.declared[method.POST] {
		set["POST"] = struct{}{}
	}
	if s.declared[method.PUT] {
		set["PUT"] = struct{}{}
	}
	if s.declared[method.DELETE] {
		set["DELETE"] = struct{}{}
	}
	if s.declared[method.TRACE] {
		set["TRACE"] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return http.NewResponse().Set("Allow", strings.Join(names, ", ")).Set("Cache-Control", "no-cache, no-store")
}
