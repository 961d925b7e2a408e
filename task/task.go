// Package task implements the per-request asynchronous transaction state
// machine: the single component that coordinates container lifecycle
// events, non-blocking body I/O, and reactive evaluation into one
// deterministic, single-writer sequence per request.
//
// Every field the state machine owns is touched from exactly one goroutine,
// the Task's own run loop. Container callbacks and reactive completion
// notifications may fire on any goroutine; they are translated into events
// enqueued on a channel rather than mutating Task state directly, which is
// this module's Go-native replacement for the original's per-Task mutex.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/robertvazan/hookless-servlets/config"
	"github.com/robertvazan/hookless-servlets/container"
	taskerrors "github.com/robertvazan/hookless-servlets/errors"
	"github.com/robertvazan/hookless-servlets/http"
	"github.com/robertvazan/hookless-servlets/http/status"
	"github.com/robertvazan/hookless-servlets/metrics"
	"github.com/robertvazan/hookless-servlets/reactive"
	"github.com/robertvazan/hookless-servlets/servlet"
)

type eventKind uint8

const (
	evStart eventKind = iota
	evReadReady
	evWriteReady
	evDie
	evTimeout
	evEvaluated
	evContinue
)

type event struct {
	kind     eventKind
	err      error
	response *http.Response
}

// Task sequences one request: async activation, header parse, non-blocking
// body read, reactive evaluation on the servlet's executor, non-blocking
// response write, terminal completion. A Task is created and started once;
// nothing about it is reused across requests.
type Task struct {
	servlet   *servlet.Servlet
	evaluator reactive.Evaluator
	cfg       *config.Config

	rawReq  container.RawRequest
	rawResp container.RawResponse

	events chan event
	done   chan struct{}

	completed bool
	responded bool
	executed  bool

	async  container.AsyncContext
	future reactive.Future
	ctx    context.Context
	cancel context.CancelFunc

	rrequest *http.Request

	input    container.InputStream
	dataIn   []byte
	bufferIn []byte

	output    container.OutputStream
	dataOut   http.Body
	bufferOut []byte

	startedAt time.Time
}

// New builds a Task bound to (servlet, raw request, raw response). Call
// Start to run it; New alone performs no I/O.
func New(s *servlet.Servlet, evaluator reactive.Evaluator, cfg *config.Config, rawReq container.RawRequest, rawResp container.RawResponse) *Task {
	return &Task{
		servlet:   s,
		evaluator: evaluator,
		cfg:       cfg,
		rawReq:    rawReq,
		rawResp:   rawResp,
		// Buffered so a synchronous Evaluator/Executor (the common case for
		// the PollEvaluator used in tests and the reference binding) can
		// enqueue its completion event from inside the very call stack
		// that's draining the events channel, without deadlocking against
		// itself.
		events: make(chan event, 4),
		done:   make(chan struct{}),
	}
}

// Start launches the Task's run loop and feeds it the initial event. It
// returns immediately; the request is processed asynchronously from this
// point on, exactly as the container's own async-I/O model requires.
func (t *Task) Start() {
	t.ctx, t.cancel = context.WithCancel(context.Background())
	go t.run()
	t.enqueue(event{kind: evStart})
}

// Done reports whether the Task has reached its terminal state. Exposed for
// tests and reference container bindings that need to know when it's safe
// to release a connection; the Task itself never queries it.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) enqueue(ev event) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

func (t *Task) run() {
	defer close(t.done)

	for ev := range t.events {
		t.handle(ev)
		if t.completed {
			return
		}
	}
}

func (t *Task) handle(ev event) {
	switch ev.kind {
	case evStart:
		t.start()
	case evReadReady:
		t.continueReading()
	case evWriteReady:
		t.continueWriting()
	case evDie:
		t.die(ev.err)
	case evTimeout:
		t.timeout()
	case evEvaluated:
		t.schedule(ev.response, ev.err)
	case evContinue:
		if ev.err != nil {
			t.fail(ev.err)
		} else {
			t.serve(ev.response)
		}
	}
}

// --- container.Lifecycle / container.ReadListener / container.WriteListener ---
//
// These are the only methods other goroutines call directly. Each does
// nothing but translate the callback into an event.

func (t *Task) OnError(err error) { t.enqueue(event{kind: evDie, err: err}) }
func (t *Task) OnTimeout()        { t.enqueue(event{kind: evTimeout}) }
func (t *Task) OnComplete()       {}
func (t *Task) OnDataAvailable()  { t.enqueue(event{kind: evReadReady}) }
func (t *Task) OnAllDataRead()    { t.enqueue(event{kind: evReadReady}) }
func (t *Task) OnWritePossible()  { t.enqueue(event{kind: evWriteReady}) }

// guardFail is the guard mechanism (spec §4.5, §7): any container call that
// returned an error is logged at debug level, counted, and the Task dies —
// without ever attempting to write a response, since we don't know what
// state the container's own side is in.
func (t *Task) guardFail(action string, err error) {
	if t.cfg.Debug {
		t.cfg.Logger.Printf("%s: %v", action, err)
	}
	metrics.ContainerExceptions.Inc()
	t.cancelFuture()
	t.complete()
}

// die is the death path: triggered by an async/read/write error callback
// from the container, as opposed to an error returned directly by a call
// the Task made itself.
func (t *Task) die(err error) {
	if t.cfg.Debug {
		t.cfg.Logger.Printf("async error: %v", err)
	}
	metrics.AsyncExceptions.Inc()
	t.cancelFuture()
	t.complete()
}

func (t *Task) cancelFuture() {
	if t.future != nil {
		t.future.Cancel()
	}
}

func (t *Task) complete() {
	if t.completed {
		return
	}
	t.completed = true
	if t.async != nil {
		t.async.Complete()
	}
	t.cancel()
	metrics.ActiveTasks.Dec()
	metrics.TaskDuration.Observe(time.Since(t.startedAt).Seconds())
}

// start activates async mode, registers the lifecycle listener, and parses
// the request. Initial -> Reading.
func (t *Task) start() {
	t.startedAt = time.Now()
	metrics.ActiveTasks.Inc()

	t.async = t.rawResp.StartAsync()
	t.async.SetLifecycle(t)

	t.parse()
}

func (t *Task) parse() {
	if t.completed {
		return
	}

	req, err := http.FromRaw(t.rawReq)
	if err != nil {
		t.guardFail("failed to parse request", err)
		return
	}
	t.rrequest = req
	metrics.CountMethod(req.Method())

	t.beginReading()
}

func (t *Task) beginReading() {
	if t.completed {
		return
	}

	input, err := t.rawReq.InputStream()
	if err != nil {
		t.guardFail("failed to open request body", err)
		return
	}
	t.input = input
	t.input.SetReadListener(t)

	t.continueReading()
}

// continueReading runs the read loop from either beginReading's first
// synchronous attempt or a later data-available/all-data-read callback.
// executed guards against any read callback that manages to fire after
// Reading -> Evaluating has already happened.
func (t *Task) continueReading() {
	if t.completed || t.executed {
		return
	}

	if err := t.readLoop(); err != nil {
		t.guardFail("failed to read request body", err)
	}
}

// readLoop is the one-and-a-half loop: the finished check runs before the
// readiness check, on every iteration including the first, so a request
// whose body is already fully buffered (the common empty-GET case)
// transitions to Evaluating without ever seeing a not-ready return.
func (t *Task) readLoop() error {
	chunk := t.cfg.Read.ChunkSize

	for {
		if t.input.IsFinished() {
			return t.endReading()
		}
		if !t.input.IsReady() {
			metrics.ReadWaits.Inc()
			return nil
		}

		if t.bufferIn == nil {
			t.bufferIn = make([]byte, chunk)
		}
		n, err := t.input.Read(t.bufferIn)
		if err != nil {
			return err
		}
		if n > 0 {
			t.dataIn = append(t.dataIn, t.bufferIn[:n]...)
			metrics.ReadCalls.Inc()
			metrics.ReadBytes.Add(float64(n))
		}
	}
}

func (t *Task) endReading() error {
	if err := t.input.Close(); err != nil {
		return err
	}

	t.rrequest.SetData(t.dataIn)
	t.dataIn = nil
	t.bufferIn = nil
	t.input = nil

	t.execute()
	return nil
}

// execute hands the request to the reactive evaluator on the servlet's
// chosen executor. Reading -> Evaluating.
func (t *Task) execute() {
	t.executed = true

	thunk := func() (any, bool) {
		return t.servlet.Service(t.rrequest), false
	}

	t.future = t.evaluator.Evaluate(t.ctx, thunk, t.servlet.SelectedExecutor())
	t.future.OnComplete(func(value any, err error) {
		var resp *http.Response
		if r, ok := value.(*http.Response); ok {
			resp = r
		}
		if resp == nil && err == nil {
			err = taskerrors.ErrNilEvaluation
		}
		t.enqueue(event{kind: evEvaluated, response: resp, err: err})
	})
}

// schedule crosses back from the reactive pool to the container pool via
// the async context's own scheduling primitive, matching §5's "exactly one
// place control crosses pool boundaries" rule. The continuation it
// schedules does nothing but re-enter the Task's single-writer loop.
func (t *Task) schedule(resp *http.Response, err error) {
	if t.completed {
		return
	}

	t.async.Schedule(func() {
		t.enqueue(event{kind: evContinue, response: resp, err: err})
	})
}

// fail writes the 500 disposition for an application exception. A
// cancellation caused by the timeout path is not a failure in its own
// right — the timeout path already produced whatever response there is.
func (t *Task) fail(err error) {
	if errors.Is(err, reactive.ErrCancelled) {
		return
	}
	if t.responded || t.completed {
		return
	}

	t.cfg.Logger.Printf("service error: %v", err)

	t.responded = true
	t.rawResp.SetStatus(int(status.InternalServerError))
	t.rawResp.SetHeader("Cache-Control", "no-cache, no-store")
	metrics.CountStatus(int(status.InternalServerError))
	metrics.ServiceExceptions.Inc()

	t.complete()
}

// serve writes status, headers and cookies for a successful evaluation,
// then begins the write loop. Evaluating -> Writing.
func (t *Task) serve(resp *http.Response) {
	if t.responded || t.completed || resp == nil {
		return
	}
	t.responded = true

	code := int(resp.Status())
	t.rawResp.SetStatus(code)
	metrics.CountStatus(code)

	for _, pair := range resp.Headers().Expose() {
		t.rawResp.SetHeader(pair.Key, pair.Value)
	}
	for _, c := range resp.Cookies() {
		t.rawResp.AddCookie(c)
	}

	t.beginWriting(resp.Body())
}

func (t *Task) beginWriting(body http.Body) {
	if t.completed {
		return
	}

	out, err := t.rawResp.OutputStream()
	if err != nil {
		t.guardFail("failed to open response body", err)
		return
	}
	t.output = out
	t.dataOut = body.Duplicate()
	t.output.SetWriteListener(t)

	t.continueWriting()
}

func (t *Task) continueWriting() {
	if t.completed {
		return
	}

	if err := t.writeLoop(); err != nil {
		t.guardFail("failed to write response body", err)
	}
}

// writeLoop mirrors readLoop's one-and-a-half shape: exhaustion is checked
// before readiness, on every iteration, so an empty body completes the Task
// synchronously from serve without ever writing to the output stream.
func (t *Task) writeLoop() error {
	for {
		if t.dataOut.Remaining() <= 0 {
			t.complete()
			return nil
		}
		if !t.output.IsReady() {
			metrics.WriteWaits.Inc()
			return nil
		}

		if t.bufferOut == nil {
			size := t.dataOut.Remaining()
			if size > t.cfg.Write.ChunkSize {
				size = t.cfg.Write.ChunkSize
			}
			t.bufferOut = make([]byte, size)
		}

		n := len(t.bufferOut)
		if n > t.dataOut.Remaining() {
			n = t.dataOut.Remaining()
		}
		copy(t.bufferOut[:n], t.dataOut.Data[t.dataOut.Pos:t.dataOut.Pos+n])

		written, err := t.output.Write(t.bufferOut[:n])
		if err != nil {
			return err
		}
		t.dataOut.Pos += written
		metrics.WriteCalls.Inc()
		metrics.WriteBytes.Add(float64(written))
	}
}

// timeout cancels the evaluator and, if nothing has been written yet,
// writes the 504 disposition before completing. Timeout is the sole upper
// bound on Task lifetime and always wins the race against a late response.
func (t *Task) timeout() {
	t.cancelFuture()

	if !t.responded && !t.completed {
		t.responded = true
		t.rawResp.SetStatus(int(status.GatewayTimeout))
		t.rawResp.SetHeader("Cache-Control", "no-cache, no-store")
		metrics.CountStatus(int(status.GatewayTimeout))
	}
	t.complete()

	metrics.TimeoutExceptions.Inc()
}
