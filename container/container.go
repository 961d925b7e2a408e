// Package container specifies the contract a servlet container must offer
// the Task: non-blocking read/write listener registration and an async
// transaction lifecycle. It is a literal translation of the
// javax.servlet.* async I/O interfaces the reactive servlet runtime is
// written against; this package never implements a wire protocol itself —
// see container/nethttp for a concrete reference binding.
package container

import (
	"github.com/robertvazan/hookless-servlets/http"
	"github.com/robertvazan/hookless-servlets/http/cookie"
)

// Lifecycle is notified of the async transaction's own error/timeout/
// completion events, distinct from the input/output stream listeners.
type Lifecycle interface {
	OnError(err error)
	OnTimeout()
	OnComplete()
}

// ReadListener is notified when the input stream becomes readable or
// reaches EOF, or fails.
type ReadListener interface {
	OnDataAvailable()
	OnAllDataRead()
	OnError(err error)
}

// WriteListener is notified when the output stream becomes writable, or fails.
type WriteListener interface {
	OnWritePossible()
	OnError(err error)
}

// InputStream is the container's non-blocking request-body reader.
type InputStream interface {
	IsFinished() bool
	IsReady() bool
	// Read fills buf and returns the number of bytes read. A negative
	// return means "no data now", mirroring ServletInputStream's own
	// contract; callers rely on IsFinished, not the sign of count, to
	// detect EOF.
	Read(buf []byte) (int, error)
	SetReadListener(ReadListener)
	Close() error
}

// OutputStream is the container's non-blocking response-body writer.
type OutputStream interface {
	IsReady() bool
	Write(buf []byte) (int, error)
	SetWriteListener(WriteListener)
}

// AsyncContext is the handle produced when a Task switches the container's
// synchronous request handling into asynchronous mode.
type AsyncContext interface {
	SetLifecycle(Lifecycle)
	// Schedule runs fn on the container's own thread pool. It is the only
	// sanctioned way for the reactive side to hand control back to the
	// container after evaluation completes.
	Schedule(fn func())
	Complete()
}

// RawResponse is the subset of a container's outbound-response accessors
// the Task needs during response production and finalization.
type RawResponse interface {
	StartAsync() AsyncContext
	SetStatus(code int)
	SetHeader(key, value string)
	AddCookie(cookie.Cookie)
	OutputStream() (OutputStream, error)
}

// RawRequest extends http.RawRequest with access to the container's
// non-blocking body reader, which http.FromRaw deliberately leaves untouched.
type RawRequest interface {
	http.RawRequest
	InputStream() (InputStream, error)
}
