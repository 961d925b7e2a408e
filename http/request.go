package http

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"

	domainerrors "github.com/robertvazan/hookless-servlets/errors"
	"github.com/robertvazan/hookless-servlets/http/cookie"
	"github.com/robertvazan/hookless-servlets/kv"
)

// Request is an immutable-by-convention snapshot of an inbound HTTP
// request, including the fully buffered body. It is produced once per Task
// by FromRaw and handed to the reactive evaluator, which may invoke the
// servlet's service method any number of times against the same Request.
//
// Fluent setters are exposed anyway, to support unit tests and any other
// use that wants to build a Request by hand rather than convert one.
type Request struct {
	local   *net.TCPAddr
	remote  *net.TCPAddr
	method  string
	url     string
	headers *kv.Storage
	cookies []cookie.Cookie
	data    []byte
}

// NewRequest returns a Request with every field populated to a usable
// default except URL, which a caller must set before the Request is used.
func NewRequest() *Request {
	return &Request{
		local:   &net.TCPAddr{},
		remote:  &net.TCPAddr{},
		method:  "GET",
		headers: kv.New(),
		data:    []byte{},
	}
}

func (r *Request) Local() *net.TCPAddr      { return r.local }
func (r *Request) Remote() *net.TCPAddr     { return r.remote }
func (r *Request) Method() string           { return r.method }
func (r *Request) URL() string              { return r.url }
func (r *Request) Headers() *kv.Storage     { return r.headers }
func (r *Request) Cookies() []cookie.Cookie { return r.cookies }
func (r *Request) Data() []byte             { return r.data }

func (r *Request) SetLocal(addr *net.TCPAddr) *Request {
	r.local = addr
	return r
}

func (r *Request) SetRemote(addr *net.TCPAddr) *Request {
	r.remote = addr
	return r
}

func (r *Request) SetMethod(method string) *Request {
	r.method = method
	return r
}

func (r *Request) SetURL(u string) *Request {
	r.url = u
	return r
}

func (r *Request) SetHeaders(headers *kv.Storage) *Request {
	r.headers = headers
	return r
}

func (r *Request) SetCookies(cookies []cookie.Cookie) *Request {
	r.cookies = cookies
	return r
}

func (r *Request) SetData(data []byte) *Request {
	r.data = data
	return r
}

// RawRequest is the subset of a container's inbound-request accessors that
// FromRaw needs in order to build a Request. It deliberately excludes body
// access: the body is filled in separately by the Task's non-blocking read
// loop, not during conversion.
type RawRequest interface {
	LocalAddr() string
	LocalPort() int
	RemoteAddr() string
	RemotePort() int
	Method() string
	RequestURL() string
	QueryString() string
	HeaderNames() []string
	HeaderValues(name string) []string
	CookieHeader() string
}

// FromRaw converts a container's raw request into a Request value. It does
// not read the body; the body is filled in later by the Task. It fails only
// when the reconstructed URL cannot be parsed.
func FromRaw(raw RawRequest) (*Request, error) {
	r := NewRequest()
	r.local = parseAddress(raw.LocalAddr(), raw.LocalPort())
	r.remote = parseAddress(raw.RemoteAddr(), raw.RemotePort())
	r.method = raw.Method()

	address := raw.RequestURL()
	if query := raw.QueryString(); query != "" {
		address += "?" + query
	}

	parsed, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrBadURL, err)
	}
	parsed.Path = normalizePath(parsed.Path)
	r.url = parsed.String()

	for _, name := range raw.HeaderNames() {
		r.headers.Add(name, strings.Join(raw.HeaderValues(name), ", "))
	}

	if header := raw.CookieHeader(); header != "" {
		jar := cookie.NewJar()
		if cookie.Parse(jar, header) == nil {
			for _, pair := range jar.Expose() {
				r.cookies = append(r.cookies, cookie.New(pair.Key, pair.Value))
			}
		}
	}

	return r, nil
}

// normalizePath applies the dot-segment removal url.Parse itself doesn't do
// (net/url has no equivalent of URI.normalize()): "/a/../b" collapses to
// "/b", "/a/./b" to "/a/b", "//a" to "/a". A trailing slash is preserved
// across the clean since path.Clean always strips one.
func normalizePath(p string) string {
	if p == "" {
		return p
	}

	trailingSlash := len(p) > 1 && strings.HasSuffix(p, "/")
	cleaned := path.Clean(p)
	if trailingSlash && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}

	return cleaned
}

// parseAddress mirrors the container's own fallback: on a parse failure it
// falls back to an address-less endpoint that still carries the correct
// port, rather than discarding the port too.
func parseAddress(serialized string, port int) *net.TCPAddr {
	if serialized == "" {
		return &net.TCPAddr{Port: port}
	}

	ip := net.ParseIP(serialized)
	if ip == nil {
		return &net.TCPAddr{Port: port}
	}

	return &net.TCPAddr{IP: ip, Port: port}
}
