package cookie

import (
	"errors"
	"strings"

	"github.com/robertvazan/hookless-servlets/kv"
)

// Jar is a key-value storage for the pairs carried by an inbound Cookie
// header. Key-value pairs are stored as plain strings rather than Cookie
// values, since a Cookie header never carries attributes — those only ever
// appear on an outbound Set-Cookie, which http.Response builds as a
// cookie.Cookie struct literal instead of going through a Jar.
type Jar = *kv.Storage

func NewJar() Jar {
	return kv.New()
}

var ErrBadCookie = errors.New("cookie has a malformed syntax")

// Parse parses cookies received from a user-agent's Cookie header into jar.
// It isn't applicable to Set-Cookie values, which carry attributes.
func Parse(jar Jar, data string) (err error) {
	for len(data) > 0 {
		eq := strings.IndexByte(data, '=')
		if eq == -1 {
			break
		}

		key := data[:eq]
		data = data[eq+1:]

		if len(key) == 0 {
			return ErrBadCookie
		}

		var value string

		if cs := strings.IndexByte(data, ';'); cs != -1 {
			value, data = data[:cs], stripSpace(data[cs+1:])
		} else {
			value, data = data, ""
		}

		jar.Add(key, value)
	}

	if len(data) != 0 {
		return ErrBadCookie
	}

	return nil
}

func stripSpace(str string) string {
	if len(str) > 0 && str[0] == ' ' {
		return str[1:]
	}

	return str
}
