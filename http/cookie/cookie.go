package cookie

import "time"

type Cookie struct {
	Name    string
	Value   string
	Path    string
	Domain  string
	Expires time.Time
	// MaxAge defines a delta in seconds, when the cookie should be dropped.
	// Note, that zero is treated as a zero-value, so will be ignored. In order
	// to be added with a value of zero, it must be negative. -1 is the conventional
	// value for this purpose
	MaxAge   int
	SameSite SameSite
	Secure   bool
	HttpOnly bool
}

// New returns a bare name/value cookie with no attributes set. Inbound
// Cookie-header pairs never carry attributes, so this is what http.FromRaw
// builds; outbound cookies that need Path/Domain/Expires/... are built as
// plain struct literals instead, since nothing in this module ever chains
// more than one or two attribute assignments at a time.
func New(name, value string) Cookie {
	return Cookie{Name: name, Value: value}
}

type SameSite = string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
	SameSiteNone   SameSite = "None"
)
