package plantimg

// Request is the effective input of one render.
type Request struct {
	Text      string
	Server    string
	Format    string
	ClassName string
}

// Option configures a Request.
type Option func(*Request)

// WithServer sets the base URL of the rendering server.
func WithServer(server string) Option {
	return func(r *Request) {
		r.Server = server
	}
}

// WithFormat sets the output format path segment, e.g. "svg" or "png".
func WithFormat(format string) Option {
	return func(r *Request) {
		r.Format = format
	}
}

// WithClassName sets the styling token attached to the rendered image.
func WithClassName(className string) Option {
	return func(r *Request) {
		r.ClassName = className
	}
}

// NewRequest normalizes content with Content and applies opts. Server and
// Format fall back to DefaultServer and DefaultFormat when left empty.
func NewRequest(content interface{}, opts ...Option) Request {
	r := Request{Text: Content(content)}
	for _, opt := range opts {
		opt(&r)
	}
	return r.withDefaults()
}

func (r Request) withDefaults() Request {
	if r.Server == "" {
		r.Server = DefaultServer
	}
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	return r
}
