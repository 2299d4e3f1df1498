package server

import (
	"bytes"
)

const (
	statusOK       = "HTTP/1.1 200 OK"
	statusNotFound = "HTTP/1.1 404 Not Found"

	helloFile    = "hello.html"
	notFoundFile = "404.html"
)

var (
	rootRequestLine  = []byte("GET / HTTP/1.1\r\n")
	sleepRequestLine = []byte("GET /sleep HTTP/1.1\r\n")
)

// Route is the outcome of matching a request: the status line to send,
// the static file to serve, and whether to sleep first.
type Route struct {
	Status string
	File   string
	Delay  bool
}

// MatchRoute inspects the start of a raw request.
func MatchRoute(req []byte) Route {
	switch {
	case bytes.HasPrefix(req, rootRequestLine):
		return Route{Status: statusOK, File: helloFile}
	case bytes.HasPrefix(req, sleepRequestLine):
		return Route{Status: statusOK, File: helloFile, Delay: true}
	default:
		return Route{Status: statusNotFound, File: notFoundFile}
	}
}
