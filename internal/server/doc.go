// Package server is a minimal TCP server that hands every accepted
// connection to a worker pool.
//
// It understands two request lines, "GET / HTTP/1.1" and
// "GET /sleep HTTP/1.1", and answers everything else with 404. The sleep
// route holds its worker for the configured delay, which makes pool
// saturation easy to observe by hand.
package server
