// Package client talks to the Sundaram server.
//
// Client is the transport-neutral contract used by the CLI. HTTPClient and
// GRPCClient implement it; both sign authenticated calls with the session
// secret over the canonical JSON body (see package signature) and send the
// session token as a lookup hint.
//
// Server errors are returned as the sentinels of package common, wrapped
// with the server's message, so callers can use errors.Is and print
// common.Message. Transport failures match ErrUnavailable.
package client
