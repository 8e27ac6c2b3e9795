// Package client talks to the authkeeper gRPC server on behalf of the CLI.
//
// GRPCClient keeps the current access token and attaches it to every call
// through a unary interceptor. gRPC status codes are mapped to the sentinel
// errors in errors.go so callers can match them with errors.Is.
package client
