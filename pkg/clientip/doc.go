// Package clientip resolves the address of the producer behind a request.
//
// By default only the connection's RemoteAddr is used. Deployments behind a
// reverse proxy can enable proxy headers, which are consulted in this order:
// CF-Connecting-IP, X-Forwarded-For (first valid entry), X-Real-IP.
//
// The resolved address is stored in the request context by Middleware and
// is available to loggers through Extractor.
package clientip
