// Package http contains the HTTP transport: the chi router, the REST
// handlers over the dataset service and the websocket upgrade endpoint.
package http
