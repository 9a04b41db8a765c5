// Package api serves strikes over HTTP.
//
// Routes:
//
//	POST /v1/strike         JSON request in, JSON response with the encoded image
//	GET  /v1/strike.png     rendered PNG; width, height, seed and scale as query params
//	GET  /v1/strike.json    strike summary
//	GET  /v1/topology.svg   branch spawn tree rendered by Graphviz
//	GET  /v1/topology.dot   branch spawn tree as DOT
//	GET  /v1/version        build information
//	GET  /healthz           liveness probe
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code.
//
// GET routes go through the [pipeline.Runner], so seeded requests are served
// from the cache after the first render. POST /v1/strike always runs the worker
// and returns the image exactly as the result packager produced it.
package api
