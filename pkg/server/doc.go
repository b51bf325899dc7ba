// Package server exposes a live simulation over HTTP.
//
// A single goroutine ticks the simulation at a fixed rate while request
// handlers read snapshots and apply interaction (pin, unpin, resize,
// restart). Both sides take the same mutex, which is the only
// synchronization the engine needs: [sim.Simulation] itself is
// single-threaded and rejects overlapping ticks.
//
// # Routes
//
//	GET    /healthz                 liveness and session id
//	GET    /api/state               cooling state, alpha, tick count
//	GET    /api/layout              snapshot as JSON (?format=svg|dot)
//	GET    /api/nodes/{id}          one node's placement
//	POST   /api/nodes/{id}/pin      {"x":..,"y":..}, starts or continues a drag
//	DELETE /api/nodes/{id}/pin      releases a drag
//	POST   /api/find                {"x":..,"y":..,"radius":..}, hit test
//	POST   /api/resize              {"width":..,"height":..}
//	POST   /api/restart             reseed and reheat
//
// Pinning reheats the simulation to alpha_target 0.3 and releasing lets it
// cool again, the same drag lifecycle a browser front end would drive.
//
// Errors are reported as {"code": "...", "error": "..."} with the status
// from [errors.HTTPStatus].
package server
