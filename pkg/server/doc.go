// Package server exposes canvas sessions over HTTP.
//
// Each open map is held by one [canvas.Session] in a registry keyed by a
// session id. Opening a saved map that already has a live session returns
// that session, so concurrent clients of the same map share one owner.
//
// # Routes
//
//	GET    /health
//	GET    /metrics
//	GET    /api/maps
//	DELETE /api/maps/{mapID}
//	POST   /api/sessions                         {"map_id": "..."} optional
//	GET    /api/sessions/{sessionID}
//	DELETE /api/sessions/{sessionID}
//	POST   /api/sessions/{sessionID}/generate    {"prompt", "image_base64"}
//	POST   /api/sessions/{sessionID}/enhance     {"prompt", "mode"}
//	POST   /api/sessions/{sessionID}/save
//	POST   /api/sessions/{sessionID}/reset
//	GET    /api/sessions/{sessionID}/render?format=svg&engine=native
//	POST   /api/sessions/{sessionID}/nodes
//	PATCH  /api/sessions/{sessionID}/nodes/{nodeID}
//	DELETE /api/sessions/{sessionID}/nodes/{nodeID}
//	PUT    /api/sessions/{sessionID}/nodes/{nodeID}/position
//	PUT    /api/sessions/{sessionID}/nodes/{nodeID}/size
//	GET    /api/sessions/{sessionID}/nodes/{nodeID}/focus
//	POST   /api/sessions/{sessionID}/edges
//	PATCH  /api/sessions/{sessionID}/edges/{edgeID}
//	DELETE /api/sessions/{sessionID}/edges/{edgeID}
//	PUT    /api/sessions/{sessionID}/edges/{edgeID}/midpoint
//	DELETE /api/sessions/{sessionID}/edges/{edgeID}/control-point
//
// Session routes answer with the session [canvas.Snapshot]. Failures answer
// with {"error": {"code", "message"}} and a status derived from the error
// code.
package server
