// Package queueapi serves the queue over HTTP.
//
// Producers POST {"contents", "priority", "digest"} to / and receive 202
// with the assigned id. Consumers GET / to take the highest-priority item,
// optionally restricted with ?min_priority=. An empty queue answers 404
// with {"status":"error","reason":"Resource was not found."}.
//
// Rejections map to statuses: validation 400, integrity 403, memory
// ceiling 507 with the current, ceiling and attempted byte counts in meta.
package queueapi
