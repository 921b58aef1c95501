// Package api defines the pgstay.v1 Connect services: procedure names, the
// JSON messages exchanged with the dashboard and typed clients.
//
// Messages are plain Go structs serialized with encoding/json through Codec,
// so the dashboard can call every procedure with a JSON POST:
//
//	curl -X POST -H 'Content-Type: application/json' \
//	     -H 'Authorization: Bearer <token>' \
//	     -d '{}' http://localhost:8080/pgstay.v1.RoomService/List
package api
