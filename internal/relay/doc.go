// Package relay implements the MapChat room coordinator: it tracks connected
// participants over WebSocket, fans out location and presence events, and
// routes directed chat frames between participants.
//
// The implementation is organized into specialized files for the hub event
// loop, session registry, presence store, frame routing, client pumps,
// configuration, and HTTP wiring.
package relay
