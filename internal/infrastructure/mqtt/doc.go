// Package mqtt provides MQTT connectivity to the air-treatment appliance.
//
// This package manages:
//   - Connection to the appliance's on-board broker with auto-reconnect
//   - State-request publishing with QoS guarantees
//   - Status-topic subscriptions restored across reconnects
//   - Connection health monitoring
//
// # Architecture
//
// Unlike a conventional MQTT deployment there is no central broker: the
// appliance itself runs the broker, and this service is its only client.
// The conversation is a narrow request/response pair over two topics:
//
//	hearth → <type>/<serial>/command          (state request)
//	hearth ← <type>/<serial>/status/current   (sensor push)
//
// The appliance also pushes unsolicited status messages on the same
// status topic; the subscription handler sees both alike.
//
// # Connection Policy
//
// The appliance tolerates few concurrent connections and drops idle ones
// without ceremony. The client therefore supports two modes, selected by
// configuration: hold the connection open between poll cycles (default),
// or Disconnect after each read and Reconnect at the next cycle.
//
// # Security Considerations
//
//   - The appliance broker authenticates with its serial and a hashed
//     credential; there is no per-topic ACL.
//   - Traffic stays on the local network segment. TLS is not offered by
//     the appliance firmware.
package mqtt
