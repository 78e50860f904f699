package mqtt

import "fmt"

// Topics builds the appliance's topic pair from its identity.
//
// The appliance namespaces its topics by product type code and serial:
//
//	<type_code>/<serial>/command          commands in
//	<type_code>/<serial>/status/current   sensor and state pushes out
//
// The serial doubles as the broker username, so both values come straight
// from the device configuration.
type Topics struct {
	// TypeCode is the product type code, e.g. "455" for a PureCool tower.
	TypeCode string

	// Username is the device serial.
	Username string
}

// Command returns the topic the appliance accepts commands on.
func (t Topics) Command() string {
	return fmt.Sprintf("%s/%s/command", t.TypeCode, t.Username)
}

// StatusCurrent returns the topic the appliance pushes current state
// and environmental sensor data on.
func (t Topics) StatusCurrent() string {
	return fmt.Sprintf("%s/%s/status/current", t.TypeCode, t.Username)
}
