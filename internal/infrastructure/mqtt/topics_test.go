package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{TypeCode: "455", Username: "NN2-EU-ABC1234A"}

	if got, want := topics.Command(), "455/NN2-EU-ABC1234A/command"; got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}
	if got, want := topics.StatusCurrent(), "455/NN2-EU-ABC1234A/status/current"; got != want {
		t.Errorf("StatusCurrent() = %q, want %q", got, want)
	}
}
