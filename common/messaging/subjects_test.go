package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentIndicationSubject(t *testing.T) {
	assert.Equal(t, "telemetry.kpm.indication.gnbd_001_001_00019b_0",
		AgentIndicationSubject("gnbd_001_001_00019b_0"))
}
