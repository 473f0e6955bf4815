package cmd

import (
	"encoding/json"
	"testing"

	"github.com/emicklei/dot"
	sw "github.com/filanov/stateswitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/worker"
)

func TestAsGraph(t *testing.T) {
	j, err := worker.DescribeAsJSON()
	require.NoError(t, err)

	s := &sw.StateMachineJSON{}
	require.NoError(t, json.Unmarshal(j, s))

	mermaid := dot.MermaidGraph(asGraph(s), dot.MermaidTopDown)

	for _, state := range []sw.State{worker.StateStopped, worker.StateStarting, worker.StateRunning, worker.StateStopping} {
		assert.Contains(t, mermaid, string(state))
	}
}
