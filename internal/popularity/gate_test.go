package popularity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_AtMostOncePerSettledQuery(t *testing.T) {
	var g Gate
	g.Settle("batman")

	assert.True(t, g.Acquire("batman"))
	assert.False(t, g.Acquire("batman"))

	// Re-settling the same value (e.g. a re-render) does not re-arm.
	g.Settle("batman")
	assert.False(t, g.Acquire("batman"))
}

func TestGate_ClearingRearms(t *testing.T) {
	var g Gate
	g.Settle("batman")
	assert.True(t, g.Acquire("batman"))

	g.Settle("")
	assert.False(t, g.Acquire(""))

	g.Settle("batman")
	assert.True(t, g.Acquire("batman"))
}

func TestGate_ChangingQueryRearms(t *testing.T) {
	var g Gate
	g.Settle("bat")
	assert.True(t, g.Acquire("bat"))

	g.Settle("batman")
	assert.True(t, g.Acquire("batman"))

	g.Settle("bat")
	assert.True(t, g.Acquire("bat"))
}

func TestGate_RefusesQueryThatIsNotSettled(t *testing.T) {
	var g Gate
	g.Settle("dune")
	assert.False(t, g.Acquire("alien"))
	assert.True(t, g.Acquire(" dune "))
}

func TestGate_Reset(t *testing.T) {
	var g Gate
	g.Settle("dune")
	assert.True(t, g.Acquire("dune"))

	g.Reset()
	assert.False(t, g.Acquire("dune"))
	g.Settle("dune")
	assert.True(t, g.Acquire("dune"))
}
