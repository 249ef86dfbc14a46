package instrument

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndDump(t *testing.T) {
	before := Value("steady_cache_lookups_total", map[string]string{"kind": "dailyTodos", "result": LookupHit})
	CacheLookup("dailyTodos", LookupHit)
	CacheLookup("dailyTodos", LookupHit)
	after := Value("steady_cache_lookups_total", map[string]string{"kind": "dailyTodos", "result": LookupHit})
	assert.Equal(t, before+2, after)

	Mutation("dailyTodos", MutationRolledBack, 0.02)
	assert.GreaterOrEqual(t,
		Value("steady_mutations_total", map[string]string{"kind": "dailyTodos", "outcome": MutationRolledBack}), 1.0)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "steady_cache_lookups_total")
	assert.Contains(t, out, "steady_mutation_commit_seconds")
	assert.NotContains(t, out, "go_goroutines")
}

func TestValueUnknownSeries(t *testing.T) {
	assert.Zero(t, Value("steady_nope_total", nil))
	assert.Zero(t, Value("steady_cache_lookups_total", map[string]string{"kind": "x"}))
}
