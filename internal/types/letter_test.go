package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionMapFixedKeySet(t *testing.T) {
	m := NewSectionMap()

	assert.Equal(t, SectionNames(), m.Names())
	assert.NoError(t, m.Set(SectionOpening, "Hello."))
	assert.Equal(t, "Hello.", m.Get(SectionOpening))

	err := m.Set("ps", "unknown field")
	assert.Error(t, err)
	assert.Empty(t, m.Get("ps"))
}

func TestSectionMapReplaceAllRejectsUnknownKeysAtomically(t *testing.T) {
	m := NewSectionMap()
	require.NoError(t, m.Set(SectionOpening, "original"))

	err := m.ReplaceAll(map[string]string{
		SectionOpening: "changed",
		"bogus":        "x",
	})
	require.Error(t, err)
	// Nothing is applied when any key is unknown.
	assert.Equal(t, "original", m.Get(SectionOpening))
}

func TestSectionMapCloneIsIndependent(t *testing.T) {
	m := NewSectionMap()
	require.NoError(t, m.Set(SectionClosing, "Thanks."))

	c := m.Clone()
	require.NoError(t, c.Set(SectionClosing, "Regards."))

	assert.Equal(t, "Thanks.", m.Get(SectionClosing))
	assert.Equal(t, "Regards.", c.Get(SectionClosing))
}

func TestSectionMapTotalWords(t *testing.T) {
	m := NewSectionMap()
	require.NoError(t, m.Set(SectionOpening, "one two three"))
	require.NoError(t, m.Set(SectionClosing, "four  five"))

	assert.Equal(t, 5, m.TotalWords())
}

func TestSectionMapJSONPreservesTemplateOrder(t *testing.T) {
	m := NewSectionMap()
	require.NoError(t, m.Set(SectionSignatureName, "Jordan Doe"))
	require.NoError(t, m.Set(SectionOpening, "Hi."))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	// Keys appear in template order, not alphabetically or by set order.
	text := string(data)
	assert.Less(t, strings.Index(text, `"opening"`), strings.Index(text, `"alignment"`))
	assert.Less(t, strings.Index(text, `"closing"`), strings.Index(text, `"signature_name"`))

	var decoded SectionMap
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Jordan Doe", decoded.Get(SectionSignatureName))
	assert.Equal(t, SectionNames(), decoded.Names())
}

func TestSectionMapUnmarshalIgnoresUnknownKeys(t *testing.T) {
	var m SectionMap
	require.NoError(t, json.Unmarshal([]byte(`{"opening": "Hi.", "ps": "ignored"}`), &m))
	assert.Equal(t, "Hi.", m.Get(SectionOpening))
	assert.Empty(t, m.Get("ps"))
}

func TestPipelineRunTerminal(t *testing.T) {
	run := &PipelineRun{Status: RunStatusRunning}
	assert.False(t, run.Terminal())

	for _, status := range []RunStatus{RunStatusCompleted, RunStatusFailed, RunStatusStopped} {
		run.Status = status
		assert.True(t, run.Terminal(), string(status))
	}
}
