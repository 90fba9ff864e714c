package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"error": LevelError, "INFO": LevelInfo, " debug ": LevelDebug,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func Test_Logf_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	previousWriter, previousFlags := log.Writer(), log.Flags()
	previousLevel := CurrentLevel()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(previousWriter)
		log.SetFlags(previousFlags)
		SetLevel(previousLevel)
	})

	SetLevel(LevelInfo)
	Logf(LevelDebug, "hidden %d", 1)
	assert.Empty(t, buf.String())

	Logf(LevelInfo, "shown %d", 2)
	assert.Equal(t, "[INFO]   shown 2\n", buf.String())
}
