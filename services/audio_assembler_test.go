package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioAssemblerRoundTrip(t *testing.T) {
	assembler := NewAudioAssembler()
	defer assembler.Close()

	assembler.Append("s1", 0, []byte("abc"))
	assembler.Append("s1", 1, []byte("def"))
	assembler.Append("s1", 2, []byte("ghi"))

	assembled, err := assembler.Complete("s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefghi"), assembled)

	// Completion clears the buffer
	_, err = assembler.Complete("s1")
	assert.Error(t, err)
}

func TestAudioAssemblerSessionsAreIsolated(t *testing.T) {
	assembler := NewAudioAssembler()
	defer assembler.Close()

	assembler.Append("s1", 0, []byte("one"))
	assembler.Append("s2", 0, []byte("two"))

	assembled, err := assembler.Complete("s2")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), assembled)

	assembled, err = assembler.Complete("s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), assembled)
}

func TestAudioAssemblerCompleteWithoutChunks(t *testing.T) {
	assembler := NewAudioAssembler()
	defer assembler.Close()

	_, err := assembler.Complete("missing")
	assert.Error(t, err)
}

func TestAudioAssemblerDiscard(t *testing.T) {
	assembler := NewAudioAssembler()
	defer assembler.Close()

	assembler.Append("s1", 0, []byte("abandoned"))
	assembler.Discard("s1")

	_, err := assembler.Complete("s1")
	assert.Error(t, err)
}
