package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchNumberToOffered(t *testing.T) {
	offered := []string{"fazer_cotacao", "ver_precos", "contato_direto"}

	assert.Equal(t, "fazer_cotacao", MatchNumberToOffered("1", offered))
	assert.Equal(t, "contato_direto", MatchNumberToOffered(" 3 ", offered))
	assert.Empty(t, MatchNumberToOffered("0", offered))
	assert.Empty(t, MatchNumberToOffered("4", offered))
	assert.Empty(t, MatchNumberToOffered("um", offered))
	assert.Empty(t, MatchNumberToOffered("1", nil))
}

func TestIsKeyword(t *testing.T) {
	keywords := []string{"cancelar", "cancel"}

	assert.True(t, IsKeyword("cancelar", keywords))
	assert.True(t, IsKeyword("  CANCELAR\n", keywords))
	assert.True(t, IsKeyword("Cancel", keywords))
	assert.False(t, IsKeyword("quero cancelar", keywords))
	assert.False(t, IsKeyword("", keywords))
	assert.False(t, IsKeyword("   ", []string{""}))
}
