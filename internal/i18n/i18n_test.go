package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize())

	assert.Equal(t, "Item not found", T("en", KeyItemNotFound))
	assert.Equal(t, "Artículo no encontrado", T("es", KeyItemNotFound))
	assert.Equal(t, "Invalid item ID", T("en", KeyValidationInvalidID, "item"))

	// Unknown languages fall back to English, unknown keys to the key.
	assert.Equal(t, "Item not found", T("de", KeyItemNotFound))
	assert.Equal(t, "no.such.key", T("es", "no.such.key"))

	assert.Equal(t, []string{"en", "es"}, GetSupportedLanguages())
	assert.True(t, Supported("es"))
	assert.False(t, Supported("zh_TW"))
}

func TestCatalogsShareKeys(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := locales.ReadFile("locales/" + name)
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}
	en, es := load("en.json"), load("es.json")
	for key := range en {
		assert.Contains(t, es, key)
	}
	assert.Len(t, es, len(en))
}
