package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafe(t *testing.T) {
	t.Run("nil translator falls back to identity", func(t *testing.T) {
		fn := Safe(nil)
		assert.Equal(t, "can't be blank", fn(DomainErrors, "can't be blank", nil))
	})

	t.Run("panicking translator falls back to the input", func(t *testing.T) {
		fn := Safe(func(domain, message string, params map[string]any) string {
			panic("lookup table offline")
		})
		assert.Equal(t, "can't be blank", fn(DomainErrors, "can't be blank", nil))
	})

	t.Run("working translator passes through", func(t *testing.T) {
		fn := Safe(func(domain, message string, params map[string]any) string {
			return domain + "/" + message
		})
		assert.Equal(t, "schemas/user", fn(DomainSchemas, "user", nil))
	})
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add("pt", DomainErrors, "can't be blank", "não pode ficar em branco"))
	require.NoError(t, c.Add("pt", DomainSchemas, "user", "usuário"))
	require.NoError(t, c.Add("fr", DomainErrors, "can't be blank", "ne peut pas être vide"))

	t.Run("exact locale", func(t *testing.T) {
		fn := c.Func("pt")
		assert.Equal(t, "não pode ficar em branco", fn(DomainErrors, "can't be blank", nil))
		assert.Equal(t, "usuário", fn(DomainSchemas, "user", nil))
	})

	t.Run("regional locale matches the base entry", func(t *testing.T) {
		fn := c.Func("pt-BR")
		assert.Equal(t, "não pode ficar em branco", fn(DomainErrors, "can't be blank", nil))
	})

	t.Run("domains are independent", func(t *testing.T) {
		fn := c.Func("fr")
		assert.Equal(t, "ne peut pas être vide", fn(DomainErrors, "can't be blank", nil))
		// No schemas entry for fr: the field name stays untranslated.
		assert.Equal(t, "user", fn(DomainSchemas, "user", nil))
	})

	t.Run("missing message falls back to the input", func(t *testing.T) {
		fn := c.Func("pt")
		assert.Equal(t, "has already been taken", fn(DomainErrors, "has already been taken", nil))
	})

	t.Run("unparseable locale falls back to identity", func(t *testing.T) {
		fn := c.Func("no such locale!")
		assert.Equal(t, "can't be blank", fn(DomainErrors, "can't be blank", nil))
	})

	t.Run("empty catalog is identity", func(t *testing.T) {
		fn := NewCatalog().Func("pt")
		assert.Equal(t, "can't be blank", fn(DomainErrors, "can't be blank", nil))
	})

	t.Run("invalid locale on add", func(t *testing.T) {
		assert.Error(t, NewCatalog().Add("!!", DomainErrors, "a", "b"))
	})
}
