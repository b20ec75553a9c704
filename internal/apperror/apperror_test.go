package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("x").Status())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").Status())
	assert.Equal(t, http.StatusBadRequest, Validation("x").Status())
	assert.Equal(t, http.StatusConflict, Conflict("x").Status())
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("pedido: %w", Forbidden("Ciclo fechado"))
	assert.True(t, Is(err, KindForbidden))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), KindForbidden))
}
