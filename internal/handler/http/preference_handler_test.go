package httphandler_test

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prefapp "github.com/lllypuk/imghost/internal/application/preference"
	"github.com/lllypuk/imghost/internal/domain/preference"
	httphandler "github.com/lllypuk/imghost/internal/handler/http"
	"github.com/lllypuk/imghost/internal/infrastructure/repository/memory"
)

func newPreferenceHandler() *httphandler.PreferenceHandler {
	return httphandler.NewPreferenceHandler(prefapp.NewService(memory.NewPreferenceRepository()))
}

func TestPreferenceHandler_List(t *testing.T) {
	e := echo.New()
	handler := newPreferenceHandler()

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/preferences", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.List(c))
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	data := decodeData[[]httphandler.PreferenceResponse](t, rec)
	assert.Len(t, data, len(preference.Keys()))
}

func TestPreferenceHandler_GetAndSet(t *testing.T) {
	e := echo.New()
	handler := newPreferenceHandler()

	put := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(stdhttp.MethodPut, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("key")
		c.SetParamValues(key)
		require.NoError(t, handler.Set(c))
		return rec
	}
	get := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("key")
		c.SetParamValues(key)
		require.NoError(t, handler.Get(c))
		return rec
	}

	t.Run("default value", func(t *testing.T) {
		rec := get(preference.KeyAllowEditing)
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		data := decodeData[httphandler.PreferenceResponse](t, rec)
		assert.Equal(t, "boolean", data.Type)
		assert.Equal(t, true, data.Value)
	})

	t.Run("set then get", func(t *testing.T) {
		rec := put(preference.KeyBcryptStrength, `{"value": "10"}`)
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		data := decodeData[httphandler.PreferenceResponse](t, get(preference.KeyBcryptStrength))
		assert.Equal(t, float64(10), data.Value)
	})

	t.Run("invalid value", func(t *testing.T) {
		rec := put(preference.KeyBcryptStrength, `{"value": "100"}`)
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, rec).Error.Code)
	})

	t.Run("missing value", func(t *testing.T) {
		rec := put(preference.KeyBcryptStrength, `{}`)
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeResponse(t, rec).Error.Code)
	})

	t.Run("unknown key", func(t *testing.T) {
		rec := get("colour")
		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
		assert.Equal(t, "PREFERENCE_NOT_FOUND", decodeResponse(t, rec).Error.Code)
	})
}
