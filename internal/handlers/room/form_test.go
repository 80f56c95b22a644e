package room

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"elc/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields map[string][]string, withImage bool) *http.Request {
	t.Helper()

	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	for name, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(name, value))
		}
	}

	if withImage {
		part, err := writer.CreateFormFile("image", "hall.png")
		require.NoError(t, err)

		_, err = part.Write([]byte("\x89PNG"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func TestReadRoomForm(t *testing.T) {
	t.Run("full form", func(t *testing.T) {
		req := multipartRequest(t, map[string][]string{
			"name":      {" Hall A "},
			"building":  {"Main"},
			"capacity":  {"40"},
			"equipment": {"projector", "whiteboard"},
			"active":    {"false"},
		}, true)

		form, err := readRoomForm(req)
		require.NoError(t, err)
		defer form.close()

		assert.Equal(t, "Hall A", form.name)
		assert.Equal(t, "Main", form.building)
		require.NotNil(t, form.capacity)
		assert.Equal(t, 40, *form.capacity)
		assert.Equal(t, []string{"projector", "whiteboard"}, form.equipment)
		require.NotNil(t, form.active)
		assert.False(t, *form.active)
		require.NotNil(t, form.image)
		assert.Equal(t, "hall.png", form.image.Filename)
	})

	t.Run("optional fields left out", func(t *testing.T) {
		form, err := readRoomForm(multipartRequest(t, map[string][]string{"name": {"Lab 3"}}, false))
		require.NoError(t, err)

		assert.Nil(t, form.capacity)
		assert.Nil(t, form.active)
		assert.Nil(t, form.image)
		assert.Nil(t, form.file)
	})

	t.Run("capacity is not a number", func(t *testing.T) {
		_, err := readRoomForm(multipartRequest(t, map[string][]string{"capacity": {"forty"}}, false))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("active is not a boolean", func(t *testing.T) {
		_, err := readRoomForm(multipartRequest(t, map[string][]string{"active": {"maybe"}}, false))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/rooms", bytes.NewBufferString(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")

		_, err := readRoomForm(req)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
