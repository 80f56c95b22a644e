package validator_test

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"elc/shared/failure"
	"elc/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomRequest struct {
	Name     string `json:"name"     validate:"required,max=20"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Capacity int    `json:"capacity" validate:"gte=0,lte=500"`
	Kind     string `json:"kind"     validate:"oneof=lecture lab seminar"`
}

func validRoom() roomRequest {
	return roomRequest{Name: "Hall A", Capacity: 40, Kind: "lecture"}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *roomRequest)
		message string
	}{
		{name: "valid", mutate: func(*roomRequest) {}},
		{name: "missing name", mutate: func(r *roomRequest) { r.Name = "" }, message: "name is required"},
		{name: "name too long", mutate: func(r *roomRequest) { r.Name = strings.Repeat("x", 21) }, message: "name must be at most 20"},
		{name: "bad email", mutate: func(r *roomRequest) { r.Email = "nope" }, message: "email must be a valid email address"},
		{name: "negative capacity", mutate: func(r *roomRequest) { r.Capacity = -1 }, message: "capacity must be greater than or equal to 0"},
		{name: "capacity over limit", mutate: func(r *roomRequest) { r.Capacity = 501 }, message: "capacity must be less than or equal to 500"},
		{name: "unknown kind", mutate: func(r *roomRequest) { r.Kind = "gym" }, message: "kind must be one of lecture lab seminar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRoom()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)

			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("staff@elc.test", "required,email"))
	assert.NoError(t, validator.ValidateVar("9:30 AM", "clock12h"))

	err := validator.ValidateVar("", "required")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "valid", body: `{"name":"Hall A","capacity":40,"kind":"lab"}`},
		{name: "fails validation", body: `{"name":"","capacity":40,"kind":"lab"}`, message: "name is required"},
		{name: "malformed", body: `{"name":`, message: "failed to decode request body"},
		{name: "empty body", body: ``, message: "request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req roomRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.message == "" {
				require.NoError(t, err)
				assert.Equal(t, "Hall A", req.Name)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

type bookingWindow struct {
	Date  string `json:"date"       validate:"required,isodate"`
	Start string `json:"start_time" validate:"required,clock12h"`
}

func TestClockAndDateTags(t *testing.T) {
	tests := []struct {
		name    string
		data    bookingWindow
		message string
	}{
		{name: "valid", data: bookingWindow{Date: "2025-03-10", Start: "9:30 AM"}},
		{name: "lower case meridiem", data: bookingWindow{Date: "2025-03-10", Start: "09:30 pm"}},
		{name: "24 hour clock", data: bookingWindow{Date: "2025-03-10", Start: "13:30"}, message: "start_time must be a 12-hour time such as 9:30 AM"},
		{name: "bad minutes", data: bookingWindow{Date: "2025-03-10", Start: "9:75 AM"}, message: "start_time must be a 12-hour time such as 9:30 AM"},
		{name: "bad date", data: bookingWindow{Date: "10/03/2025", Start: "9:30 AM"}, message: "date must be a date in YYYY-MM-DD format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

type upload struct {
	Photo   *multipart.FileHeader `json:"photo"   validate:"omitempty,mimetypes=image/png image/jpeg,maxfilesize=1"`
	Encoded string                `json:"encoded" validate:"omitempty,mimetypes=image/png"`
}

func fileHeader(contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "photo",
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
		Size:     size,
	}
}

func TestFileTags(t *testing.T) {
	tests := []struct {
		name    string
		data    upload
		message string
	}{
		{name: "png within limit", data: upload{Photo: fileHeader("image/png", 512*1024)}},
		{name: "nothing uploaded", data: upload{}},
		{name: "wrong type", data: upload{Photo: fileHeader("application/pdf", 10)}, message: "photo must be one of image/png image/jpeg"},
		{name: "too large", data: upload{Photo: fileHeader("image/jpeg", 2<<20)}, message: "photo must not exceed 1 MB"},
		{name: "data url", data: upload{Encoded: "data:image/png;base64,iVBORw0KGgo="}},
		{name: "data url wrong type", data: upload{Encoded: "data:text/plain;base64,aGk="}, message: "encoded must be one of image/png"},
		{name: "not a data url", data: upload{Encoded: "plain text"}, message: "encoded must be one of image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
