// Package qr builds and checks the payload carried by attendance QR codes.
//
// A payload is scannable from EarlyScan before the booking starts until the
// booking ends. ExpiresAt is issued equal to the booking end and is checked
// as well, so both bounds agree.
package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"elc/config"
	"elc/shared/base64"
	"elc/shared/constant"
	"elc/shared/timeslot"
	"elc/shared/timezone"

	"github.com/skip2/go-qrcode"
)

const (
	defaultEarlyScan = 5 * time.Minute
	defaultLateGrace = 5 * time.Minute
	defaultImageSize = 256

	contentTypePNG = "image/png"
)

var (
	ErrMalformedPayload = errors.New("malformed qr payload")
	ErrOutsideWindow    = errors.New("qr code is not valid at this time")
)

type Payload struct {
	BookingID string    `json:"bookingId"`
	UserID    string    `json:"userId"`
	RoomID    string    `json:"roomId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Window is the scannable range of a payload. Scans after LateAfter are late.
type Window struct {
	Start     time.Time
	LateAfter time.Time
	End       time.Time
}

// Contains reports whether now lies within [Start, End].
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

func (w Window) IsLate(now time.Time) bool {
	return now.After(w.LateAfter)
}

type Policy struct {
	EarlyScan time.Duration
	LateGrace time.Duration
	ImageSize int
	Location  *time.Location
}

func NewPolicy(cfg *config.Config) Policy {
	policy := Policy{
		EarlyScan: time.Duration(cfg.App.Attendance.EarlyScanMinutes) * time.Minute,
		LateGrace: time.Duration(cfg.App.Attendance.LateGraceMinutes) * time.Minute,
		ImageSize: cfg.App.Attendance.QRImageSizePixels,
		Location:  timezone.GetLocation(),
	}

	if policy.EarlyScan <= 0 {
		policy.EarlyScan = defaultEarlyScan
	}

	if policy.LateGrace <= 0 {
		policy.LateGrace = defaultLateGrace
	}

	if policy.ImageSize <= 0 {
		policy.ImageSize = defaultImageSize
	}

	if policy.Location == nil {
		policy.Location = time.UTC
	}

	return policy
}

// Window recomputes the booking's instants from the payload's date and clock
// text in the policy location.
func (p Policy) Window(payload Payload) (Window, error) {
	day, err := time.ParseInLocation(constant.DayFormat, payload.Date, p.Location)
	if err != nil {
		return Window{}, fmt.Errorf("%w: date %q", ErrMalformedPayload, payload.Date)
	}

	interval, err := timeslot.NewInterval(payload.StartTime, payload.EndTime)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	start := timeslot.At(day, interval.Start, p.Location)

	return Window{
		Start:     start.Add(-p.EarlyScan),
		LateAfter: start.Add(p.LateGrace),
		End:       timeslot.At(day, interval.End, p.Location),
	}, nil
}

// Check returns the payload's window when now is inside it and not past
// ExpiresAt.
func (p Policy) Check(payload Payload, now time.Time) (Window, error) {
	window, err := p.Window(payload)
	if err != nil {
		return window, err
	}

	if !window.Contains(now) {
		return window, ErrOutsideWindow
	}

	if !payload.ExpiresAt.IsZero() && now.After(payload.ExpiresAt) {
		return window, ErrOutsideWindow
	}

	return window, nil
}

// NewPayload describes a booking slot. ExpiresAt is set to the slot end.
func (p Policy) NewPayload(bookingID, userID, roomID string, day time.Time, startTime, endTime string) (Payload, error) {
	payload := Payload{
		BookingID: bookingID,
		UserID:    userID,
		RoomID:    roomID,
		Date:      day.Format(constant.DayFormat),
		StartTime: startTime,
		EndTime:   endTime,
	}

	window, err := p.Window(payload)
	if err != nil {
		return payload, err
	}

	payload.ExpiresAt = window.End

	return payload, nil
}

// Codec turns payloads into the opaque string carried by the QR code.
type Codec interface {
	Encode(payload Payload) (string, error)
	Decode(data string) (Payload, error)
}

type jsonCodec struct{}

func NewCodec() Codec {
	return jsonCodec{}
}

func (jsonCodec) Encode(payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}

	return string(data), nil
}

func (jsonCodec) Decode(data string) (Payload, error) {
	var payload Payload

	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if payload.BookingID == constant.Empty {
		return payload, fmt.Errorf("%w: missing booking id", ErrMalformedPayload)
	}

	return payload, nil
}

// Render draws content as a PNG QR code and returns it as a data URL.
func Render(content string, size int) (string, error) {
	if size <= 0 {
		size = defaultImageSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}

	return base64.EncodeDataURL(contentTypePNG, png), nil
}
