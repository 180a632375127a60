package host

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/drive"
)

// Message size limits. Browsers refuse host replies larger than 1 MiB.
const (
	MaxRequestSize  = 64 << 20
	MaxResponseSize = 1 << 20
)

// ErrMessageTooLarge is returned for frames over the size limits.
var ErrMessageTooLarge = errors.New("native message too large")

// Action names a request type.
type Action string

// Supported actions.
const (
	ActionGetAuthToken   Action = "drive:getAuthToken"
	ActionIsConnected    Action = "drive:isConnected"
	ActionUploadBackup   Action = "drive:uploadBackup"
	ActionListBackups    Action = "drive:listBackups"
	ActionDownloadBackup Action = "drive:downloadBackup"
	ActionDisconnect     Action = "drive:disconnect"
)

// Request is one message from the extension.
type Request struct {
	ID     string `json:"id,omitempty"`
	Action Action `json:"action"`
	// FileID selects the backup for drive:downloadBackup.
	FileID string `json:"fileId,omitempty"`
	// Interactive lets drive:getAuthToken ask the user for consent.
	Interactive bool `json:"interactive,omitempty"`
}

// Response answers a Request.
type Response struct {
	ID        string `json:"id,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Token     string `json:"token,omitempty"`
	Connected *bool  `json:"connected,omitempty"`
	// Backups is set, possibly empty, for drive:listBackups only.
	Backups *[]drive.BackupMeta `json:"backups,omitempty"`
	// File describes the object written by drive:uploadBackup; absent when
	// the upload was skipped by the cooldown.
	File *drive.BackupMeta `json:"file,omitempty"`
}

// ReadMessage reads one length-prefixed frame and decodes it into v.
// It returns io.EOF when r is exhausted between frames.
func ReadMessage(r io.Reader, v any) error {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return errors.Wrap(err, "reading message length")
	}
	if size > MaxRequestSize {
		return errors.Wrapf(ErrMessageTooLarge, "%d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return errors.Wrap(err, "reading message body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// WriteMessage encodes v as one length-prefixed frame.
func WriteMessage(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding message")
	}
	if len(body) > MaxResponseSize {
		return errors.Wrapf(ErrMessageTooLarge, "%d bytes", len(body))
	}

	var buf bytes.Buffer
	buf.Grow(4 + len(body))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(body)))
	buf.Write(body)
	_, err = w.Write(buf.Bytes())
	return errors.Wrap(err, "writing message")
}

// decodeError marks a well-framed message whose JSON is invalid; the
// stream is still usable afterwards.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decoding message: " + e.err.Error()
}

func (e *decodeError) Unwrap() error {
	return e.err
}
