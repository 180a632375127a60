package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
)

// ObjectName returns the remote name for a backup taken at timestamp (ms).
func (c *Client) ObjectName(timestamp int64) string {
	return fmt.Sprintf("%s-%d.json", c.namePrefix, timestamp)
}

// Upload stores b as a new remote object and prunes old backups.
//
// When the previous successful upload is within the cooldown the upload is
// skipped: Upload returns nil, nil and makes no request. A missing token
// fails with auth.ErrNotAuthenticated before any request is made.
func (c *Client) Upload(ctx context.Context, b backup.BookmarkBackup) (*BackupMeta, error) {
	now := c.now()
	r := c.limiter.ReserveN(now, 1)
	if !r.OK() || r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		c.logger.Debug("drive upload skipped: cooldown active", "cooldown", c.cooldown)
		return nil, nil
	}

	meta, err := c.create(ctx, b)
	if err != nil {
		// Only successful uploads start the cooldown.
		r.CancelAt(now)
		return nil, err
	}
	c.logger.Info("uploaded backup to drive", "name", meta.Name, "id", meta.ID)

	c.prune(ctx)
	return meta, nil
}

func (c *Client) create(ctx context.Context, b backup.BookmarkBackup) (*BackupMeta, error) {
	body, contentType, err := c.multipartBody(b)
	if err != nil {
		return nil, err
	}

	q := url.Values{
		"uploadType": {"multipart"},
		"fields":     {"id,name,modifiedTime"},
	}
	resp, err := c.do(ctx, "upload", jsonRequest(http.MethodPost, c.uploadBase+"/files?"+q.Encode(), body, contentType))
	if err != nil {
		return nil, err
	}

	var meta BackupMeta
	if err := decodeJSON(resp, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// multipartBody builds a multipart/related body: file metadata, then content.
func (c *Client) multipartBody(b backup.BookmarkBackup) ([]byte, string, error) {
	metadata, err := json.Marshal(map[string]any{
		"name":     c.ObjectName(b.Timestamp),
		"parents":  []string{c.space},
		"mimeType": "application/json",
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding file metadata")
	}
	content, err := json.Marshal(b)
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding backup")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary("bbs-" + uuid.NewString()); err != nil {
		return nil, "", errors.Wrap(err, "setting multipart boundary")
	}
	for _, part := range []struct {
		contentType string
		data        []byte
	}{
		{"application/json; charset=UTF-8", metadata},
		{"application/json", content},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, "", errors.Wrap(err, "creating multipart section")
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, "", errors.Wrap(err, "writing multipart section")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}
	return buf.Bytes(), "multipart/related; boundary=" + mw.Boundary(), nil
}

// List returns remote backups, newest first by modification time.
func (c *Client) List(ctx context.Context) ([]BackupMeta, error) {
	q := url.Values{
		"q":        {fmt.Sprintf("name contains '%s' and trashed=false", c.namePrefix)},
		"spaces":   {c.space},
		"orderBy":  {"modifiedTime desc"},
		"fields":   {"files(id,name,modifiedTime)"},
		"pageSize": {"100"},
	}
	resp, err := c.do(ctx, "list", jsonRequest(http.MethodGet, c.apiBase+"/files?"+q.Encode(), nil, ""))
	if err != nil {
		return nil, err
	}

	var out struct {
		Files []BackupMeta `json:"files"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if out.Files == nil {
		out.Files = []BackupMeta{}
	}
	return out.Files, nil
}

// Download fetches and decodes the backup stored as fileID.
func (c *Client) Download(ctx context.Context, fileID string) (backup.BookmarkBackup, error) {
	if fileID == "" {
		return backup.BookmarkBackup{}, errors.New("file id is required")
	}
	u := c.apiBase + "/files/" + url.PathEscape(fileID) + "?alt=media"
	resp, err := c.do(ctx, "download", jsonRequest(http.MethodGet, u, nil, ""))
	if err != nil {
		return backup.BookmarkBackup{}, err
	}

	var b backup.BookmarkBackup
	if err := decodeJSON(resp, &b); err != nil {
		return backup.BookmarkBackup{}, err
	}
	return b, nil
}

// Delete removes the remote object fileID.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return errors.New("file id is required")
	}
	u := c.apiBase + "/files/" + url.PathEscape(fileID)
	resp, err := c.do(ctx, "delete", jsonRequest(http.MethodDelete, u, nil, ""))
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// prune deletes backups beyond maxBackups in list order (oldest last).
// Failures are logged and never returned.
func (c *Client) prune(ctx context.Context) {
	files, err := c.List(ctx)
	if err != nil {
		c.logger.Warn("listing drive backups for pruning", "error", err)
		return
	}
	if len(files) <= c.maxBackups {
		return
	}
	for _, f := range files[c.maxBackups:] {
		if err := c.Delete(ctx, f.ID); err != nil {
			c.logger.Warn("pruning drive backup", "name", f.Name, "id", f.ID, "error", err)
			continue
		}
		c.logger.Debug("pruned drive backup", "name", f.Name, "id", f.ID)
	}
}
