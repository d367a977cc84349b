package user

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// encodeImage turns raw file bytes into a base64 data: URL after sniffing
// that they hold an image.
func encodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// SelectImage stages a picture for preview, replacing any earlier choice.
// Nothing is sent until ConfirmImage.
func (e *ProfileEditor) SelectImage(data []byte) error {
	encoded, err := encodeImage(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingImage = encoded
	e.uploadError = ""
	return nil
}

// PendingImage is the staged data: URL, or "" when nothing is staged.
func (e *ProfileEditor) PendingImage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingImage
}

// Uploading reports whether ConfirmImage is waiting for the server.
func (e *ProfileEditor) Uploading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uploading
}

// UploadError is the message of the last failed upload, or "".
func (e *ProfileEditor) UploadError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uploadError
}

// DiscardImage drops the staged picture without uploading it.
func (e *ProfileEditor) DiscardImage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingImage = ""
	e.uploadError = ""
}

// ConfirmImage uploads the staged picture. The session user takes the URL
// the server answers with, or the staged data: URL when the answer has
// none. On failure the picture stays staged for another try.
func (e *ProfileEditor) ConfirmImage(ctx context.Context) error {
	e.mu.Lock()
	if e.pendingImage == "" {
		e.mu.Unlock()
		return nil
	}
	if e.uploading {
		e.mu.Unlock()
		return ErrBusy
	}
	sent := e.pendingImage
	e.uploading = true
	e.uploadError = ""
	e.mu.Unlock()

	var out userEnvelope
	if err := e.client.Put(ctx, pathPicture, PictureUpdate{ProfilePicture: sent}, &out); err != nil {
		e.log.Warn("profile picture upload failed", zap.Error(err))
		e.mu.Lock()
		e.uploading = false
		e.uploadError = remoteMessage(err, msgUploadFailed)
		e.mu.Unlock()
		return err
	}

	picture := sent
	if out.User != nil && out.User.ProfilePicture != "" {
		picture = out.User.ProfilePicture
	}
	e.session.UpdateCurrentUser(func(u *User) { u.ProfilePicture = picture })

	e.mu.Lock()
	defer e.mu.Unlock()
	e.uploading = false
	// a picture chosen during the upload stays staged
	if e.pendingImage == sent {
		e.pendingImage = ""
	}
	return nil
}
