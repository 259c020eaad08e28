package mastodon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

var errMediaProcessing = errors.New("media still processing")

// mediaService implements app.MediaService using the Mastodon API.
type mediaService struct {
	client *Client
	// newBackOff builds the schedule used to poll for server-side processing.
	newBackOff func() backoff.BackOff
}

// NewMediaService creates a MediaService backed by Mastodon.
func NewMediaService(client *Client) *mediaService {
	return &mediaService{
		client: client,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 2 * time.Minute
			return b
		},
	}
}

// progressReader reports bytes read so far.
type progressReader struct {
	r     io.Reader
	sent  atomic.Int64
	total int64
	fn    app.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.fn(p.sent.Add(int64(n)), p.total)
	}
	return n, err
}

func (s *mediaService) Upload(ctx context.Context, path, description string, progress app.ProgressFunc) (domain.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("opening media: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("reading media: %w", err)
	}
	if info.IsDir() {
		return domain.Attachment{}, fmt.Errorf("%s is a directory", path)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, &progressReader{r: f, total: info.Size(), fn: progress})
		}
		if err == nil && strings.TrimSpace(description) != "" {
			err = mw.WriteField("description", strings.TrimSpace(description))
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	data, err := s.client.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/v2/media",
		body:        pr,
		contentType: mw.FormDataContentType(),
	})
	// Unblocks the writer goroutine when the request ended early.
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("uploading media: %w", err)
	}
	m, err := decode[mastodonMediaAttachment](data, "media")
	if err != nil {
		return domain.Attachment{}, err
	}
	if strings.TrimSpace(m.URL) != "" {
		return mapAttachment(m), nil
	}
	return s.awaitProcessed(ctx, m.ID)
}

// awaitProcessed polls the attachment until the server has a URL for it.
func (s *mediaService) awaitProcessed(ctx context.Context, id string) (domain.Attachment, error) {
	var out mastodonMediaAttachment
	op := func() error {
		data, err := s.client.Get(ctx, "/api/v1/media/"+id)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		m, err := decode[mastodonMediaAttachment](data, "media")
		if err != nil {
			return backoff.Permanent(err)
		}
		if strings.TrimSpace(m.URL) == "" {
			return errMediaProcessing
		}
		out = m
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return domain.Attachment{}, fmt.Errorf("processing media %s: %w", id, err)
	}
	return mapAttachment(out), nil
}
