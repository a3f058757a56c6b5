package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const photoPrefix = "installs"

// PhotoPath builds installs/{name}_{unix}_{filename} with the applicant
// name lowercased and spaces turned into underscores.
func PhotoPath(name, filename string, at time.Time) string {
	clean := strings.ToLower(strings.TrimSpace(name))
	clean = strings.Join(strings.Fields(clean), "_")
	clean = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, clean)
	if clean == "" {
		clean = "applicant"
	}

	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == "/" || base == "" {
		base = "photo"
	}
	return path.Join(photoPrefix, fmt.Sprintf("%s_%d_%s", clean, at.Unix(), base))
}

// Bucket is object storage for uploaded photos.
type Bucket interface {
	// Put stores the object and returns a publicly resolvable URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// LocalBucket keeps objects on disk and serves them under /uploads.
type LocalBucket struct {
	Dir     string
	BaseURL string
}

func (b *LocalBucket) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	dst := filepath.Join(b.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(b.BaseURL, "/") + "/uploads/" + key, nil
}

// HTTPBucket talks to a Supabase-style storage REST API.
type HTTPBucket struct {
	Endpoint string
	Bucket   string
	Key      string
	Client   *http.Client
}

func NewHTTPBucket(endpoint, bucket, key string) *HTTPBucket {
	return &HTTPBucket{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Bucket:   bucket,
		Key:      key,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *HTTPBucket) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	objectPath := url.PathEscape(b.Bucket) + "/" + escapeKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.Endpoint+"/object/"+objectPath, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+b.Key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := b.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: %s: %s", key, resp.Status, bytes.TrimSpace(msg))
	}
	return b.Endpoint + "/object/public/" + objectPath, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Photo is one uploaded file from the application form.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PhotoUploader stores applicant photos best-effort.
type PhotoUploader struct {
	bucket   Bucket
	maxBytes int64
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewPhotoUploader(bucket Bucket, maxBytes int64, log logrus.FieldLogger) *PhotoUploader {
	return &PhotoUploader{bucket: bucket, maxBytes: maxBytes, log: log, now: time.Now}
}

// Upload returns the public URL, or "" when the photo could not be stored.
// A failed photo never fails the application.
func (u *PhotoUploader) Upload(ctx context.Context, applicantName string, p Photo) string {
	if u == nil || u.bucket == nil || p.Body == nil {
		return ""
	}
	log := u.log.WithFields(logrus.Fields{"filename": p.Filename, "size": p.Size})

	if u.maxBytes > 0 && p.Size > u.maxBytes {
		log.Warn("photo rejected: too large")
		return ""
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(p.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		log.WithError(err).Warn("photo rejected: unreadable")
		return ""
	}
	head = head[:n]
	ct := http.DetectContentType(head)
	if !strings.HasPrefix(ct, "image/") {
		log.WithField("content_type", ct).Warn("photo rejected: not an image")
		return ""
	}

	var body io.Reader = io.MultiReader(bytes.NewReader(head), p.Body)
	if u.maxBytes > 0 {
		// the declared size is client-supplied; count the real bytes
		data, err := io.ReadAll(io.LimitReader(body, u.maxBytes+1))
		if err != nil {
			log.WithError(err).Warn("photo rejected: unreadable")
			return ""
		}
		if int64(len(data)) > u.maxBytes {
			log.Warn("photo rejected: too large")
			return ""
		}
		body = bytes.NewReader(data)
	}

	key := PhotoPath(applicantName, p.Filename, u.now())
	publicURL, err := u.bucket.Put(ctx, key, ct, body)
	if err != nil {
		log.WithError(err).Warn("photo upload failed")
		return ""
	}
	log.WithField("key", key).Info("photo uploaded")
	return publicURL
}
