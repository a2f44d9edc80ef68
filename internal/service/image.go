package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Image folders
const (
	RecipeImages = "recipes/images"
	AvatarImages = "users/avatars"
)

// ImageStore persists uploaded images and returns a stable reference to them.
// Delete removes an image by the reference Save returned.
type ImageStore interface {
	Save(ctx context.Context, folder, dataURI string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// discardImage removes an image whose database write failed.
func discardImage(ctx context.Context, images ImageStore, ref string) {
	if ref == "" {
		return
	}
	if err := images.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logging.Warn().Err(err).Str("image", ref).Msg("failed to remove orphaned image")
	}
}

// EncodedImage is an image decoded from a data URI and re-encoded for storage.
type EncodedImage struct {
	Data        []byte
	Ext         string
	ContentType string
}

// DecodeDataURI parses "data:image/<fmt>;base64,<payload>", fixes the
// orientation, shrinks it to maxWidth and re-encodes it.
func DecodeDataURI(dataURI string, maxWidth int) (*EncodedImage, error) {
	header, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, invalid("image must be a base64 encoded data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid("image is not valid base64")
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, invalid("unsupported or corrupted image")
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	return encodeImage(img, strings.TrimPrefix(header, "data:image/"))
}

func encodeImage(img image.Image, format string) (*EncodedImage, error) {
	out := &EncodedImage{Ext: "png", ContentType: "image/png"}
	target := imaging.PNG
	if format == "jpeg" || format == "jpg" {
		out.Ext, out.ContentType, target = "jpg", "image/jpeg", imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, target); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func objectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+"."+ext)
}

// LocalStore writes images below a media root served under mediaURL.
type LocalStore struct {
	root     string
	mediaURL string
	maxWidth int
}

func NewLocalStore(root, mediaURL string, maxWidth int) *LocalStore {
	return &LocalStore{
		root:     root,
		mediaURL: strings.TrimSuffix(mediaURL, "/"),
		maxWidth: maxWidth,
	}
}

func (s *LocalStore) Save(_ context.Context, folder, dataURI string) (string, error) {
	img, err := DecodeDataURI(dataURI, s.maxWidth)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, img.Ext)
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		metrics.ImageUploads.WithLabelValues("local", "error").Inc()
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		metrics.ImageUploads.WithLabelValues("local", "error").Inc()
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	metrics.ImageUploads.WithLabelValues("local", "ok").Inc()
	return s.mediaURL + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.mediaURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("image %q is not stored under %s", ref, s.mediaURL)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// S3Store uploads images to a bucket. Uploads go through a circuit breaker
// so an unavailable bucket fails fast.
type S3Store struct {
	s3       *config.S3Config
	maxWidth int
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewS3Store(s3Config *config.S3Config, maxWidth int) *S3Store {
	settings := gobreaker.Settings{
		Name:        "s3-image-upload",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &S3Store{
		s3:       s3Config,
		maxWidth: maxWidth,
		breaker:  gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (s *S3Store) Save(ctx context.Context, folder, dataURI string) (string, error) {
	img, err := DecodeDataURI(dataURI, s.maxWidth)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, img.Ext)
	url, err := s.breaker.Execute(func() (string, error) {
		_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.s3.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(img.Data),
			ContentType: aws.String(img.ContentType),
		})
		if err != nil {
			return "", err
		}
		return s.s3.PublicURL(key), nil
	})
	if err != nil {
		metrics.ImageUploads.WithLabelValues("s3", "error").Inc()
		logging.Error().Err(err).Str("key", key).Msg("failed to upload image to S3")
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	metrics.ImageUploads.WithLabelValues("s3", "ok").Inc()
	return url, nil
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.s3.PublicURL(""))
	if !ok || key == "" {
		return fmt.Errorf("image %q is not stored in bucket %s", ref, s.s3.BucketName)
	}
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
