package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	appconfig "crew-match-backend/internal/config"
	"crew-match-backend/internal/models"
	"crew-match-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLExpiry = 5 * time.Minute

// PhotoService issues pre-signed uploads for profile photos
type PhotoService struct {
	photoRepo   PhotoStore
	profileRepo ProfileStore
	presign     *s3.PresignClient
	s3Bucket    string
	publicURL   string
}

// NewPhotoService creates a new photo service
func NewPhotoService(photoRepo PhotoStore, profileRepo ProfileStore, cfg appconfig.AWSConfig) (*PhotoService, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	}

	return &PhotoService{
		photoRepo:   photoRepo,
		profileRepo: profileRepo,
		presign:     s3.NewPresignClient(s3Client),
		s3Bucket:    cfg.S3Bucket,
		publicURL:   strings.TrimRight(publicURL, "/"),
	}, nil
}

// GetPreSignedURL reserves the next photo slot of the caller's profile and
// returns a URL the client uploads the image to
func (s *PhotoService) GetPreSignedURL(ctx context.Context, userID, filename, contentType string) (*models.UploadResponse, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	photoID := uuid.New().String()

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}

	// profiles/{profile_id}/{photo_id}.ext
	key := fmt.Sprintf("profiles/%s/%s%s", profile.ID, photoID, ext)

	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	photo := &models.Photo{
		ID:        photoID,
		ProfileID: profile.ID,
		URL:       s.publicURL + "/" + key,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	return &models.UploadResponse{
		UploadURL: request.URL,
		Photo:     *photo,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}
