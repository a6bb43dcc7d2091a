package handlers

import (
	"context"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// PhotoUploader issues pre-signed photo uploads
type PhotoUploader interface {
	GetPreSignedURL(ctx context.Context, userID, filename, contentType string) (*models.UploadResponse, error)
}

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService PhotoUploader
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService PhotoUploader) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadPhoto handles POST /api/v1/profiles/me/photos/upload
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Filename == "" {
		respondError(w, "filename is required", http.StatusBadRequest)
		return
	}

	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.photoService.GetPreSignedURL(ctx, userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", req.Filename).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", response.Photo.ID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}
