package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/storage"
)

func populateDriverPhotoURL(driver *models.Driver, uploader storage.FileUploader) {
	if driver != nil && driver.PhotoKey != nil && *driver.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*driver.PhotoKey)
		if url != "" {
			driver.PhotoURL = &url
		}
	}
}

func populateRacePosterURL(race *models.Race, uploader storage.FileUploader) {
	if race != nil && race.PosterKey != nil && *race.PosterKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*race.PosterKey)
		if url != "" {
			race.PosterURL = &url
		}
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
