package storage

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Cloudinary configuration via environment variables:
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET,
// CLOUDINARY_FOLDER (optional). Issue photos and clips are pushed here so
// the app servers stay stateless.

// InitializeMedia warns at startup when media uploads are unconfigured.
// Uploads then fail per-request instead of crashing the server.
func InitializeMedia() {
	if os.Getenv("CLOUDINARY_CLOUD_NAME") == "" ||
		os.Getenv("CLOUDINARY_API_KEY") == "" ||
		os.Getenv("CLOUDINARY_API_SECRET") == "" {
		log.Println("Cloudinary credentials not set, media uploads disabled")
	}
}

// UploadBase64Media uploads a base64 payload (data URL or raw base64) to
// Cloudinary as a signed upload. resourceType is "image" or "video".
// Returns the hosted URL, or an error when the upload is rejected.
func UploadBase64Media(base64Src, publicID, resourceType string) (string, error) {
	if base64Src == "" {
		return "", fmt.Errorf("empty media payload")
	}
	if resourceType != "image" && resourceType != "video" {
		resourceType = "image"
	}

	payload := base64Src
	if i := strings.Index(base64Src, ","); i != -1 {
		payload = base64Src[i+1:]
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return "", fmt.Errorf("cloudinary credentials not configured")
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/" + resourceType + "/upload"

	finalPublicID := publicID
	if folder != "" && publicID != "" {
		finalPublicID = folder + "/" + publicID
	}

	prefix := "data:image/jpeg;base64,"
	if resourceType == "video" {
		prefix = "data:video/mp4;base64,"
	}

	form := url.Values{}
	form.Add("file", prefix+payload)
	form.Add("api_key", apiKey)
	if finalPublicID != "" {
		form.Add("public_id", finalPublicID)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Cloudinary signed uploads require a SHA1 over the sorted params.
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	if finalPublicID == "" {
		signatureString = fmt.Sprintf("timestamp=%s%s", timestamp, apiSecret)
	}
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
	form.Add("signature", signature)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != 200 {
		log.Printf("cloudinary upload failed status=%d body=%s", res.StatusCode, string(body))
		return "", fmt.Errorf("cloudinary upload failed with status %d", res.StatusCode)
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		return "", err
	}
	if cloudRes.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", cloudRes.Error.Message)
	}

	out := cloudRes.SecureURL
	if out == "" {
		out = cloudRes.URL
	}
	if out == "" {
		return "", fmt.Errorf("cloudinary returned no URL")
	}
	return out, nil
}
