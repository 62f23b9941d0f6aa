package mail

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"helium-admin/internal/infra"
)

// ImageAsset ties a template image key to its file on disk and the
// Content-ID the HTML shells reference it by.
type ImageAsset struct {
	Key      string
	Filename string
	CID      string
}

// emailImages is ordered so attachments always appear logo first.
var emailImages = []ImageAsset{
	{Key: "logo", Filename: "email-logo.png", CID: "email-logo"},
	{Key: "downtime_body", Filename: "downtime-body.png", CID: "downtime-body"},
	{Key: "uptime_body", Filename: "uptime-body.png", CID: "uptime-body"},
	{Key: "credits_body", Filename: "1Kcredits.png", CID: "credits-body"},
}

// ImageAssets returns the known template images.
func ImageAssets() []ImageAsset {
	out := make([]ImageAsset, len(emailImages))
	copy(out, emailImages)
	return out
}

// ResolveAttachments loads the inline images the HTML actually
// references by cid. A missing file is logged and skipped so the email
// still goes out without it.
func ResolveAttachments(htmlContent, assetDir string, logger infra.Logger) []Attachment {
	var out []Attachment
	for _, img := range emailImages {
		if !strings.Contains(htmlContent, "cid:"+img.CID) {
			continue
		}
		data, err := readImage(assetDir, img.Filename)
		if err != nil {
			logger.Warn().Err(err).Str("image", img.Filename).Msg("email image not found, sending without it")
			continue
		}
		out = append(out, Attachment{
			Filename:  img.Filename,
			ContentID: img.CID,
			Data:      data,
		})
	}
	return out
}

// readImage reads an asset, trying the legacy Email.png name when the
// logo is requested under its current name.
func readImage(dir, filename string) ([]byte, error) {
	candidates := []string{filename}
	if filename == "email-logo.png" {
		candidates = append(candidates, "Email.png")
	}
	var lastErr error
	for _, name := range candidates {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ImageDataURI loads an asset and encodes it as a base64 data URI for
// clients that preview templates without a mail transport.
func ImageDataURI(assetDir, filename string) (string, error) {
	data, err := readImage(assetDir, filename)
	if err != nil {
		return "", err
	}
	mimeType := "image/png"
	if strings.HasSuffix(filename, ".jpg") || strings.HasSuffix(filename, ".jpeg") {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
