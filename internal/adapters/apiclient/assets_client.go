package apiclient_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/hashicorp/go-retryablehttp"
)

// AssetsClient implements port.AssetUploaderPort against POST /assets.
type AssetsClient struct {
	*client
}

func NewAssetsClient(cfg Config) (*AssetsClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AssetsClient{client: c}, nil
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *AssetsClient) Upload(ctx context.Context, cred port.Credential, file domain.MediaFile, folder string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("folder", folder); err != nil {
		return "", err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assets", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.do(ctx, req, cred, &out); err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	if out.URL == "" {
		return "", errors.New("upload response has no url")
	}
	return out.URL, nil
}
