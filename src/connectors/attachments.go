package connectors

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// AttachmentClient uploads screenshot blobs to the external object store
// and returns the opaque path stored on the trade row.
type AttachmentClient struct {
	serviceKey string
	bucket     string
	http       *resty.Client
}

func NewAttachmentClient(baseURL, serviceKey, bucket string) *AttachmentClient {
	return &AttachmentClient{
		serviceKey: serviceKey,
		bucket:     bucket,
		http:       newRestyClient(baseURL),
	}
}

// Put stores a blob under the given key and returns its storage path.
func (c *AttachmentClient) Put(ctx context.Context, key string, blob []byte, contentType string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.serviceKey).
		SetHeader("Content-Type", contentType).
		SetBody(blob).
		Post(fmt.Sprintf("/object/%s/%s", c.bucket, key))
	if err != nil {
		return "", fmt.Errorf("attachment upload: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("attachment upload: unexpected status %d", resp.StatusCode())
	}

	path := fmt.Sprintf("%s/%s", c.bucket, key)

	logger.WithFields(map[string]interface{}{
		"connector": "attachments",
		"path":      path,
		"bytes":     len(blob),
	}).Info("Attachment stored")

	return path, nil
}
