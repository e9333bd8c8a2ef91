/*
Package storage holds the pipeline's persistence: a blob store for PDFs, page
images and item crops, and a record store for the per-stage tables.

Both come in three flavours: local disk for single-host runs, in-memory for
tests, and AWS (S3 + DynamoDB) for the deployed workflow.
*/
package storage

import (
	"context"
	"mime"
	"path"
	"strings"

	"github.com/tuumbleweed/xerr"
)

type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) *xerr.Error
	Download(ctx context.Context, key string) ([]byte, *xerr.Error)
}

// ContentType guesses a MIME type from the key's extension.
func ContentType(key string) string {
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

// cleanKey strips leading slashes and dot segments so a key cannot escape its root.
func cleanKey(key string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return strings.TrimPrefix(cleaned, "/")
}
