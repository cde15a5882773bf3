package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"

	"github.com/filedash/filedash/internal/models"
)

// Endpoint paths, relative to the API base URL.
const (
	PathMe         = "me/"
	PathProfile    = "profile/"
	PathExtensions = "my-file-extensions/"
	PathFiles      = "my-files/"
	PathUpload     = "upload/"
)

// UploadField is the multipart field name the upload endpoint expects.
const UploadField = "file"

func filePath(id models.FileID, suffix string) string {
	return "file/" + url.PathEscape(id.String()) + "/" + suffix
}

// Me returns the authenticated identity.
func (c *Client) Me(ctx context.Context) (*models.SessionUser, error) {
	var user models.SessionUser
	if _, err := c.Send(ctx, Request{Path: PathMe}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the extended profile.
func (c *Client) Profile(ctx context.Context) (*models.ProfileDetails, error) {
	var profile models.ProfileDetails
	if _, err := c.Send(ctx, Request{Path: PathProfile}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FileExtensions returns the extensions present in the user's files.
func (c *Client) FileExtensions(ctx context.Context) ([]string, error) {
	var exts []string
	if _, err := c.Send(ctx, Request{Path: PathExtensions}, &exts); err != nil {
		return nil, err
	}
	return exts, nil
}

// ListFiles returns the catalog for criteria. Both search and ext are always
// sent, empty when unset.
func (c *Client) ListFiles(ctx context.Context, criteria models.SearchCriteria) ([]models.FileRecord, error) {
	query := url.Values{}
	query.Set("search", criteria.Query)
	query.Set("ext", criteria.Extension)

	var files []models.FileRecord
	if _, err := c.Send(ctx, Request{Path: PathFiles, Query: query}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload sends content as a multipart form with a single "file" part.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	_, err = c.Send(ctx, Request{
		Method:      nethttp.MethodPost,
		Path:        PathUpload,
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
		Kind:        KindNone,
	}, nil)
	return err
}

// RawFile returns the base64 preview payload for id.
func (c *Client) RawFile(ctx context.Context, id models.FileID) (*models.RawFile, error) {
	var raw models.RawFile
	if _, err := c.Send(ctx, Request{Path: filePath(id, "raw/")}, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// Download returns the file's bytes.
func (c *Client) Download(ctx context.Context, id models.FileID) ([]byte, error) {
	resp, err := c.Send(ctx, Request{Path: filePath(id, "download/"), Kind: KindBlob}, nil)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DeleteFile removes the file.
func (c *Client) DeleteFile(ctx context.Context, id models.FileID) error {
	_, err := c.Send(ctx, Request{Method: nethttp.MethodDelete, Path: filePath(id, ""), Kind: KindNone}, nil)
	return err
}
