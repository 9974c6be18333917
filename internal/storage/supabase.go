package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const listPageSize = 1000

// SupabaseStore talks to the Supabase Storage REST API for a single bucket.
type SupabaseStore struct {
	httpClient *resty.Client
	bucket     string
	logger     *zap.Logger
}

type supabaseListRequest struct {
	Prefix string             `json:"prefix"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	SortBy supabaseListSortBy `json:"sortBy"`
}

type supabaseListSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type supabaseObject struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

func NewSupabaseStore(baseURL string, apiKey string, bucket string, logger *zap.Logger) (*SupabaseStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase storage url is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("supabase storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		client.SetAuthToken(apiKey).SetHeader("apikey", apiKey)
	}

	return &SupabaseStore{
		httpClient: client,
		bucket:     strings.TrimSpace(bucket),
		logger:     logger.Named("supabase_storage"),
	}, nil
}

func (store *SupabaseStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	objectPath, err := store.objectPath(key)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := store.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(objectPath)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if resp.IsError() {
		return store.responseError("upload", key, resp)
	}

	store.logger.Debug("blob uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func (store *SupabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	objectPath, err := store.objectPath(key)
	if err != nil {
		return nil, err
	}

	resp, err := store.httpClient.R().
		SetContext(ctx).
		Get(objectPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	if resp.IsError() {
		return nil, store.responseError("download", key, resp)
	}
	return resp.Body(), nil
}

func (store *SupabaseStore) Delete(ctx context.Context, key string) error {
	objectPath, err := store.objectPath(key)
	if err != nil {
		return err
	}

	resp, err := store.httpClient.R().
		SetContext(ctx).
		Delete(objectPath)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if resp.IsError() {
		return store.responseError("delete", key, resp)
	}
	return nil
}

// List returns full keys under prefix. Supabase lists one folder level at a time,
// so prefix is split into the folder and a name filter.
func (store *SupabaseStore) List(ctx context.Context, prefix string) ([]string, error) {
	folder, namePrefix := splitListPrefix(prefix)

	keys := make([]string, 0)
	for offset := 0; ; offset += listPageSize {
		objects := make([]supabaseObject, 0)
		resp, err := store.httpClient.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(supabaseListRequest{
				Prefix: folder,
				Limit:  listPageSize,
				Offset: offset,
				SortBy: supabaseListSortBy{Column: "name", Order: "asc"},
			}).
			SetResult(&objects).
			Post("/object/list/" + url.PathEscape(store.bucket))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		if resp.IsError() {
			return nil, store.responseError("list", prefix, resp)
		}

		for _, object := range objects {
			if object.ID == nil || !strings.HasPrefix(object.Name, namePrefix) {
				continue
			}
			if folder == "" {
				keys = append(keys, object.Name)
				continue
			}
			keys = append(keys, folder+"/"+object.Name)
		}
		if len(objects) < listPageSize {
			break
		}
	}
	return keys, nil
}

func (store *SupabaseStore) objectPath(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	segments := strings.Split(cleaned, "/")
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return "/object/" + url.PathEscape(store.bucket) + "/" + strings.Join(segments, "/"), nil
}

func (store *SupabaseStore) responseError(operation string, key string, resp *resty.Response) error {
	if isSupabaseNotFound(resp) {
		return ErrBlobNotFound
	}
	store.logger.Warn("supabase storage request failed",
		zap.String("operation", operation),
		zap.String("key", key),
		zap.Int("status_code", resp.StatusCode()),
	)
	return fmt.Errorf("%s %s: supabase storage status %d: %s", operation, key, resp.StatusCode(), strings.TrimSpace(resp.String()))
}

// Older Storage API versions answer a missing object with 400 and a "not_found" body.
func isSupabaseNotFound(resp *resty.Response) bool {
	if resp.StatusCode() == http.StatusNotFound {
		return true
	}
	if resp.StatusCode() != http.StatusBadRequest {
		return false
	}
	body := strings.ToLower(resp.String())
	return strings.Contains(body, "not_found") || strings.Contains(body, "not found")
}

func splitListPrefix(prefix string) (string, string) {
	prefix = strings.TrimLeft(prefix, "/")
	index := strings.LastIndex(prefix, "/")
	if index < 0 {
		return "", prefix
	}
	return prefix[:index], prefix[index+1:]
}
