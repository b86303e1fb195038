// Package catalog reads channel uploads from the YouTube Data API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"sayless/internal/report"
)

const (
	// MaxPageSize is the largest page playlistItems.list will return.
	MaxPageSize = 50

	uploadsPrefixLen = 2
	shortsPrefix     = "UUSH"
)

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// RequestError wraps a failed catalog call with what was being asked for.
type RequestError struct {
	Op     string
	Target string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type Client struct {
	service  *youtube.Service
	location *time.Location
}

func NewService(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*youtube.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return svc, nil
}

// NewClient reports publish times in location.
func NewClient(service *youtube.Service, location *time.Location) *Client {
	return &Client{service: service, location: location}
}

func (c *Client) ResolveUploadsCollection(ctx context.Context, handle string) (string, error) {
	slog.Info("Retrieving uploads collection", "handle", handle)

	resp, err := c.service.Channels.
		List([]string{"contentDetails"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if isNotFound(err) {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, handle)
	}
	if err != nil {
		return "", &RequestError{Op: "channels.list", Target: handle, Err: err}
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, handle)
	}

	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: %s has no uploads collection", ErrChannelNotFound, handle)
	}

	return details.RelatedPlaylists.Uploads, nil
}

// ShortsCollectionID maps an uploads collection ("UU" + channel suffix) to
// the sibling collection holding only the channel's shorts.
func ShortsCollectionID(uploadsID string) string {
	if len(uploadsID) < uploadsPrefixLen {
		return shortsPrefix
	}
	return shortsPrefix + uploadsID[uploadsPrefixLen:]
}

// ListItems returns the video ids in a collection, newest first. A collection
// that does not exist yields an empty list; any other failure is returned.
func (c *Client) ListItems(ctx context.Context, collectionID string, maxResults int64) ([]string, error) {
	resp, err := c.listPlaylistItems(ctx, collectionID, []string{"contentDetails"}, maxResults)
	if errors.Is(err, ErrCollectionNotFound) {
		slog.Warn("Collection not found, treating as empty", "collection", collectionID)
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil {
			continue
		}
		ids = append(ids, item.ContentDetails.VideoId)
	}

	return ids, nil
}

// ListRecentUploads returns the newest uploads of a channel, flagging the
// ones that also appear among the channel's newest shorts. A short older
// than the newest maxResults shorts is reported as a regular video.
func (c *Client) ListRecentUploads(ctx context.Context, uploadsID string, maxResults int64) ([]report.Video, error) {
	shortIDs, err := c.ListItems(ctx, ShortsCollectionID(uploadsID), maxResults)
	if err != nil {
		return nil, err
	}

	shorts := make(map[string]struct{}, len(shortIDs))
	for _, id := range shortIDs {
		shorts[id] = struct{}{}
	}

	resp, err := c.listPlaylistItems(ctx, uploadsID, []string{"snippet", "contentDetails"}, maxResults)
	if err != nil {
		return nil, err
	}

	videos := make([]report.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		details := item.ContentDetails
		if details == nil || details.VideoPublishedAt == "" {
			slog.Debug("Skipping item without publish time", "collection", uploadsID)
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, details.VideoPublishedAt)
		if err != nil {
			return nil, &RequestError{Op: "parse videoPublishedAt", Target: details.VideoId, Err: err}
		}

		var title string
		if item.Snippet != nil {
			title = item.Snippet.Title
		}

		_, isShort := shorts[details.VideoId]
		videos = append(videos, report.NewVideo(details.VideoId, title, isShort, publishedAt.In(c.location)))
	}

	return videos, nil
}

func (c *Client) listPlaylistItems(ctx context.Context, collectionID string, parts []string, maxResults int64) (*youtube.PlaylistItemListResponse, error) {
	resp, err := c.service.PlaylistItems.
		List(parts).
		PlaylistId(collectionID).
		MaxResults(pageSize(maxResults)).
		Context(ctx).
		Do()
	if isNotFound(err) {
		err = fmt.Errorf("%w: %w", ErrCollectionNotFound, err)
	}
	if err != nil {
		return nil, &RequestError{Op: "playlistItems.list", Target: collectionID, Err: err}
	}

	return resp, nil
}

func pageSize(maxResults int64) int64 {
	if maxResults <= 0 || maxResults > MaxPageSize {
		return MaxPageSize
	}
	return maxResults
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
