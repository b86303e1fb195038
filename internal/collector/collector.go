// Package collector builds the daily report: for every configured channel
// it lists recent uploads and keeps those published yesterday.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sayless/internal/datewindow"
	"sayless/internal/report"
)

type Catalog interface {
	ResolveUploadsCollection(ctx context.Context, handle string) (string, error)
	ListRecentUploads(ctx context.Context, uploadsID string, maxResults int64) ([]report.Video, error)
}

type Phase string

const (
	PhaseResolve Phase = "resolve"
	PhaseList    Phase = "list"
)

// ChannelError aborts a run; the report never silently omits a channel.
type ChannelError struct {
	Handle string
	Phase  Phase
	Err    error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %s: %v", e.Handle, e.Phase, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

type Options struct {
	Location *time.Location
	Now      func() time.Time
}

type Collector struct {
	catalog  Catalog
	handles  []string
	location *time.Location
	now      func() time.Time
}

func New(catalog Catalog, handles []string, opts Options) *Collector {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Collector{
		catalog:  catalog,
		handles:  handles,
		location: opts.Location,
		now:      opts.Now,
	}
}

// Gather fixes the window once, so a run that crosses local midnight still
// reports on a single day.
func (c *Collector) Gather(ctx context.Context, maxResults int64) (*report.Table, error) {
	window := datewindow.New(c.now(), c.location)
	slog.Info("Retrieving videos in the date range", "from", window.StartDate(), "to", window.EndDate())

	table := report.NewTable(window.StartDate())
	for _, handle := range c.handles {
		channel, err := c.gatherChannel(ctx, window, handle, maxResults)
		if err != nil {
			return nil, err
		}
		table.AddChannel(channel)
	}

	return table, nil
}

func (c *Collector) gatherChannel(ctx context.Context, window datewindow.Window, handle string, maxResults int64) (*report.Channel, error) {
	uploadsID, err := c.catalog.ResolveUploadsCollection(ctx, handle)
	if err != nil {
		return nil, &ChannelError{Handle: handle, Phase: PhaseResolve, Err: err}
	}

	recent, err := c.catalog.ListRecentUploads(ctx, uploadsID, maxResults)
	if err != nil {
		return nil, &ChannelError{Handle: handle, Phase: PhaseList, Err: err}
	}

	channel := report.NewChannel(handle)
	channel.AddVideos(Filter(recent, window)...)

	slog.Info("Collected channel",
		"handle", handle,
		"recent", len(recent),
		"yesterday", len(channel.Videos),
	)

	return channel, nil
}

// Filter keeps the videos published strictly inside the window, preserving order.
func Filter(videos []report.Video, window datewindow.Window) []report.Video {
	kept := make([]report.Video, 0, len(videos))
	for _, v := range videos {
		if window.Contains(v.PublishedAt) {
			kept = append(kept, v)
		}
	}
	return kept
}
