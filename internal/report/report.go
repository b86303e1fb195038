package report

import "time"

// PublishedAtLayout is the cell format of the "Published At" column.
const PublishedAtLayout = "2006-01-02 15:04:05.000000"

const watchURL = "https://www.youtube.com/watch?v="

type Video struct {
	ID          string
	Title       string
	URL         string
	IsShort     bool
	PublishedAt time.Time
}

func NewVideo(id, title string, isShort bool, publishedAt time.Time) Video {
	return Video{
		ID:          id,
		Title:       title,
		URL:         WatchURL(id),
		IsShort:     isShort,
		PublishedAt: publishedAt,
	}
}

func WatchURL(id string) string {
	return watchURL + id
}

func (v Video) PublishedAtString() string {
	return v.PublishedAt.Format(PublishedAtLayout)
}

type Channel struct {
	Handle string
	Videos []Video
}

func NewChannel(handle string) *Channel {
	return &Channel{Handle: handle, Videos: []Video{}}
}

func (c *Channel) AddVideos(videos ...Video) {
	c.Videos = append(c.Videos, videos...)
}

// Table is the report for one run. SheetTitle doubles as the destination tab name.
type Table struct {
	SheetTitle string
	Channels   []*Channel
}

func NewTable(sheetTitle string) *Table {
	return &Table{SheetTitle: sheetTitle, Channels: []*Channel{}}
}

func (t *Table) AddChannel(channel *Channel) {
	t.Channels = append(t.Channels, channel)
}

func (t *Table) VideoCount() int {
	n := 0
	for _, c := range t.Channels {
		n += len(c.Videos)
	}
	return n
}

func (t *Table) ShortCount() int {
	n := 0
	for _, c := range t.Channels {
		for _, v := range c.Videos {
			if v.IsShort {
				n++
			}
		}
	}
	return n
}
