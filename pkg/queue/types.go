package queue

import (
	"time"

	"github.com/google/uuid"
)

// ItemOverhead is the fixed per-item cost charged against the memory
// ceiling on top of the contents and digest.
const ItemOverhead int64 = 64

// Priority orders items; higher is more important.
type Priority uint8

const (
	PriorityMin     Priority = 0
	PriorityMax     Priority = 255
	DefaultPriority Priority = 10
)

// Submission is the input to Store.Insert.
type Submission struct {
	Contents string
	Priority Priority
	// Digest is the optional hex integrity digest of Contents.
	Digest   string
}

// Item is an admitted notification.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Contents   string    `json:"contents"`
	Priority   Priority  `json:"priority"`
	Digest     string    `json:"digest,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	ByteSize   int64     `json:"byte_size"`

	seq uint64
}

// Seq returns the admission sequence number of the item.
func (i Item) Seq() uint64 {
	return i.seq
}

// Dequeued is an item removed from the store together with the time it
// spent queued.
type Dequeued struct {
	Item
	Elapsed time.Duration `json:"-"`
}

// ElapsedMillis returns Elapsed in whole milliseconds.
func (d Dequeued) ElapsedMillis() int64 {
	return d.Elapsed.Milliseconds()
}

// SizeOf returns the number of bytes an item with the given contents and
// digest is charged.
func SizeOf(contents, digest string) int64 {
	return int64(len(contents)) + int64(len(digest)) + ItemOverhead
}
