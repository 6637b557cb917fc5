// Package events publishes controller feedback to a Redis stream so that
// displays and loggers can follow a traversal live.
package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbenjam1n/theseus/internal/controller"
	"github.com/sbenjam1n/theseus/internal/maze"
)

// StreamEvents is the Redis stream every traversal publishes to.
const StreamEvents = "theseus_events"

// Event kinds.
const (
	KindPathChanged  = "path_changed"
	KindPhaseChanged = "phase_changed"
	KindSolved       = "solved"
)

// Event is one entry on the stream.
type Event struct {
	ID       string `json:"id,omitempty"`
	MazeID   string `json:"maze_id"`
	RunID    string `json:"run_id"`
	Kind     string `json:"kind"`
	Path     string `json:"path,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Index    int    `json:"index"`
	Position string `json:"position,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Feed writes and reads the event stream.
type Feed struct {
	client *redis.Client
	maxLen int64
}

// New creates a Feed that trims the stream to roughly maxLen entries.
// maxLen <= 0 keeps everything.
func New(client *redis.Client, maxLen int64) *Feed {
	return &Feed{client: client, maxLen: maxLen}
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Publish adds ev to the stream and returns its ID.
func (f *Feed) Publish(ctx context.Context, ev Event) (string, error) {
	args := &redis.XAddArgs{
		Stream: StreamEvents,
		Values: ev.values(),
	}
	if f.maxLen > 0 {
		args.MaxLen = f.maxLen
		args.Approx = true
	}
	id, err := f.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return id, nil
}

// Read returns up to count events after lastID, waiting up to block for new
// ones. Use "0" to read from the beginning and "$" for only new entries.
func (f *Feed) Read(ctx context.Context, lastID string, count int64, block time.Duration) ([]Event, error) {
	streams, err := f.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{StreamEvents, lastID},
		Count:   count,
		Block:   block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	var out []Event
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			out = append(out, eventFrom(msg))
		}
	}
	return out, nil
}

// Recent returns the last count events, oldest first.
func (f *Feed) Recent(ctx context.Context, count int64) ([]Event, error) {
	msgs, err := f.client.XRevRangeN(ctx, StreamEvents, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}
	out := make([]Event, len(msgs))
	for i, msg := range msgs {
		out[len(msgs)-1-i] = eventFrom(msg)
	}
	return out, nil
}

// Status returns the number of entries on the stream.
func (f *Feed) Status(ctx context.Context) (int64, error) {
	return f.client.XLen(ctx, StreamEvents).Result()
}

// Observer returns a controller observer that publishes under runID.
// The controller's callbacks carry no context, so ctx is held for the
// lifetime of the run: once it is done, publishing stops. Publish failures
// are logged and never stop the traversal.
func (f *Feed) Observer(ctx context.Context, mazeID, runID string) *Observer {
	return &Observer{ctx: ctx, feed: f, mazeID: mazeID, runID: runID}
}

// Observer implements controller.Observer and controller.PhaseObserver.
type Observer struct {
	ctx    context.Context
	feed   *Feed
	mazeID string
	runID  string
}

func (o *Observer) OnPathChanged(path []maze.Turn) {
	o.publish(Event{Kind: KindPathChanged, Path: maze.FormatTurns(path)})
}

func (o *Observer) OnSolved() {
	o.publish(Event{Kind: KindSolved})
}

func (o *Observer) OnPhaseChanged(tr controller.Transition) {
	ev := Event{
		Kind:     KindPhaseChanged,
		From:     tr.From.String(),
		To:       tr.To.String(),
		Index:    tr.Index,
		Position: tr.Position.String(),
	}
	if tr.Reason != nil {
		ev.Reason = tr.Reason.Error()
	}
	o.publish(ev)
}

func (o *Observer) publish(ev Event) {
	ev.MazeID, ev.RunID = o.mazeID, o.runID
	if _, err := o.feed.Publish(o.ctx, ev); err != nil {
		log.Printf("events: run %s: %v", o.runID, err)
	}
}

func (ev Event) values() map[string]any {
	return map[string]any{
		"maze_id":  ev.MazeID,
		"run_id":   ev.RunID,
		"kind":     ev.Kind,
		"path":     ev.Path,
		"from":     ev.From,
		"to":       ev.To,
		"index":    ev.Index,
		"position": ev.Position,
		"reason":   ev.Reason,
	}
}

func eventFrom(msg redis.XMessage) Event {
	index, _ := strconv.Atoi(getString(msg.Values, "index"))
	return Event{
		ID:       msg.ID,
		MazeID:   getString(msg.Values, "maze_id"),
		RunID:    getString(msg.Values, "run_id"),
		Kind:     getString(msg.Values, "kind"),
		Path:     getString(msg.Values, "path"),
		From:     getString(msg.Values, "from"),
		To:       getString(msg.Values, "to"),
		Index:    index,
		Position: getString(msg.Values, "position"),
		Reason:   getString(msg.Values, "reason"),
	}
}

func getString(values map[string]any, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Summary renders ev as one line for terminals.
func (ev Event) Summary() string {
	switch ev.Kind {
	case KindPathChanged:
		return fmt.Sprintf("path %q", ev.Path)
	case KindPhaseChanged:
		s := fmt.Sprintf("%s -> %s at index %d %s", ev.From, ev.To, ev.Index, ev.Position)
		if ev.Reason != "" {
			s += ": " + ev.Reason
		}
		return s
	}
	return ev.Kind
}
