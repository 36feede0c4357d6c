package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueue = 4096
	sinkBatch = 50
	sinkFlush = 2 * time.Second
)

// LogDocument is one catalog log line in MongoDB. The access-log keys
// written by the HTTP middleware are lifted to top-level fields so lockouts
// and failures can be queried per client or route; everything else lands
// in Attrs.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Route     string    `bson:"route,omitempty"`
	Status    int64     `bson:"status,omitempty"`
	Client    string    `bson:"client,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

func (d *LogDocument) set(key string, v slog.Value) {
	switch key {
	case "request_id":
		d.RequestID = v.String()
	case "route":
		d.Route = v.String()
	case "client":
		d.Client = v.String()
	case "status":
		if v.Kind() == slog.KindInt64 {
			d.Status = v.Int64()
			return
		}
		d.Attrs[key] = v.Any()
	default:
		d.Attrs[key] = v.Any()
	}
}

// newLogDocument flattens r plus the handler's bound attrs, which already
// carry their group prefix. Grouped keys are dotted and never lifted.
func newLogDocument(r slog.Record, bound []slog.Attr, group string) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	for _, a := range bound {
		doc.set(a.Key, a.Value.Resolve())
	}
	r.Attrs(func(a slog.Attr) bool {
		doc.set(group+a.Key, a.Value.Resolve())
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	return doc
}

// MongoHandler ships Info and above to a MongoDB collection. Handle only
// enqueues; one goroutine inserts in batches and drops lines when the queue
// is full.
type MongoHandler struct {
	sink  *mongoSink
	attrs []slog.Attr
	group string
}

type mongoSink struct {
	client  *mongo.Client
	col     *mongo.Collection
	pending chan LogDocument
	stop    chan struct{}
	stopped chan struct{}
}

// NewMongoHandler connects, ensures the lookup indexes and starts the
// writer. Close must be called to flush.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(4)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("log sink: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("log sink: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})
	if err != nil {
		L.Warn("log sink: index setup failed", "error", err)
	}

	s := &mongoSink{
		client:  client,
		col:     col,
		pending: make(chan LogDocument, sinkQueue),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return &MongoHandler{sink: s}, nil
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	select {
	case h.sink.pending <- newLogDocument(r, h.attrs, h.group):
	default:
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h.group != "" {
		attrs = prefixed(h.group, attrs)
	}
	return &MongoHandler{
		sink:  h.sink,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &MongoHandler{sink: h.sink, attrs: h.attrs, group: h.group + name + "."}
}

func prefixed(group string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + a.Key, Value: a.Value}
	}
	return out
}

func (s *mongoSink) run() {
	defer close(s.stopped)

	tick := time.NewTicker(sinkFlush)
	defer tick.Stop()

	batch := make([]interface{}, 0, sinkBatch)
	for {
		select {
		case doc := <-s.pending:
			if batch = append(batch, doc); len(batch) == sinkBatch {
				batch = s.insert(batch)
			}
		case <-tick.C:
			batch = s.insert(batch)
		case <-s.stop:
			for {
				select {
				case doc := <-s.pending:
					batch = append(batch, doc)
				default:
					s.insert(batch)
					return
				}
			}
		}
	}
}

// insert writes batch and returns it emptied. Failed batches are lost.
func (s *mongoSink) insert(batch []interface{}) []interface{} {
	if len(batch) == 0 {
		return batch
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = s.col.InsertMany(ctx, batch)
	return batch[:0]
}

// Close flushes what is queued and disconnects. Calling it again is a no-op.
func (h *MongoHandler) Close() {
	select {
	case <-h.sink.stop:
		return
	default:
		close(h.sink.stop)
	}
	<-h.sink.stopped

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.sink.client.Disconnect(ctx)
}

// MultiHandler sends each record to every handler that accepts its level:
// stdout always, the MongoDB sink when attached.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = fn(h)
	}
	return &MultiHandler{handlers: hs}
}
