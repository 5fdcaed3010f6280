package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"board-sync/internal/config"
	"board-sync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	reopenBackoff    = 5 * time.Second
	tokenSaveTimeout = 5 * time.Second
)

// Server codes for a resume token the oplog no longer covers.
const (
	codeHistoryLost = 286
	codeStreamFatal = 280
)

// Handler processes the full document of one inserted outbox entry.
type Handler func(ctx context.Context, doc bson.Raw) error

func AttendanceHandler(d *Dispatcher) Handler {
	return func(ctx context.Context, doc bson.Raw) error {
		var mail AttendanceMail
		if err := bson.Unmarshal(doc, &mail); err != nil {
			return d.recordUndecodable(ctx, d.mailSource, doc, err)
		}
		return d.HandleAttendance(ctx, mail)
	}
}

func ChatHandler(d *Dispatcher) Handler {
	return func(ctx context.Context, doc bson.Raw) error {
		var msg ChatMessage
		if err := bson.Unmarshal(doc, &msg); err != nil {
			return d.recordUndecodable(ctx, d.chatSource, doc, err)
		}
		return d.HandleChat(ctx, msg)
	}
}

type changeEvent struct {
	FullDocument bson.Raw `bson:"fullDocument"`
}

// changeStream is the part of *mongo.ChangeStream the watcher reads.
type changeStream interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	ResumeToken() bson.Raw
	Err() error
	Close(ctx context.Context) error
}

type openFunc func(ctx context.Context, startAfter bson.Raw) (changeStream, error)

type backlogFunc func(ctx context.Context) ([]bson.Raw, error)

func insertStream(collection *mongo.Collection) openFunc {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	return func(ctx context.Context, startAfter bson.Raw) (changeStream, error) {
		opts := options.ChangeStream()
		if startAfter != nil {
			opts.SetStartAfter(startAfter)
		}
		stream, err := collection.Watch(ctx, pipeline, opts)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
}

func pendingDocuments(collection *mongo.Collection) backlogFunc {
	return func(ctx context.Context) ([]bson.Raw, error) {
		cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return nil, err
		}
		var docs []bson.Raw
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
}

// Watcher calls its handler once per document inserted into a collection. Handlers run
// one at a time in insert order. The resume token is persisted after every event, so a
// broken stream or a restarted process continues after the last seen event.
type Watcher struct {
	name    string
	open    openFunc
	backlog backlogFunc
	tokens  TokenStore
	handle  Handler
	backoff time.Duration
	log     *zap.Logger

	resumeToken bson.Raw
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewWatcher(collection *mongo.Collection, handle Handler, tokens TokenStore, log *zap.Logger) *Watcher {
	return &Watcher{
		name:    collection.Name(),
		open:    insertStream(collection),
		tokens:  tokens,
		handle:  handle,
		backoff: reopenBackoff,
		log:     log.With(zap.String("collection", collection.Name())),
	}
}

// NewOutboxWatcher also dispatches the documents already waiting in the collection when
// it starts without a saved resume token.
func NewOutboxWatcher(collection *mongo.Collection, handle Handler, tokens TokenStore, log *zap.Logger) *Watcher {
	w := NewWatcher(collection, handle, tokens, log)
	w.backlog = pendingDocuments(collection)
	return w
}

func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("outbox watcher started")
	for {
		err := w.watch(ctx)
		if ctx.Err() != nil {
			w.log.Info("outbox watcher stopped")
			return
		}
		w.log.Warn("change stream closed, reopening", zap.Error(err), zap.Duration("backoff", w.backoff))

		select {
		case <-time.After(w.backoff):
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) watch(ctx context.Context) error {
	if w.resumeToken == nil && w.tokens != nil {
		token, err := w.tokens.Load(ctx, w.name)
		if err != nil {
			return fmt.Errorf("load resume token: %w", err)
		}
		w.resumeToken = token
	}
	fresh := w.resumeToken == nil

	stream, err := w.open(ctx, w.resumeToken)
	if err != nil {
		w.forgetLostToken(ctx, err)
		return err
	}
	defer stream.Close(context.Background())

	// Documents handled from the backlog may show up again as stream events.
	var handled map[string]struct{}
	if fresh && w.backlog != nil {
		handled, err = w.drainBacklog(ctx)
		if err != nil {
			return err
		}
		if token := stream.ResumeToken(); token != nil {
			w.saveToken(ctx, token)
		}
	}

	for stream.Next(ctx) {
		token := stream.ResumeToken()

		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.log.Error("failed to decode change event", zap.Error(err))
		} else if _, dup := handled[idKey(ev.FullDocument)]; dup {
			w.log.Debug("document already dispatched at startup")
		} else if err := w.handle(ctx, ev.FullDocument); err != nil {
			w.log.Error("outbox handler failed", zap.Error(err))
		}

		w.saveToken(ctx, token)
	}
	if err := stream.Err(); err != nil {
		w.forgetLostToken(ctx, err)
		return err
	}
	return errors.New("change stream ended")
}

func (w *Watcher) drainBacklog(ctx context.Context) (map[string]struct{}, error) {
	docs, err := w.backlog(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan pending documents: %w", err)
	}

	handled := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		handled[idKey(doc)] = struct{}{}
		if err := w.handle(ctx, doc); err != nil {
			w.log.Error("outbox handler failed", zap.Error(err))
		}
	}
	if len(docs) > 0 {
		w.log.Info("dispatched pending documents", zap.Int("count", len(docs)))
	}
	return handled, nil
}

func (w *Watcher) saveToken(ctx context.Context, token bson.Raw) {
	if token == nil {
		return
	}
	w.resumeToken = append(bson.Raw(nil), token...)
	if w.tokens == nil {
		return
	}

	// The last token must land even while the watcher is being stopped.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenSaveTimeout)
	defer cancel()
	if err := w.tokens.Save(ctx, w.name, w.resumeToken); err != nil {
		w.log.Warn("failed to save resume token", zap.Error(err))
	}
}

// forgetLostToken drops a token the server can no longer resume from. The next attempt
// starts fresh and rescans the backlog.
func (w *Watcher) forgetLostToken(ctx context.Context, err error) {
	var se mongo.ServerError
	if !errors.As(err, &se) || !(se.HasErrorCode(codeHistoryLost) || se.HasErrorCode(codeStreamFatal)) {
		return
	}
	w.log.Warn("resume token no longer valid, starting over", zap.Error(err))
	w.resumeToken = nil
	if w.tokens == nil {
		return
	}
	if err := w.tokens.Clear(context.WithoutCancel(ctx), w.name); err != nil {
		w.log.Warn("failed to clear resume token", zap.Error(err))
	}
}

func idKey(doc bson.Raw) string {
	v, err := doc.LookupErr("_id")
	if err != nil {
		return ""
	}
	return v.String()
}

// Watchers are the outbox watchers of the running service.
type Watchers []*Watcher

func NewWatchers(mongodb *database.MongodbDB, cfg *config.Config, d *Dispatcher, tokens TokenStore, log *zap.Logger) Watchers {
	return Watchers{
		NewOutboxWatcher(mongodb.DB.Collection(cfg.Notify.MailCollection), AttendanceHandler(d), tokens, log),
		NewWatcher(mongodb.DB.Collection(cfg.Notify.ChatCollection), ChatHandler(d), tokens, log),
	}
}

// RegisterWatchers ties the watchers to the fx lifecycle.
func RegisterWatchers(lc fx.Lifecycle, watchers Watchers) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, w := range watchers {
				w.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var errs []error
			for _, w := range watchers {
				errs = append(errs, w.Stop(ctx))
			}
			return errors.Join(errs...)
		},
	})
}
