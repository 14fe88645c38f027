package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/format"
	"magnetunits/internal/infrastructure/cache"
	"magnetunits/pkg/logger"
)

const formatTable = "format_definitions"

//go:embed schema.sql
var schemaSQL string

// FormatRecord is one row of format_definitions.
type FormatRecord struct {
	Name        string      `db:"name"`
	Encoding    string      `db:"encoding"`
	Payload     []byte      `db:"payload"`
	Compression Compression `db:"compression"`
	FieldCount  int         `db:"field_count"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

var formatColumns = ExtractDBColumns[FormatRecord]()

// FormatRepo persists format documents. Every write notifies
// cache.NotifyChannel in the same transaction, so listeners only see
// committed changes.
type FormatRepo struct {
	txm   *TxManager
	codec *PayloadCodec
	log   *logger.Logger
}

var _ cache.Source = (*FormatRepo)(nil)

func NewFormatRepo(txm *TxManager, codec *PayloadCodec, log *logger.Logger) *FormatRepo {
	if log == nil {
		log = logger.Default()
	}
	return &FormatRepo{txm: txm, codec: codec, log: log.WithComponent("format_repo")}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EnsureSchema creates the table when missing.
func (r *FormatRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// newRecord serializes doc as JSON, compressing large payloads.
func (r *FormatRepo) newRecord(doc format.Document, now time.Time) (FormatRecord, error) {
	if doc.FormatName == "" {
		return FormatRecord{}, apperror.NewValidation("format_name is required")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return FormatRecord{}, apperror.NewInternal(err).WithDetail("format", doc.FormatName)
	}
	data, algo := r.codec.Encode(payload)
	return FormatRecord{
		Name:        doc.FormatName,
		Encoding:    string(format.EncodingJSON),
		Payload:     data,
		Compression: algo,
		FieldCount:  len(doc.Fields),
		UpdatedAt:   now,
	}, nil
}

func upsertQuery(rec FormatRecord) (string, []any, error) {
	return builder().
		Insert(formatTable).
		SetMap(StructToMap(rec)).
		Suffix("ON CONFLICT (name) DO UPDATE SET " +
			"encoding = EXCLUDED.encoding, payload = EXCLUDED.payload, " +
			"compression = EXCLUDED.compression, field_count = EXCLUDED.field_count, " +
			"updated_at = EXCLUDED.updated_at").
		ToSql()
}

func notifyQuery(name string) (string, []any, error) {
	return builder().
		Select().
		Column(squirrel.Expr("pg_notify(?, ?)", cache.NotifyChannel, name)).
		ToSql()
}

func (r *FormatRepo) notify(ctx context.Context, name string) error {
	sql, args, err := notifyQuery(name)
	if err != nil {
		return fmt.Errorf("build notify: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("notify %s: %w", name, err)
	}
	return nil
}

// Save inserts or replaces doc.
func (r *FormatRepo) Save(ctx context.Context, doc format.Document) error {
	rec, err := r.newRecord(doc, time.Now().UTC())
	if err != nil {
		return err
	}
	sql, args, err := upsertQuery(rec)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	err = r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return apperror.NewDatabase(err).WithDetail("format", rec.Name)
		}
		return r.notify(ctx, rec.Name)
	})
	if err != nil {
		return err
	}
	r.log.WithContext(ctx).Infow("format saved",
		"format", rec.Name, "fields", rec.FieldCount, "compression", rec.Compression, "bytes", len(rec.Payload))
	return nil
}

// SaveAll stores docs atomically.
func (r *FormatRepo) SaveAll(ctx context.Context, docs []format.Document) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, doc := range docs {
			if err := r.Save(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FormatRepo) decode(rec FormatRecord) (format.Document, error) {
	data, err := r.codec.Decode(rec.Payload, rec.Compression)
	if err != nil {
		return format.Document{}, apperror.NewInternal(err).WithDetail("format", rec.Name)
	}
	doc, err := format.DecodeDocument(data, format.Encoding(rec.Encoding))
	if err != nil {
		return format.Document{}, fmt.Errorf("stored format %s: %w", rec.Name, err)
	}
	// the row key wins over a stale name inside the payload
	doc.FormatName = rec.Name
	return doc, nil
}

func selectQuery(name string) (string, []any, error) {
	q := builder().Select(formatColumns...).From(formatTable)
	if name != "" {
		q = q.Where(squirrel.Eq{"name": name}).Limit(1)
	} else {
		q = q.OrderBy("name")
	}
	return q.ToSql()
}

// Get returns the stored document or a NOT_FOUND error.
func (r *FormatRepo) Get(ctx context.Context, name string) (format.Document, error) {
	sql, args, err := selectQuery(name)
	if err != nil {
		return format.Document{}, fmt.Errorf("build query: %w", err)
	}

	var rec FormatRecord
	err = r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return format.Document{}, apperror.NewNotFound("format", name)
		}
		return format.Document{}, apperror.NewDatabase(err).WithDetail("format", name)
	}
	return r.decode(rec)
}

// List returns every stored document ordered by name. Rows that no longer
// decode are skipped with a warning.
func (r *FormatRepo) List(ctx context.Context) ([]format.Document, error) {
	sql, args, err := selectQuery("")
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []FormatRecord
	err = r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		return pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &recs, sql, args...)
	})
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}

	docs := make([]format.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := r.decode(rec)
		if err != nil {
			r.log.WithContext(ctx).Warnw("skipping undecodable format", "format", rec.Name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func deleteQuery(name string) (string, []any, error) {
	return builder().Delete(formatTable).Where(squirrel.Eq{"name": name}).ToSql()
}

// Delete removes a stored format.
func (r *FormatRepo) Delete(ctx context.Context, name string) error {
	sql, args, err := deleteQuery(name)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
		if err != nil {
			return apperror.NewDatabase(err).WithDetail("format", name)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("format", name)
		}
		return r.notify(ctx, name)
	})
}
