package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/format"
	"magnetunits/pkg/logger"
)

func newTestRepo(t *testing.T, threshold int) *FormatRepo {
	t.Helper()
	codec, err := NewPayloadCodec(threshold)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	return NewFormatRepo(nil, codec, logger.Nop())
}

func testDoc() format.Document {
	return format.Document{
		FormatName: "pupitre",
		Metadata:   format.DefaultMetadata(),
		Fields: []format.FieldDefinition{
			{Name: "B", Unit: "tesla", FieldType: "magnetic_field", Aliases: []string{"Field"}},
			{Name: "T", Unit: "kelvin", ExcludeRegions: []string{"Air"}},
		},
	}
}

func TestQueries(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, []any, error)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "select one",
			build:    func() (string, []any, error) { return selectQuery("pupitre") },
			wantSQL:  "SELECT name, encoding, payload, compression, field_count, updated_at FROM format_definitions WHERE name = $1 LIMIT 1",
			wantArgs: []any{"pupitre"},
		},
		{
			name:    "select all",
			build:   func() (string, []any, error) { return selectQuery("") },
			wantSQL: "SELECT name, encoding, payload, compression, field_count, updated_at FROM format_definitions ORDER BY name",
		},
		{
			name:     "delete",
			build:    func() (string, []any, error) { return deleteQuery("pupitre") },
			wantSQL:  "DELETE FROM format_definitions WHERE name = $1",
			wantArgs: []any{"pupitre"},
		},
		{
			name:     "notify",
			build:    func() (string, []any, error) { return notifyQuery("pupitre") },
			wantSQL:  "SELECT pg_notify($1, $2)",
			wantArgs: []any{"format_definitions_changed", "pupitre"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestUpsertQuery(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := FormatRecord{Name: "p", Encoding: "json", Payload: []byte("{}"), Compression: CompressionNone, FieldCount: 2, UpdatedAt: now}

	sql, args, err := upsertQuery(rec)
	require.NoError(t, err)
	// SetMap orders columns alphabetically
	assert.Equal(t,
		"INSERT INTO format_definitions (compression,encoding,field_count,name,payload,updated_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (name) DO UPDATE SET "+
			"encoding = EXCLUDED.encoding, payload = EXCLUDED.payload, "+
			"compression = EXCLUDED.compression, field_count = EXCLUDED.field_count, "+
			"updated_at = EXCLUDED.updated_at",
		sql)
	assert.Equal(t, []any{CompressionNone, "json", 2, "p", []byte("{}"), now}, args)
}

func TestFormatRepo_RecordRoundTrip(t *testing.T) {
	for _, threshold := range []int{1 << 20, 8} {
		repo := newTestRepo(t, threshold)
		rec, err := repo.newRecord(testDoc(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, 2, rec.FieldCount)
		if threshold == 8 {
			assert.Equal(t, CompressionZstd, rec.Compression)
		} else {
			assert.Equal(t, CompressionNone, rec.Compression)
		}

		doc, err := repo.decode(rec)
		require.NoError(t, err)
		assert.Equal(t, testDoc(), doc)
	}
}

func TestFormatRepo_NewRecordRequiresName(t *testing.T) {
	repo := newTestRepo(t, 0)
	_, err := repo.newRecord(format.Document{}, time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestFormatRepo_DecodeUsesRowName(t *testing.T) {
	repo := newTestRepo(t, 0)
	rec, err := repo.newRecord(testDoc(), time.Now())
	require.NoError(t, err)
	rec.Name = "renamed"

	doc, err := repo.decode(rec)
	require.NoError(t, err)
	assert.Equal(t, "renamed", doc.FormatName)

	rec.Payload = []byte("{broken")
	_, err = repo.decode(rec)
	assert.Error(t, err)
}
