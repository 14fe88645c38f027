package postgres

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression names the encoding of a stored payload.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// DefaultCompressThreshold is the payload size above which payloads are compressed.
const DefaultCompressThreshold = 4 * 1024

// PayloadCodec compresses large format payloads with zstd.
// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
type PayloadCodec struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func NewPayloadCodec(threshold int) (*PayloadCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return &PayloadCodec{encoder: encoder, decoder: decoder, threshold: threshold}, nil
}

// Encode returns payload unchanged when it is at or below the threshold.
func (c *PayloadCodec) Encode(payload []byte) ([]byte, Compression) {
	if len(payload) <= c.threshold {
		return payload, CompressionNone
	}
	return c.encoder.EncodeAll(payload, nil), CompressionZstd
}

func (c *PayloadCodec) Decode(data []byte, algo Compression) ([]byte, error) {
	switch algo {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		out, err := c.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", algo)
	}
}

func (c *PayloadCodec) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
