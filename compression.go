package modelcache

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

// CompressionCodec represents a value compression algorithm.
type CompressionCodec string

const (
	CompressionNone CompressionCodec = ""
	CompressionGzip CompressionCodec = "gzip"
)

var (
	compressMagic = []byte("MCC1")

	ErrValueTooLarge      = errors.New("modelcache: value exceeds max size")
	ErrUnsupportedCodec   = errors.New("modelcache: unsupported compression codec")
	ErrCorruptCompression = errors.New("modelcache: corrupt compressed payload")
)

func encodeValue(codec CompressionCodec, max int, value []byte) ([]byte, error) {
	if max > 0 && len(value) > max {
		return nil, ErrValueTooLarge
	}
	switch codec {
	case CompressionNone:
		return value, nil
	case CompressionGzip:
		var buf bytes.Buffer
		buf.Write(compressMagic)
		_ = buf.WriteByte('g')
		zw, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		if _, err := zw.Write(value); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnsupportedCodec
	}
}

func decodeValue(body []byte) ([]byte, error) {
	if len(body) < len(compressMagic)+1 || !bytes.Equal(body[:len(compressMagic)], compressMagic) {
		return body, nil
	}
	switch body[len(compressMagic)] {
	case 'g':
		zr, err := gzip.NewReader(bytes.NewReader(body[len(compressMagic)+1:]))
		if err != nil {
			return nil, ErrCorruptCompression
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, ErrCorruptCompression
		}
		return out, nil
	default:
		return nil, ErrUnsupportedCodec
	}
}
