package kv

import (
	"github.com/DataDog/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// encode msgpack-encodes v and compresses the result with zstd.
func encode(v any) ([]byte, error) {
	bb, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Compress(bb)
}

func decode(bbCompressed []byte, v any) error {
	bb, err := Decompress(bbCompressed)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(bb, v)
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
