package provider

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// ErrCorrupt is returned when stored data fails to decode or its checksum does not match.
var ErrCorrupt = errors.New("corrupt data")

// chunkVersion is the version of the chunk encoding written by EncodeChunk.
const chunkVersion = 1

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// chunkData is the NBT representation of a chunk. Uniform chunks only store ID.
type chunkData struct {
	Version  int32   `nbt:"Version"`
	Uniform  uint8   `nbt:"Uniform"`
	ID       int32   `nbt:"ID"`
	Blocks   []int32 `nbt:"Blocks"`
	Checksum int64   `nbt:"Checksum"`
}

type settingsData struct {
	ID   string `nbt:"ID"`
	Name string `nbt:"Name"`
	Seed int64  `nbt:"Seed"`
}

// EncodeChunk encodes a chunk to little endian NBT compressed with zstd.
func EncodeChunk(c *chunk.Chunk) ([]byte, error) {
	d := chunkData{Version: chunkVersion, Checksum: int64(Checksum(c))}
	if id, ok := c.Uniform(); ok {
		d.Uniform, d.ID = 1, int32(id)
	} else {
		blocks := c.Blocks()
		d.Blocks = make([]int32, len(blocks))
		for i, b := range blocks {
			d.Blocks[i] = int32(b)
		}
	}
	data, err := nbt.MarshalEncoding(d, nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("encode chunk: %w", err)
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// DecodeChunk decodes a chunk encoded with EncodeChunk.
func DecodeChunk(b []byte) (*chunk.Chunk, error) {
	data, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w: %v", ErrCorrupt, err)
	}
	var d chunkData
	if err := nbt.UnmarshalEncoding(data, &d, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode chunk: %w: %v", ErrCorrupt, err)
	}
	if d.Version != chunkVersion {
		return nil, fmt.Errorf("decode chunk: unsupported version %d", d.Version)
	}
	var c *chunk.Chunk
	if d.Uniform != 0 {
		c = chunk.NewUniform(uint32(d.ID))
	} else {
		blocks := make([]uint32, len(d.Blocks))
		for i, b := range d.Blocks {
			blocks[i] = uint32(b)
		}
		var ok bool
		if c, ok = chunk.FromBlocks(blocks); !ok {
			return nil, fmt.Errorf("decode chunk: %w: %d blocks", ErrCorrupt, len(blocks))
		}
	}
	if sum := int64(Checksum(c)); sum != d.Checksum {
		return nil, fmt.Errorf("decode chunk: %w: checksum %x, expected %x", ErrCorrupt, sum, d.Checksum)
	}
	return c, nil
}

// Checksum returns the xxhash of the blocks of a chunk. Uniform chunks have the same checksum as the
// equivalent dense chunk.
func Checksum(c *chunk.Chunk) uint64 {
	d := xxhash.New()
	buf := make([]byte, 4*chunk.Size)
	if id, ok := c.Uniform(); ok {
		for i := 0; i < chunk.Size; i++ {
			binary.LittleEndian.PutUint32(buf[i*4:], id)
		}
		for i := 0; i < chunk.Size*chunk.Size; i++ {
			_, _ = d.Write(buf)
		}
		return d.Sum64()
	}
	blocks := c.Blocks()
	for off := 0; off < len(blocks); off += chunk.Size {
		for i, b := range blocks[off : off+chunk.Size] {
			binary.LittleEndian.PutUint32(buf[i*4:], b)
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// EncodeSettings encodes Settings to little endian NBT.
func EncodeSettings(s Settings) ([]byte, error) {
	data, err := nbt.MarshalEncoding(settingsData{ID: s.ID.String(), Name: s.Name, Seed: int64(s.Seed)}, nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// DecodeSettings decodes Settings encoded with EncodeSettings.
func DecodeSettings(b []byte) (Settings, error) {
	var d settingsData
	if err := nbt.UnmarshalEncoding(b, &d, nbt.LittleEndian); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w: %v", ErrCorrupt, err)
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w: world id: %v", ErrCorrupt, err)
	}
	return Settings{ID: id, Name: d.Name, Seed: uint64(d.Seed)}, nil
}

// ChunkKey returns a 12 byte key identifying the chunk with the origin passed. The key holds the chunk
// coordinates (origin divided by the chunk size) as little endian int32s in x, y, z order.
func ChunkKey(pos cube.Pos) []byte {
	key := make([]byte, 12)
	binary.LittleEndian.PutUint32(key[0:], uint32(int32(cube.FloorDiv(pos.X(), chunk.Size))))
	binary.LittleEndian.PutUint32(key[4:], uint32(int32(cube.FloorDiv(pos.Y(), chunk.Size))))
	binary.LittleEndian.PutUint32(key[8:], uint32(int32(cube.FloorDiv(pos.Z(), chunk.Size))))
	return key
}
