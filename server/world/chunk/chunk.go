package chunk

import "slices"

// Size is the edge length of a Chunk in blocks. Chunks are cubes.
const Size = 16

// Volume is the amount of blocks held by a dense Chunk.
const Volume = Size * Size * Size

// Chunk is a cube of Size*Size*Size block IDs. A Chunk is either dense, holding one ID per block, or
// uniform, holding a single ID that every block shares. Uniform chunks carry no block array and are used
// for the large amount of chunks that consist of air only.
type Chunk struct {
	uniform bool
	id      uint32
	blocks  []uint32
}

// New returns a dense Chunk with every block set to fill.
func New(fill uint32) *Chunk {
	blocks := make([]uint32, Volume)
	if fill != 0 {
		for i := range blocks {
			blocks[i] = fill
		}
	}
	return &Chunk{blocks: blocks}
}

// NewUniform returns a uniform Chunk in which every block is id.
func NewUniform(id uint32) *Chunk {
	return &Chunk{uniform: true, id: id}
}

// Index returns the offset of the block at x, y, z in the dense block array. Columns are contiguous:
// the y axis varies fastest.
func Index(x, y, z int) int {
	return x*Size*Size + z*Size + y
}

// Block returns the ID of the block at the chunk-local position passed.
func (c *Chunk) Block(x, y, z int) uint32 {
	if c.uniform {
		return c.id
	}
	return c.blocks[Index(x, y, z)]
}

// SetBlock sets the block at the chunk-local position passed. Setting a block in a uniform Chunk to a
// different ID turns the Chunk dense.
func (c *Chunk) SetBlock(x, y, z int, id uint32) {
	if c.uniform {
		if id == c.id {
			return
		}
		c.densify()
	}
	c.blocks[Index(x, y, z)] = id
}

// Uniform returns the ID shared by every block and true if the Chunk is uniform.
func (c *Chunk) Uniform() (uint32, bool) {
	return c.id, c.uniform
}

// Filled reports if every block in the Chunk equals id.
func (c *Chunk) Filled(id uint32) bool {
	if c.uniform {
		return c.id == id
	}
	for _, b := range c.blocks {
		if b != id {
			return false
		}
	}
	return true
}

// MakeUniform drops the block array of the Chunk and sets every block to id.
func (c *Chunk) MakeUniform(id uint32) {
	c.uniform, c.id, c.blocks = true, id, nil
}

// Blocks returns a dense copy of all blocks in the Chunk, indexed using Index.
func (c *Chunk) Blocks() []uint32 {
	if c.uniform {
		return New(c.id).blocks
	}
	return slices.Clone(c.blocks)
}

// Equal reports if c and o hold the same blocks in the same representation.
func (c *Chunk) Equal(o *Chunk) bool {
	if c.uniform != o.uniform {
		return false
	}
	if c.uniform {
		return c.id == o.id
	}
	return slices.Equal(c.blocks, o.blocks)
}

// Clone returns a deep copy of the Chunk.
func (c *Chunk) Clone() *Chunk {
	return &Chunk{uniform: c.uniform, id: c.id, blocks: slices.Clone(c.blocks)}
}

func (c *Chunk) densify() {
	c.blocks = New(c.id).blocks
	c.uniform, c.id = false, 0
}

// FromBlocks returns a dense Chunk using the block slice passed as its storage. The slice must hold
// exactly Volume IDs.
func FromBlocks(blocks []uint32) (*Chunk, bool) {
	if len(blocks) != Volume {
		return nil, false
	}
	return &Chunk{blocks: blocks}, true
}
