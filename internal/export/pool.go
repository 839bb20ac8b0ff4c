package export

import (
	"bytes"
	"sync"
)

const maxPooledBuffer = 4 << 20

// bufferPool reuses text encoder buffers across exports. Reset keeps the
// grown capacity, so later exports of similar size skip reallocation.
var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 64*1024))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns b to the pool unless it grew past maxPooledBuffer.
func putBuffer(b *bytes.Buffer) {
	if b.Cap() > maxPooledBuffer {
		return
	}
	b.Reset()
	bufferPool.Put(b)
}

// detach copies the buffer contents so the buffer can go back to the pool.
func detach(b *bytes.Buffer) []byte {
	return bytes.Clone(b.Bytes())
}
