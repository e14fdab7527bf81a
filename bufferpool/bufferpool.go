// Package bufferpool provides a small free list of bytes.Buffers,
// used to avoid reallocating body-read buffers on every resolution.
package bufferpool

import (
	"bytes"
	"sync"
)

type BufferPool struct {
	pool *sync.Pool
}

func New() *BufferPool {
	return &BufferPool{
		pool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (bp *BufferPool) Put(buf *bytes.Buffer) {
	bp.pool.Put(buf)
}
