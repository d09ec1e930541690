package capture

import (
	"gocv.io/x/gocv"
)

// FramePool recycles frame buffers between capture cycles so a steady
// stream of same-sized frames reuses the same native allocations. It is
// owned by a single loop and does no locking.
type FramePool struct {
	mats    []*gocv.Mat
	maxSize int
	created int
}

func NewFramePool(maxSize int) *FramePool {
	if maxSize < 1 {
		maxSize = 1
	}
	return &FramePool{
		mats:    make([]*gocv.Mat, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns a pooled buffer, allocating when the pool is empty.
func (p *FramePool) Get() *gocv.Mat {
	if len(p.mats) == 0 {
		p.created++
		mat := gocv.NewMat()
		return &mat
	}

	mat := p.mats[len(p.mats)-1]
	p.mats = p.mats[:len(p.mats)-1]
	return mat
}

// Put returns a buffer to the pool; buffers beyond capacity are closed.
func (p *FramePool) Put(mat *gocv.Mat) bool {
	if mat == nil {
		return false
	}

	if len(p.mats) >= p.maxSize {
		mat.Close()
		return false
	}

	p.mats = append(p.mats, mat)
	return true
}

// Created counts buffers allocated by Get.
func (p *FramePool) Created() int {
	return p.created
}

func (p *FramePool) Cleanup() int {
	count := len(p.mats)
	for _, mat := range p.mats {
		mat.Close()
	}
	p.mats = p.mats[:0]
	return count
}
