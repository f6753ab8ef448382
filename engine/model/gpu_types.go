package model

import (
	"unsafe"

	"github.com/Anti-Alias/prism-go/common"
)

// GPUInstance is the GPU-aligned representation of one instance's transform:
// a column-major 4x4 matrix uploaded as four vec4 columns. Matches the
// instance attribute layout generated by #instance_input (four Float32x4
// attributes at consecutive locations).
// Size: 64 bytes (std430 aligned, no padding required).
type GPUInstance struct {
	Transform [16]float32 // offset 0: column-major model-view-projection matrix (64 bytes)
}

// NewGPUInstance creates a GPUInstance with its transform set to the identity
// matrix.
//
// Returns:
//   - GPUInstance: an instance whose transform leaves vertices unchanged.
func NewGPUInstance() GPUInstance {
	var g GPUInstance
	common.Identity(g.Transform[:])
	return g
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	return common.AppendFloats(make([]byte, 0, 64), g.Transform[:]...)
}

// InstanceBytes serializes a batch of instances into a single contiguous
// buffer for one instance-buffer upload. GPUInstance has no padding, so the
// slice's memory is already in upload layout.
//
// Parameters:
//   - instances: the instances to serialize, in draw order.
//
// Returns:
//   - []byte: the packed instance data, or nil when instances is empty.
func InstanceBytes(instances []GPUInstance) []byte {
	return common.SliceToBytes(instances)
}
