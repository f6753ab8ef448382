// Package model holds CPU-side mesh data with heterogeneous vertex channels.
// Position is always present; color, normal, and uv channels are optional.
// The channels a mesh carries determine its feature flags, and the interleaved
// vertex packing follows the same declaration order the shader layer resolves
// layouts in: position, color, normal, uv.
package model

import (
	"fmt"

	"github.com/Anti-Alias/prism-go/common"
	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
)

// MeshData is raw indexed mesh geometry. Optional channels are nil when
// absent; non-nil channels must have one entry per position.
type MeshData struct {
	Indices   []uint32
	Positions [][3]float32
	Colors    [][4]float32
	Normals   [][3]float32
	UVs       [][2]float32
}

// Key computes the mesh's feature contribution from its populated channels.
//
// Returns:
//   - feature.Set: flags for each optional channel present
func (m *MeshData) Key() feature.Set {
	var fs feature.Set
	if m.Colors != nil {
		fs = fs.With(feature.Color)
	}
	if m.Normals != nil {
		fs = fs.With(feature.Normal)
	}
	if m.UVs != nil {
		fs = fs.With(feature.UV)
	}
	return fs
}

// VertexCount returns the number of vertices stored.
//
// Returns:
//   - int: the number of positions
func (m *MeshData) VertexCount() int {
	return len(m.Positions)
}

// VertexStride returns the byte size of one interleaved vertex for the
// channels this mesh carries.
//
// Returns:
//   - int: bytes per vertex
func (m *MeshData) VertexStride() int {
	stride := 12
	if m.Colors != nil {
		stride += 16
	}
	if m.Normals != nil {
		stride += 12
	}
	if m.UVs != nil {
		stride += 8
	}
	return stride
}

// VertexBytes interleaves the mesh's channels into a single packed buffer in
// channel declaration order (position, color, normal, uv), little-endian,
// ready for GPU upload. The packing order and per-channel sizes match the
// vertex layout the shader layer resolves for this mesh's Key().
//
// Returns:
//   - []byte: the interleaved vertex buffer
//   - error: an error if any populated channel's length differs from the position count
func (m *MeshData) VertexBytes() ([]byte, error) {
	if err := m.checkChannels(); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, m.VertexCount()*m.VertexStride())
	for i := range m.Positions {
		buf = common.AppendFloats(buf, m.Positions[i][:]...)
		if m.Colors != nil {
			buf = common.AppendFloats(buf, m.Colors[i][:]...)
		}
		if m.Normals != nil {
			buf = common.AppendFloats(buf, m.Normals[i][:]...)
		}
		if m.UVs != nil {
			buf = common.AppendFloats(buf, m.UVs[i][:]...)
		}
	}
	return buf, nil
}

// IndexBytes serializes the index channel as little-endian uint32 values.
//
// Returns:
//   - []byte: the index buffer bytes
func (m *MeshData) IndexBytes() []byte {
	buf := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		buf = common.AppendUint32(buf, idx)
	}
	return buf
}

// checkChannels verifies every populated optional channel matches the
// position count.
func (m *MeshData) checkChannels() error {
	n := len(m.Positions)
	if m.Colors != nil && len(m.Colors) != n {
		return fmt.Errorf("model: color channel has %d entries, want %d", len(m.Colors), n)
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("model: normal channel has %d entries, want %d", len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("model: uv channel has %d entries, want %d", len(m.UVs), n)
	}
	return nil
}
