package render

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"

	"gocrystal/pkg/geom"
)

// glTF 2.0 JSON document types; only the subset this encoder emits.

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Mesh int `json:"mesh"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   int            `json:"material"`
}

type gltfMesh struct {
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPBR struct {
	BaseColorFactor [4]float64 `json:"baseColorFactor"`
	MetallicFactor  float64    `json:"metallicFactor"`
	RoughnessFactor float64    `json:"roughnessFactor"`
}

type gltfMaterial struct {
	PBRMetallicRoughness gltfPBR `json:"pbrMetallicRoughness"`
	AlphaMode            string  `json:"alphaMode"`
	DoubleSided          bool    `json:"doubleSided"`
}

type gltfBuffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target"`
}

type gltfAccessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float64 `json:"min,omitempty"`
	Max           []float64 `json:"max,omitempty"`
}

type gltfDoc struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       int              `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes"`
	Meshes      []gltfMesh       `json:"meshes"`
	Materials   []gltfMaterial   `json:"materials"`
	Buffers     []gltfBuffer     `json:"buffers"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Accessors   []gltfAccessor   `json:"accessors"`
}

const (
	componentFloat  = 5126
	componentUShort = 5123
	targetArray     = 34962
	targetElement   = 34963
)

// EncodeGLTF emits a glTF 2.0 scene with one mesh in a single embedded
// buffer. Vertices are duplicated per face for flat shading. Coordinates are
// multiplied by scale.
func EncodeGLTF(g *geom.CrystalGeometry, scale float64) ([]byte, error) {
	var positions, normals []float32
	var indices []uint16

	min := []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}

	for _, f := range g.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		start := uint16(len(positions) / 3)
		for _, v := range f.Vertices {
			x, y, z := v.X*scale, v.Y*scale, v.Z*scale
			positions = append(positions, float32(x), float32(y), float32(z))
			normals = append(normals, float32(f.Normal.X), float32(f.Normal.Y), float32(f.Normal.Z))
			for i, c := range []float64{x, y, z} {
				min[i] = math.Min(min[i], c)
				max[i] = math.Max(max[i], c)
			}
		}
		for i := 1; i+1 < len(f.Vertices); i++ {
			indices = append(indices, start, start+uint16(i), start+uint16(i+1))
		}
	}

	// Pack positions, normals, indices into one little-endian buffer.
	posBytes := len(positions) * 4
	normBytes := len(normals) * 4
	idxBytes := len(indices) * 2
	buf := make([]byte, posBytes+normBytes+idxBytes)
	for i, v := range positions {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range normals {
		binary.LittleEndian.PutUint32(buf[posBytes+i*4:], math.Float32bits(v))
	}
	for i, v := range indices {
		binary.LittleEndian.PutUint16(buf[posBytes+normBytes+i*2:], v)
	}

	vertexCount := len(positions) / 3
	if vertexCount == 0 {
		min, max = nil, nil
	}
	doc := gltfDoc{
		Asset:  gltfAsset{Version: "2.0", Generator: "gocrystal"},
		Scene:  0,
		Scenes: []gltfScene{{Nodes: []int{0}}},
		Nodes:  []gltfNode{{Mesh: 0}},
		Meshes: []gltfMesh{{Primitives: []gltfPrimitive{{
			Attributes: map[string]int{"POSITION": 0, "NORMAL": 1},
			Indices:    2,
			Material:   0,
		}}}},
		Materials: []gltfMaterial{{
			PBRMetallicRoughness: gltfPBR{
				BaseColorFactor: [4]float64{0.055, 0.647, 0.914, 0.9},
				MetallicFactor:  0.1,
				RoughnessFactor: 0.3,
			},
			AlphaMode:   "BLEND",
			DoubleSided: true,
		}},
		Buffers: []gltfBuffer{{
			ByteLength: len(buf),
			URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf),
		}},
		BufferViews: []gltfBufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posBytes, Target: targetArray},
			{Buffer: 0, ByteOffset: posBytes, ByteLength: normBytes, Target: targetArray},
			{Buffer: 0, ByteOffset: posBytes + normBytes, ByteLength: idxBytes, Target: targetElement},
		},
		Accessors: []gltfAccessor{
			{BufferView: 0, ComponentType: componentFloat, Count: vertexCount, Type: "VEC3", Min: min, Max: max},
			{BufferView: 1, ComponentType: componentFloat, Count: vertexCount, Type: "VEC3"},
			{BufferView: 2, ComponentType: componentUShort, Count: len(indices), Type: "SCALAR"},
		},
	}
	return json.Marshal(doc)
}
