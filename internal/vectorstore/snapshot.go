package vectorstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"ragpipe/internal/domain"
)

// Snapshot layout: a directory holding two sibling artifacts that must be
// loaded together.
const (
	indexFile     = "index.bin"      // binary vector blob
	sideTableFile = "documents.json" // documents, metadata, dimension
)

var indexMagic = [4]byte{'R', 'P', 'I', 'X'}

const indexVersion = 1

type sideTable struct {
	Documents []string          `json:"documents"`
	Metadata  []domain.Metadata `json:"metadata"`
	Dimension int               `json:"dimension"`
}

// SnapshotExists reports whether dir holds a complete snapshot, i.e.
// both sibling artifacts are present.
func SnapshotExists(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, indexFile)); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, sideTableFile))
	return err == nil
}

// Save persists the index to dir as a binary vector blob plus a JSON side
// table, creating the directory if needed.
func (x *Index) Save(dir string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := x.writeVectors(filepath.Join(dir, indexFile)); err != nil {
		return err
	}
	data, err := json.Marshal(sideTable{
		Documents: x.documents,
		Metadata:  x.metadata,
		Dimension: x.dimension,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sideTableFile), data, 0o644)
}

func (x *Index) writeVectors(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(indexMagic[:]); err != nil {
		return err
	}
	var header [16]byte
	binary.LittleEndian.PutUint32(header[0:], indexVersion)
	binary.LittleEndian.PutUint32(header[4:], uint32(x.dimension))
	binary.LittleEndian.PutUint64(header[8:], uint64(len(x.vectors)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	var buf [8]byte
	for _, vec := range x.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads a snapshot written by Save. Both artifacts must be present,
// and the dimension recorded in the side table must match the one declared
// by the binary blob; any disagreement is treated as a corrupt snapshot.
func Load(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, sideTableFile))
	if err != nil {
		return nil, fmt.Errorf("read side table: %w", err)
	}
	var st sideTable
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if st.Dimension <= 0 {
		return nil, fmt.Errorf("%w: side table declares dimension %d", ErrCorruptSnapshot, st.Dimension)
	}
	if len(st.Documents) != len(st.Metadata) {
		return nil, fmt.Errorf("%w: %d documents but %d metadata records",
			ErrCorruptSnapshot, len(st.Documents), len(st.Metadata))
	}

	vectors, dim, err := readVectors(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, err
	}
	if dim != st.Dimension {
		return nil, fmt.Errorf("%w: binary index dimension %d != side table dimension %d",
			ErrCorruptSnapshot, dim, st.Dimension)
	}
	if len(vectors) != len(st.Documents) {
		return nil, fmt.Errorf("%w: %d vectors but %d documents",
			ErrCorruptSnapshot, len(vectors), len(st.Documents))
	}

	return &Index{
		dimension: st.Dimension,
		vectors:   vectors,
		documents: st.Documents,
		metadata:  st.Metadata,
	}, nil
}

func readVectors(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read binary index: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if magic != indexMagic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, magic[:])
	}
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if v := binary.LittleEndian.Uint32(header[0:]); v != indexVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, v)
	}
	dim := int(binary.LittleEndian.Uint32(header[4:]))
	count := int(binary.LittleEndian.Uint64(header[8:]))
	if dim <= 0 || count < 0 {
		return nil, 0, fmt.Errorf("%w: dimension %d, count %d", ErrCorruptSnapshot, dim, count)
	}

	vectors := make([][]float64, count)
	var buf [8]byte
	for i := 0; i < count; i++ {
		vec := make([]float64, dim)
		for j := 0; j < dim; j++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, 0, fmt.Errorf("%w: truncated vector data: %v", ErrCorruptSnapshot, err)
			}
			vec[j] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
		}
		vectors[i] = vec
	}
	return vectors, dim, nil
}
