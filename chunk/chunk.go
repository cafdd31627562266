// Package chunk packs serialized pieces into size-bounded chunk files. Each
// chunk starts with a 4-byte little-endian index length, then a gob index
// mapping piece name to its byte range in the data section that follows.
package chunk

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/jsphweid/harmalign/constants"
	"github.com/jsphweid/harmalign/model"
)

func encodePayload(p model.PiecePayload) []byte {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(p); err != nil {
		panic("could not encode piece payload: " + err.Error())
	}
	return buf.Bytes()
}

func makeChunk(payloads map[string][]byte, sortedNames []string) model.ChunkOverview {
	var c model.ChunkOverview
	c.Filename = uuid.New().String() + ".dat"
	c.Start = sortedNames[0]
	c.End = sortedNames[len(sortedNames)-1]

	chunkIndex := make(model.ChunkIndex)
	dataBuf := new(bytes.Buffer)
	for _, name := range sortedNames {
		start := uint32(dataBuf.Len())
		dataBuf.Write(payloads[name])
		chunkIndex[name] = model.Pair{Start: start, End: uint32(dataBuf.Len())}
	}

	indexBuf := new(bytes.Buffer)
	if err := gob.NewEncoder(indexBuf).Encode(chunkIndex); err != nil {
		panic("error making chunk, couldn't encode index: " + err.Error())
	}

	sizeBuf := new(bytes.Buffer)
	binary.Write(sizeBuf, binary.LittleEndian, uint32(indexBuf.Len()))

	var finalBytes []byte
	finalBytes = append(finalBytes, sizeBuf.Bytes()...)
	finalBytes = append(finalBytes, indexBuf.Bytes()...)
	finalBytes = append(finalBytes, dataBuf.Bytes()...)

	filename := filepath.Join(constants.GetIndexDir(), c.Filename)
	if err := os.WriteFile(filename, finalBytes, 0777); err != nil {
		panic("Write failed for chunk file: " + err.Error())
	}
	return c
}

// CreateAll writes every payload out into preferred-size chunks, keyed and
// split by piece name so the serve command can binary-search the overviews.
func CreateAll(payloads []model.PiecePayload) []model.ChunkOverview {
	encoded := make(map[string][]byte, len(payloads))
	names := make([]string, 0, len(payloads))
	for _, p := range payloads {
		encoded[p.Piece.Name] = encodePayload(p)
		names = append(names, p.Piece.Name)
	}
	sort.Strings(names)

	var res []model.ChunkOverview
	var currNames []string
	size := 0
	for i, name := range names {
		currNames = append(currNames, name)
		size += len(encoded[name]) + len(name) + 8

		isLast := i == len(names)-1
		if size > constants.PreferredChunkSize || isLast {
			res = append(res, makeChunk(encoded, currNames))
			size = 0
			currNames = currNames[:0]
		}
	}
	return res
}

// ReadIndex parses a chunk file's index, leaving the reader positioned at
// the start of the data section.
func ReadIndex(f io.Reader) (model.ChunkIndex, uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, 0, fmt.Errorf("could not read index length: %w", err)
	}
	indexLength := binary.LittleEndian.Uint32(buf)

	buf = make([]byte, indexLength)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, 0, fmt.Errorf("could not read index: %w", err)
	}

	var index model.ChunkIndex
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&index); err != nil {
		return nil, 0, fmt.Errorf("could not decode index: %w", err)
	}
	return index, indexLength, nil
}

func findInChunk(filename, name string) (*model.PiecePayload, error) {
	f, err := os.Open(filepath.Join(constants.GetIndexDir(), filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	index, _, err := ReadIndex(f)
	if err != nil {
		return nil, err
	}
	pair, ok := index[name]
	if !ok {
		return nil, nil
	}

	if _, err := f.Seek(int64(pair.Start), io.SeekCurrent); err != nil {
		return nil, err
	}
	buf := make([]byte, pair.End-pair.Start)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("could not read from seeked position: %w", err)
	}

	var payload model.PiecePayload
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not decode piece payload: %w", err)
	}
	return &payload, nil
}

// Find locates a piece by name across the chunk overviews. A nil payload
// with nil error means the piece does not exist.
func Find(allChunks []model.ChunkOverview, name string) (*model.PiecePayload, error) {
	for _, c := range allChunks {
		if name >= c.Start && name <= c.End {
			return findInChunk(c.Filename, name)
		}
	}
	return nil, nil
}
