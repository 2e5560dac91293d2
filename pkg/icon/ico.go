package icon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

const (
	icoHeaderLen = 6
	icoEntryLen  = 16
)

type icoHeader struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type icoEntry struct {
	Width      uint8
	Height     uint8
	Colors     uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

// EncodeICO writes img as an ICO file holding one PNG-compressed image per
// requested size. Sizes that differ from the source are resampled.
func EncodeICO(w io.Writer, img image.Image, sizes []int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: none given", ErrInvalidICOSize)
	}

	payloads := make([][]byte, 0, len(sizes))
	for _, size := range sizes {
		if size < 1 || size > 256 {
			return fmt.Errorf("%w: %d", ErrInvalidICOSize, size)
		}

		var scaled image.Image = img
		if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
			scaled = imaging.Resize(img, size, size, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, scaled); err != nil {
			return fmt.Errorf("failed to encode %dpx image: %w", size, err)
		}
		payloads = append(payloads, buf.Bytes())
	}

	header := icoHeader{Type: 1, Count: uint16(len(sizes))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	offset := uint32(icoHeaderLen + icoEntryLen*len(sizes))
	for i, size := range sizes {
		entry := icoEntry{
			// 0 means 256 in the directory entry
			Width:      uint8(size % 256),
			Height:     uint8(size % 256),
			Planes:     1,
			BitCount:   32,
			BytesInRes: uint32(len(payloads[i])),
			Offset:     offset,
		}
		if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
			return err
		}
		offset += entry.BytesInRes
	}

	for _, p := range payloads {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}

	return nil
}
