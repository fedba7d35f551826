package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

// EnsureJFIF inserts JFIF APP0 segment carrying density in dots per inch
// when jpeg data has none. It reports whether segment was added.
func EnsureJFIF(data []byte, dpi int) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, false, nil
	}

	units := uint8(1) // dots per inch
	if dpi <= 0 {
		units, dpi = 0, 1
	}
	buf := new(bytes.Buffer)
	buf.Write(data[:2])
	buf.Write([]byte{0xFF, 0xE0})
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10))
	buf.Write([]byte{'J', 'F', 'I', 'F', 0x00, 0x01, 0x02})
	_ = binary.Write(buf, binary.BigEndian, units)
	_ = binary.Write(buf, binary.BigEndian, uint16(dpi))
	_ = binary.Write(buf, binary.BigEndian, uint16(dpi))
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEG encodes img with quality and density.
func EncodeJPEG(img image.Image, quality, dpi int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	out, _, err := EnsureJFIF(buf.Bytes(), dpi)
	return out, err
}
