// Package textenc reads chapter and glossary files that arrive in the
// encodings common for novel sources: UTF-8 (with or without BOM), UTF-16
// (BOM-marked), and GBK. Content is transcoded to UTF-8 verbatim; nothing is
// split, trimmed, or otherwise interpreted.
package textenc

import (
	"bytes"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

// Encoding names returned by Detect.
const (
	EncodingUTF8    = "UTF-8"
	EncodingUTF8BOM = "UTF-8-BOM"
	EncodingUTF16LE = "UTF-16LE"
	EncodingUTF16BE = "UTF-16BE"
	EncodingGBK     = "GBK"
	EncodingUnknown = "UNKNOWN"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect identifies the encoding of raw file bytes. BOM markers win; then
// valid UTF-8; GBK is tried last since most byte sequences decode as
// something under GBK.
func Detect(data []byte) string {
	if len(data) >= 3 && bytes.Equal(data[:3], utf8BOM) {
		return EncodingUTF8BOM
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return EncodingUTF16LE
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return EncodingUTF16BE
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	if isValidGBK(data) {
		return EncodingGBK
	}
	return EncodingUnknown
}

func isValidGBK(data []byte) bool {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return false
	}
	return utf8.Valid(decoded)
}

// Decode converts raw file bytes to a UTF-8 string, detecting the encoding
// first. Unknown encodings are an error; a file we cannot decode must not be
// imported as mojibake.
func Decode(data []byte) (string, error) {
	encoding := Detect(data)
	logger.Debug("decoding text", logger.String("encoding", encoding), logger.Int("bytes", len(data)))

	switch encoding {
	case EncodingUTF8:
		return string(data), nil
	case EncodingUTF8BOM:
		return string(data[3:]), nil
	case EncodingUTF16LE:
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrInvalidInput, "failed to decode UTF-16LE text", err)
		}
		return string(decoded), nil
	case EncodingUTF16BE:
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrInvalidInput, "failed to decode UTF-16BE text", err)
		}
		return string(decoded), nil
	case EncodingGBK:
		decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrInvalidInput, "failed to decode GBK text", err)
		}
		return string(decoded), nil
	default:
		return "", types.NewAppError(types.ErrInvalidInput, "unsupported text encoding", nil)
	}
}

// DecodeFile reads a file and returns its content as a UTF-8 string.
func DecodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "file not found", path, err)
		}
		return "", types.NewAppError(types.ErrStorage, "failed to read file", err)
	}
	return Decode(data)
}
