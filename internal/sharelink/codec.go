// Package sharelink encodes analysis results into URL-safe share tokens and back.
//
// A token has two segments joined by a dot: the unpadded URL-safe base64 of the
// result's JSON, and the unpadded URL-safe base64 of the big-endian CRC-32 (IEEE)
// of those same JSON bytes. Neither segment needs percent-encoding in a query string.
package sharelink

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-advisor/internal/schemas"
	"github.com/jonathan/career-advisor/internal/types"
)

// DefaultMaxTokenLength bounds the tokens Decode will look at. Real results
// encode to a few kilobytes; the limit keeps hostile query strings cheap.
const DefaultMaxTokenLength = 64 * 1024

const separator = "."

var encoding = base64.RawURLEncoding.Strict()

// Codec converts results to tokens and back.
type Codec struct {
	// MaxTokenLength is the longest token accepted by Decode. Zero means DefaultMaxTokenLength.
	MaxTokenLength int
}

// NewCodec returns a Codec with default limits.
func NewCodec() *Codec {
	return &Codec{MaxTokenLength: DefaultMaxTokenLength}
}

// Encode serializes a valid result into a share token.
func (c *Codec) Encode(result *types.AnalysisResult) (string, error) {
	if err := result.Validate(); err != nil {
		return "", fmt.Errorf("cannot share an invalid result: %w", err)
	}

	payload, err := marshal(result)
	if err != nil {
		return "", err
	}

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc32.ChecksumIEEE(payload))

	return encoding.EncodeToString(payload) + separator + encoding.EncodeToString(sum[:]), nil
}

// Decode reverses Encode. Every failure is an *InvalidShareLinkError.
func (c *Codec) Decode(token string) (*types.AnalysisResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid(ReasonMissing, nil)
	}
	if len(token) > c.maxTokenLength() {
		return nil, invalid(ReasonTooLong, fmt.Errorf("token is %d bytes, limit is %d", len(token), c.maxTokenLength()))
	}
	if strings.Contains(token, "%") {
		unescaped, err := url.QueryUnescape(token)
		if err != nil {
			return nil, invalid(ReasonMalformed, err)
		}
		token = unescaped
	}

	body, sumPart, ok := strings.Cut(token, separator)
	if !ok || body == "" || strings.Contains(sumPart, separator) {
		return nil, invalid(ReasonMalformed, errors.New("expected two dot-separated segments"))
	}

	payload, err := encoding.DecodeString(body)
	if err != nil {
		return nil, invalid(ReasonEncoding, err)
	}
	sum, err := encoding.DecodeString(sumPart)
	if err != nil {
		return nil, invalid(ReasonEncoding, err)
	}
	if len(sum) != 4 || binary.BigEndian.Uint32(sum) != crc32.ChecksumIEEE(payload) {
		return nil, invalid(ReasonChecksum, errors.New("checksum mismatch"))
	}

	if !utf8.Valid(payload) {
		return nil, invalid(ReasonNotUTF8, nil)
	}
	if !json.Valid(payload) {
		return nil, invalid(ReasonNotJSON, nil)
	}
	if err := schemas.ValidateAnalysisResult(payload); err != nil {
		return nil, invalid(ReasonInvalidData, err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, invalid(ReasonNotJSON, err)
	}
	if err := result.Validate(); err != nil {
		return nil, invalid(ReasonInvalidData, err)
	}

	return &result, nil
}

func (c *Codec) maxTokenLength() int {
	if c == nil || c.MaxTokenLength <= 0 {
		return DefaultMaxTokenLength
	}
	return c.MaxTokenLength
}

// marshal produces the canonical JSON body: struct field order, no HTML escaping.
func marshal(result *types.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var defaultCodec = NewCodec()

// Encode serializes a result with the default codec.
func Encode(result *types.AnalysisResult) (string, error) {
	return defaultCodec.Encode(result)
}

// Decode parses a token with the default codec.
func Decode(token string) (*types.AnalysisResult, error) {
	return defaultCodec.Decode(token)
}
