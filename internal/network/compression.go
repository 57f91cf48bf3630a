// File: internal/network/compression.go
package network

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

const acceptEncoding = "br, gzip, identity"

// compressionTransport advertises brotli and gzip and decodes the response
// body so callers always read plain bytes.
type compressionTransport struct {
	next http.RoundTripper
}

func (t *compressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// closeWrapper closes the decoder and then the body it reads from.
type closeWrapper struct {
	io.Reader
	decoder  io.Closer
	original io.ReadCloser
}

func (w *closeWrapper) Close() error {
	var err1 error
	if w.decoder != nil {
		err1 = w.decoder.Close()
	}
	return errors.Join(err1, w.original.Close())
}

// DecompressResponse wraps resp.Body with decoders for every Content-Encoding
// layer, last applied first. On success the encoding and length headers are
// dropped. On error the body may be partially consumed and must be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	var layers []string
	for _, v := range encodings {
		for _, e := range strings.Split(v, ",") {
			layers = append(layers, strings.ToLower(strings.TrimSpace(e)))
		}
	}

	for i := len(layers) - 1; i >= 0; i-- {
		switch layers[i] {
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(resp.Body)
			if err != nil {
				return fmt.Errorf("gzip initialization error: %w", err)
			}
			resp.Body = &closeWrapper{Reader: zr, decoder: zr, original: resp.Body}
		case "br":
			resp.Body = &closeWrapper{Reader: brotli.NewReader(resp.Body), original: resp.Body}
		case "identity", "":
		default:
			return fmt.Errorf("unsupported Content-Encoding layer: %s", layers[i])
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}
