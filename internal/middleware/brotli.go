package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig configures response compression.
type BrotliConfig struct {
	Quality   int
	MinLength int
	Skipper   func(c *gin.Context) bool
	// ExcludedContentTypes are passed through untouched once the handler sets
	// them, e.g. PDF and XLSX output that is already compressed.
	ExcludedContentTypes []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
	ExcludedContentTypes: []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/zip",
	},
}

type brotliWriter struct {
	gin.ResponseWriter
	cfg     *BrotliConfig
	writer  *brotli.Writer
	buf     []byte
	decided bool
	// compress is only meaningful once decided is set.
	compress bool
}

// decide picks compression once the content type and the first MinLength
// bytes are known.
func (bw *brotliWriter) decide() {
	bw.decided = true
	if excludedType(bw.Header().Get("Content-Type"), bw.cfg.ExcludedContentTypes) {
		return
	}
	bw.compress = true
	bw.Header().Set("Content-Encoding", "br")
	bw.Header().Del("Content-Length")
	bw.writer = brotli.NewWriterLevel(bw.ResponseWriter, bw.cfg.Quality)
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		if bw.compress {
			return bw.writer.Write(data)
		}
		return bw.ResponseWriter.Write(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.cfg.MinLength {
		return len(data), nil
	}
	bw.decide()
	if err := bw.drain(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

func (bw *brotliWriter) drain() error {
	if len(bw.buf) == 0 {
		return nil
	}
	var err error
	if bw.compress {
		_, err = bw.writer.Write(bw.buf)
	} else {
		_, err = bw.ResponseWriter.Write(bw.buf)
	}
	bw.buf = bw.buf[:0]
	return err
}

// Flush sends buffered bytes uncompressed when no decision was made yet.
func (bw *brotliWriter) Flush() {
	bw.decided = true
	_ = bw.drain()
	if bw.compress {
		_ = bw.writer.Flush()
	}
	bw.ResponseWriter.Flush()
}

// finish writes short bodies as is and closes the compressor.
func (bw *brotliWriter) finish() error {
	bw.decided = true
	if err := bw.drain(); err != nil {
		return err
	}
	if bw.compress {
		return bw.writer.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{ResponseWriter: c.Writer, cfg: &cfg}
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Writer = bw
		c.Next()
	}
}

// shouldSkip returns true for protocols that are incompatible with
// buffered compression and must be passed through untouched.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	// The preview stream upgrades to a WebSocket; wrapping the writer breaks the hijack.
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func excludedType(contentType string, excluded []string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, t := range excluded {
		if strings.EqualFold(mediaType, t) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		enc = strings.TrimSpace(strings.SplitN(enc, ";", 2)[0])
		if strings.EqualFold(enc, "br") {
			return true
		}
	}
	return false
}
