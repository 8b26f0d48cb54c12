package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// gzipWriter откладывает отправку заголовков до первой непустой записи тела.
// Ответы без тела (204, 304, пустые) уходят без Content-Encoding.
type gzipWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	status      int
	wroteHeader bool
	plain       bool
}

func (w *gzipWriter) WriteHeader(statusCode int) {
	if statusCode < http.StatusOK {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	if w.wroteHeader || w.status != 0 {
		return
	}
	w.status = statusCode
	if !bodyAllowed(statusCode) {
		w.plain = true
		w.flushHeader()
	}
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.plain {
		w.flushHeader()
		return w.ResponseWriter.Write(b)
	}
	if len(b) == 0 {
		return 0, nil
	}

	if w.zw == nil {
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", "gzip")
		w.flushHeader()
		w.zw = gzip.NewWriter(w.ResponseWriter)
	}
	return w.zw.Write(b)
}

func (w *gzipWriter) flushHeader() {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(w.status)
}

// close завершает gzip-поток или отправляет статус ответа без тела.
func (w *gzipWriter) close() error {
	if w.zw != nil {
		return w.zw.Close()
	}
	if w.status != 0 {
		w.flushHeader()
	}
	return nil
}

func bodyAllowed(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified
}

type gzipReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func (r *gzipReader) Read(p []byte) (int, error) {
	return r.zr.Read(p)
}

func (r *gzipReader) Close() error {
	if err := r.r.Close(); err != nil {
		return err
	}
	return r.zr.Close()
}

// GzipMiddleware распаковывает тело запроса с Content-Encoding: gzip и сжимает
// ответ, если клиент передал Accept-Encoding: gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "malformed gzip body", http.StatusBadRequest)
				return
			}
			r.Body = &gzipReader{r: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		// ответ сжимается здесь, нижележащие обработчики не должны сжимать его повторно
		r.Header.Del("Accept-Encoding")

		gw := &gzipWriter{ResponseWriter: w}
		defer func() { _ = gw.close() }()

		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gw, r)
	})
}
