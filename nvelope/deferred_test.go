package nvelope_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/muir/fruitstand/nvelope"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// choppyWriter accepts one byte per Write and reports a short
// write until it has accepted limit bytes.  After that it fails.
type choppyWriter struct {
	*httptest.ResponseRecorder
	limit int
	fail  error
}

func (w *choppyWriter) Write(b []byte) (int, error) {
	if w.limit == 0 {
		return 0, w.fail
	}
	if len(b) == 0 {
		return 0, nil
	}
	w.limit--
	_, _ = w.ResponseRecorder.Write(b[:1])
	if len(b) > 1 {
		return 1, io.ErrShortWrite
	}
	return 1, nil
}

func TestDeferredWriterBuffers(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(nvelope.RequestIDHeader, "r-1")
	w := nvelope.NewDeferredWriter(rec)
	assert.Equal(t, rec, w.UnderlyingWriter())
	assert.Equal(t, http.StatusOK, w.Status(), "default status")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(nvelope.RequestIDHeader, "r-2")
	w.WriteHeader(http.StatusCreated)
	_, err := w.Write([]byte(`{"name":"Apple",`))
	require.NoError(t, err)
	_, err = w.Write([]byte(`"stock":10}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Status())
	assert.Equal(t, 27, w.Len())
	assert.False(t, w.Done())
	assert.Empty(t, rec.Body.String(), "body held back")
	assert.Empty(t, rec.Header().Get("Content-Type"), "header held back")
	assert.Equal(t, "r-1", rec.Header().Get(nvelope.RequestIDHeader))

	require.NoError(t, w.Flush())
	require.NoError(t, w.Flush(), "second flush is a no-op")
	assert.True(t, w.Done())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"name":"Apple","stock":10}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "r-2", rec.Header().Get(nvelope.RequestIDHeader))

	_, err = w.Write([]byte("\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Apple","stock":10}`+"\n", rec.Body.String(), "writes pass through after flush")
}

func TestDeferredWriterDropsRemovedHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Location", "/fruit/fold")
	w := nvelope.NewDeferredWriter(rec)
	w.Header().Del("Location")
	require.NoError(t, w.Flush())
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeferredWriterReset(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(nvelope.RequestIDHeader, "r-1")
	w := nvelope.NewDeferredWriter(rec)

	w.Header().Set("Cache-Control", "no-store")
	w.PreserveHeader()

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "max-age=60")
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("partial"))

	w.Reset()
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, http.StatusOK, w.Status())
	assert.Empty(t, w.Header().Get("Content-Type"))

	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("{}"))
	require.NoError(t, w.Flush())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), "preserved")
	assert.Equal(t, "r-1", rec.Header().Get(nvelope.RequestIDHeader), "original")
	assert.Empty(t, rec.Header().Get("Content-Type"), "discarded by reset")
}

func TestDeferredWriterShortWrites(t *testing.T) {
	cw := &choppyWriter{ResponseRecorder: httptest.NewRecorder(), limit: 100}
	w := nvelope.NewDeferredWriter(cw)
	_, _ = w.Write([]byte("fkiwi"))
	require.NoError(t, w.Flush())
	assert.Equal(t, "fkiwi", cw.Body.String())
}

func TestDeferredWriterWriteError(t *testing.T) {
	cw := &choppyWriter{
		ResponseRecorder: httptest.NewRecorder(),
		limit:            2,
		fail:             errors.New("connection reset"),
	}
	w := nvelope.NewDeferredWriter(cw)
	_, _ = w.Write([]byte("fkiwi"))
	err := w.Flush()
	require.Error(t, err)
	assert.Equal(t, "flush deferred writer: connection reset", err.Error())
	assert.Equal(t, "fk", cw.Body.String())
}
