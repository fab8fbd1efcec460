package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger(t *testing.T) {
	t.Run("filters below minimum level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger("test", LevelWarn)
		l.SetOutput(&buf)

		l.Infof("hidden %d", 1)
		l.Warnf("shown %d", 2)

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "[WARN]")
		assert.Contains(t, out, "shown 2")
	})

	t.Run("fields are appended and isolated", func(t *testing.T) {
		var buf bytes.Buffer
		base := NewLogger("test", LevelDebug)
		base.SetOutput(&buf)

		child := base.WithField("gallery_id", "gallery1")
		child.Info("generated")
		base.Info("plain")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)
		assert.Contains(t, string(lines[0]), "gallery_id=gallery1")
		assert.NotContains(t, string(lines[1]), "gallery_id")
	})

	t.Run("SetLevel", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger("test", LevelError)
		l.SetOutput(&buf)
		l.SetLevel(LevelDebug)
		l.Debugf("now visible")
		assert.Contains(t, buf.String(), "[DEBUG]")
	})

	t.Run("context without span adds nothing", func(t *testing.T) {
		l := NewLogger("test", LevelInfo)
		assert.Same(t, l, l.WithContext(context.Background()))
	})
}

func TestMiddleware(t *testing.T) {
	metrics, err := NewHTTPMetrics()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(TracingMiddleware())
	r.Use(MetricsMiddleware(metrics))
	r.Get("/api/galleries/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/galleries/gallery9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", rec.Body.String())
}

func TestInitializeDisabled(t *testing.T) {
	tel, err := Initialize(context.Background(), Config{ServiceName: "test"})
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
