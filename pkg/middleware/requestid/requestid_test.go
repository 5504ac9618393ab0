package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var got string
	r.GET("/", func(c *gin.Context) {
		got = Value(c)
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return got, rec
}

func TestMiddlewareIssuesID(t *testing.T) {
	got, rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestMiddlewareHonoursInboundID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "edit-hook-42")

	got, rec := serve(t, req)
	assert.Equal(t, "edit-hook-42", got)
	assert.Equal(t, "edit-hook-42", rec.Header().Get("X-Request-ID"))
}
