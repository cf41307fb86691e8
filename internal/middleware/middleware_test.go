package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/auth"
	"github.com/mmynk/paygate/internal/metrics"
)

// fakeRequest is enough of a connect.AnyRequest for interceptor tests.
type fakeRequest struct {
	connect.AnyRequest
	header    http.Header
	procedure string
}

func (r *fakeRequest) Header() http.Header { return r.header }

func (r *fakeRequest) Spec() connect.Spec { return connect.Spec{Procedure: r.procedure} }

func (r *fakeRequest) Peer() connect.Peer { return connect.Peer{Addr: "10.0.0.7:51234"} }

func newFakeRequest(procedure, token string) *fakeRequest {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return &fakeRequest{header: h, procedure: procedure}
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	admin, err := jwtManager.Generate("root", auth.RoleAdmin)
	require.NoError(t, err)
	viewer, err := jwtManager.Generate("reader", auth.RoleViewer)
	require.NoError(t, err)

	var seen string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetOperator(ctx)
		return nil, nil
	}
	call := RequireRole(jwtManager, auth.RoleAdmin, "/svc/Guarded")(next)
	ctx := context.Background()

	tests := []struct {
		name      string
		procedure string
		token     string
		wantCode  connect.Code
		wantOp    string
	}{
		{name: "guarded without token", procedure: "/svc/Guarded", wantCode: connect.CodeUnauthenticated},
		{name: "guarded with garbage", procedure: "/svc/Guarded", token: "nope", wantCode: connect.CodeUnauthenticated},
		{name: "guarded as viewer", procedure: "/svc/Guarded", token: viewer, wantCode: connect.CodePermissionDenied},
		{name: "guarded as admin", procedure: "/svc/Guarded", token: admin, wantOp: "root"},
		{name: "open without token", procedure: "/svc/Open"},
		{name: "open as viewer", procedure: "/svc/Open", token: viewer, wantOp: "reader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			_, err := call(ctx, newFakeRequest(tt.procedure, tt.token))
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, seen)
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("Merchant not found"))
	}
	_, err := LoggingInterceptor(logger)(failing)(context.Background(), newFakeRequest("/svc/Get", ""))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "RPC rejected")
	assert.Contains(t, out, "procedure=/svc/Get")
	assert.Contains(t, out, "peer=10.0.0.7:51234")
	assert.Contains(t, out, "Merchant not found")
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.New()
	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) { return nil, nil }
	bad := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	}

	ctx := context.Background()
	_, _ = MetricsInterceptor(m)(ok)(ctx, newFakeRequest("/svc/Get", ""))
	_, _ = MetricsInterceptor(m)(bad)(ctx, newFakeRequest("/svc/Get", ""))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	var lines []string
	for _, l := range strings.Split(string(body), "\n") {
		if strings.Contains(l, `procedure="/svc/Get"`) && strings.Contains(l, "_count") {
			lines = append(lines, l)
		}
	}
	assert.Len(t, lines, 2, "one series per result code")
	assert.Contains(t, strings.Join(lines, "\n"), `code="invalid_argument"`)
}
