package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gofactor/internal/recovery/usecase.(*Usecase).Verify(...)
	/src/gofactor/internal/recovery/usecase/verify.go:42 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
`)

	assert.Equal(t, []string{"internal/recovery/usecase/verify.go:42"}, InternalPaths(stack))
	assert.Empty(t, InternalPaths([]byte("no frames here")))
}
