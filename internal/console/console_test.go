package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/keyverify/internal/registry"
)

func TestRender_ShowsKeysStatsAndLogs(t *testing.T) {
	store := registry.NewStore([]string{"AB4D-XR2L-89TM-J7KQ", "qwert"})
	_, _ = store.Verify("qwert", "10.1.2.3")
	_, _ = store.Verify("nope", "10.1.2.3")

	var buf bytes.Buffer
	page := NewPage(store, "http://localhost:3000/", time.Now())
	require.NoError(t, Render(&buf, page))

	html := buf.String()
	assert.Contains(t, html, "AB4D-XR2L-89TM-J7KQ")
	assert.Contains(t, html, "http://localhost:3000/verificar?chave=SUA_CHAVE")
	assert.Contains(t, html, "log-approved")
	assert.Contains(t, html, "log-rejected")
	assert.Contains(t, html, "10.1.2.3")
	assert.Contains(t, html, "50%")
}

func TestRender_EscapesKeys(t *testing.T) {
	store := registry.NewStore([]string{`<script>alert("x")</script>`})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewPage(store, "http://h", time.Now())))

	assert.NotContains(t, buf.String(), `<script>alert("x")</script>`)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRender_LimitsVisibleLogs(t *testing.T) {
	store := registry.NewStore(nil)
	for i := 0; i < 30; i++ {
		_, _ = store.Verify("k", "x")
	}
	page := NewPage(store, "http://h", time.Now())
	assert.Len(t, page.Logs, VisibleLogs)
}

func TestLogClass(t *testing.T) {
	assert.Equal(t, "log-approved", logClass(registry.ResultApproved))
	assert.Equal(t, "log-rejected", logClass(registry.ResultRejected))
	assert.Equal(t, "log-error", logClass(registry.ResultMissingKey))
	assert.Equal(t, "log-system", logClass(registry.ResultKeyCreated))
}
