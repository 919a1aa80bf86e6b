package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/service"
)

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "https://t.me/codedrop_bot?start=aB3xY9Zq", deepLink("codedrop_bot", "aB3xY9Zq"))
}

func TestRenderCommitted_ContainsCodeAndLink(t *testing.T) {
	text := renderCommitted("codedrop_bot", "aB3xY9Zq", 3, domain.Policy{AutoDelete: true, DeleteAfterHours: 24})

	assert.Contains(t, text, "aB3xY9Zq")
	assert.Contains(t, text, "https://t.me/codedrop_bot?start=aB3xY9Zq")
	assert.Contains(t, text, "after 24 hour(s)")
}

func TestRenderPolicyLine(t *testing.T) {
	assert.Equal(t, "Auto-delete: off", renderPolicyLine(domain.Policy{}))
	assert.Equal(t, "Auto-delete: on, after 48 hour(s)", renderPolicyLine(domain.Policy{AutoDelete: true, DeleteAfterHours: 48}))
}

func TestRenderSummaries(t *testing.T) {
	assert.Equal(t, "You have no saved batches.", renderSummaries(nil))

	summaries := []domain.BatchSummary{{
		Code:        "aB3xY9Zq",
		Caption:     "vacation <photos>",
		Kind:        domain.KindPhoto,
		ItemCount:   4,
		CommittedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}}
	text := renderSummaries(summaries)
	assert.Contains(t, text, "aB3xY9Zq")
	assert.Contains(t, text, "4 photo item(s)")
	// markup in stored captions must not survive into HTML output
	assert.Contains(t, text, "&lt;photos&gt;")
	assert.NotContains(t, text, "<photos>")
}

func TestRenderRedeemed(t *testing.T) {
	clean := renderRedeemed(&service.RedeemResult{Groups: 2, Items: 5})
	assert.Equal(t, "Delivered 5 item(s) in 2 group(s).", clean)

	partial := renderRedeemed(&service.RedeemResult{
		Groups:   3,
		Items:    6,
		Failures: []service.GroupFailure{{Group: 2, Items: 2}},
	})
	assert.Contains(t, partial, "1 group(s) of 3 failed")
	assert.Contains(t, partial, "group 2 (2 items)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 42s", formatDuration(42*time.Second))
	assert.Equal(t, "2h 5m 0s", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "3d 1h 0m 9s", formatDuration(3*24*time.Hour+time.Hour+9*time.Second))
}

func TestRenderBroadcastProgress(t *testing.T) {
	text := renderBroadcastProgress(domain.BroadcastProgress{
		Delivered: 10, Total: 20, Succeeded: 9, Failed: 1, Elapsed: 30 * time.Second,
	})
	assert.Equal(t, "Broadcast 50% (10/20) - ok 9, failed 1, 0m 30s", text)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := truncate("0123456789abcdef", 10)
	assert.Len(t, []rune(long), 10)
}
