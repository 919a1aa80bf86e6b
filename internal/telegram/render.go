package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/service"
)

func deepLink(botName, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botName, code)
}

func renderWelcome() string {
	return "Hi! Send me a code to receive the files behind it, or open a share link."
}

func renderHelpBasic() string {
	return strings.Join([]string{
		"Send a code (or open a share link) and I deliver the files behind it.",
		"",
		"/start &lt;code&gt; - redeem a code",
		"/help - this message",
	}, "\n")
}

func renderHelpAuthorized() string {
	return strings.Join([]string{
		"Upload files or media and I stage them until you commit.",
		"",
		"/savefiles - commit the staged batch under a fresh code",
		"/cancelupload - drop the staged batch",
		"/viewfiles - list your committed batches",
		"/deletefiles &lt;code&gt; - delete one of your batches",
		"/config - auto-delete defaults",
		"/config &lt;code&gt; - per-batch auto-delete override",
		"/broadcast - reply to a message to fan it out to everyone",
		"/stats - service totals",
		"/uptime - process uptime",
		"/help - this message",
	}, "\n")
}

func renderStaged(count int) string {
	return fmt.Sprintf("Staged. %d item(s) pending. /savefiles to commit, /cancelupload to drop.", count)
}

func renderCommitted(botName, code string, n int, policy domain.Policy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saved %d item(s) under code <code>%s</code>\n", n, code)
	fmt.Fprintf(&b, "Share link: %s\n", deepLink(botName, code))
	b.WriteString(renderPolicyLine(policy))
	return b.String()
}

func renderPolicyLine(policy domain.Policy) string {
	if !policy.AutoDelete {
		return "Auto-delete: off"
	}
	return fmt.Sprintf("Auto-delete: on, after %d hour(s)", policy.DeleteAfterHours)
}

func renderRedeemed(result *service.RedeemResult) string {
	if len(result.Failures) == 0 {
		return fmt.Sprintf("Delivered %d item(s) in %d group(s).", result.Items, result.Groups)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Delivered with errors: %d group(s) of %d failed.\n", len(result.Failures), result.Groups)
	for _, f := range result.Failures {
		fmt.Fprintf(&b, "group %d (%d items) could not be sent\n", f.Group, f.Items)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummaries(summaries []domain.BatchSummary) string {
	if len(summaries) == 0 {
		return "You have no saved batches."
	}
	var b strings.Builder
	b.WriteString("Your batches, newest first:\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "<code>%s</code> - %d %s item(s), %s\n",
			s.Code, s.ItemCount, s.Kind, s.CommittedAt.Format("2006-01-02 15:04"))
		if s.Caption != "" {
			fmt.Fprintf(&b, "  %s\n", html.EscapeString(truncate(s.Caption, 60)))
		}
		fmt.Fprintf(&b, "  %s\n", renderPolicyLine(s.Policy))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func renderStats(stats domain.Stats, uptime time.Duration) string {
	return fmt.Sprintf(
		"Items stored: %d\nBatches: %d\nKnown recipients: %d\nUptime: %s",
		stats.TotalItems, stats.TotalBatches, stats.TotalRecipients, formatDuration(uptime))
}

func renderUptime(uptime time.Duration) string {
	return "Uptime: " + formatDuration(uptime)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d % time.Minute / time.Second
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func renderGlobalConfig(policy domain.Policy) string {
	return "Default policy for new batches:\n" + renderPolicyLine(policy)
}

func renderCodeConfig(code string, policy domain.Policy) string {
	return fmt.Sprintf("Policy for <code>%s</code>:\n%s", code, renderPolicyLine(policy))
}

func renderTTLPrompt() string {
	return fmt.Sprintf("Send the number of hours before deletion (%d-%d).",
		domain.MinDeleteAfterHours, domain.MaxDeleteAfterHours)
}

func renderBroadcastPending(total int) string {
	return fmt.Sprintf("This will reach %d recipients. Confirm?", total)
}

func renderBroadcastStarted(total int) string {
	return fmt.Sprintf("Broadcasting to %d recipient(s)…", total)
}

func renderBroadcastProgress(p domain.BroadcastProgress) string {
	return fmt.Sprintf("Broadcast %d%% (%d/%d) - ok %d, failed %d, %s",
		p.Percent(), p.Delivered, p.Total, p.Succeeded, p.Failed, formatDuration(p.Elapsed))
}

func renderBroadcastReport(r domain.BroadcastReport) string {
	return fmt.Sprintf("Broadcast finished: %d ok, %d failed of %d in %s.",
		r.Succeeded, r.Failed, r.Total, formatDuration(r.Elapsed))
}
