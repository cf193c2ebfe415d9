package telegram

import (
	"fmt"
	"strings"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/pkg/utils"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatForecastMessage summarises a finished pipeline run as a Markdown message.
func FormatForecastMessage(run *entity.PipelineRun) string {
	var sb strings.Builder
	symbol := markdownEscaper.Replace(run.Symbol.String())

	if run.State == entity.StateFailed {
		sb.WriteString(fmt.Sprintf("⚠️ *Forecast %s gagal*\n", symbol))
		sb.WriteString(fmt.Sprintf("🧩 *Tahap:* %s\n", run.FailedIn))
		sb.WriteString(fmt.Sprintf("❗ *Jenis:* %s\n", run.ErrorKind))
		if run.Err != nil {
			sb.WriteString(fmt.Sprintf("💬 %s\n", markdownEscaper.Replace(utils.Truncate(run.Err.Error(), 300))))
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("🔮 *Forecast %s* (%d tahun)\n\n", symbol, run.Horizon.Years()))

	var lastClose float64
	if n := run.Series.Len(); n > 0 {
		last := run.Series.Bars[n-1]
		lastClose = last.Close
		sb.WriteString(fmt.Sprintf("💰 *Close terakhir:* %.2f (%s)\n", last.Close, utils.FormatDate(last.Date)))
	}

	future := futurePoints(run.Forecast)
	if len(future) == 0 {
		sb.WriteString("Tidak ada titik forecast.\n")
		return sb.String()
	}

	// one line per completed horizon year
	for year := 1; year <= run.Horizon.Years(); year++ {
		idx := year*365 - 1
		if idx >= len(future) {
			idx = len(future) - 1
		}
		p := future[idx]
		sb.WriteString(fmt.Sprintf("📅 *%s:* %.2f [%.2f - %.2f]%s\n",
			utils.FormatDate(p.Date), p.Estimate, p.Lower, p.Upper, changeSuffix(lastClose, p.Estimate)))
	}

	end := future[len(future)-1]
	icon := "🟡"
	switch {
	case lastClose > 0 && end.Estimate > lastClose:
		icon = "🟢"
	case lastClose > 0 && end.Estimate < lastClose:
		icon = "🔴"
	}
	sb.WriteString(fmt.Sprintf("\n%s *Arah:* %s\n", icon, direction(lastClose, end.Estimate)))
	return sb.String()
}

// FormatHeadlinesForTelegram formats headlines into Markdown messages, each within
// the Telegram length limit.
func FormatHeadlinesForTelegram(headlines []entity.Headline) []string {
	if len(headlines) == 0 {
		return []string{"Tidak ada berita terbaru."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString("📰 *Berita Pasar Terbaru* 📰\n\n")
		} else {
			current.WriteString(fmt.Sprintf("---*Lanjutan Berita Part %d*---\n\n", part))
		}
	}
	startNewPart()

	for _, h := range headlines {
		var entry strings.Builder
		entry.WriteString(fmt.Sprintf("🗞 *%s*\n", markdownEscaper.Replace(h.Title)))
		if h.PublishedAt != nil {
			entry.WriteString(fmt.Sprintf("🕒 %s\n", h.PublishedAt.UTC().Format("2006-01-02 15:04 MST")))
		}
		if h.Description != "" {
			entry.WriteString(markdownEscaper.Replace(utils.Truncate(h.Description, 280)))
			entry.WriteString("\n")
		}
		if h.Link != "" {
			entry.WriteString(h.Link)
			entry.WriteString("\n")
		}
		entry.WriteString("\n")

		if current.Len()+entry.Len() > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry.String())
	}

	messages = append(messages, current.String())
	return messages
}

func futurePoints(points []entity.ForecastPoint) []entity.ForecastPoint {
	for i, p := range points {
		if p.Future {
			return points[i:]
		}
	}
	return nil
}

func changeSuffix(base, value float64) string {
	if base <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%+.1f%%)", (value-base)/base*100)
}

func direction(base, value float64) string {
	switch {
	case base <= 0:
		return "tidak diketahui"
	case value > base:
		return "naik"
	case value < base:
		return "turun"
	default:
		return "datar"
	}
}
