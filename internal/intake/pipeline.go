package intake

import (
	"context"
	"strings"
	"time"

	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/shared/telemetry"
	"intake-backend/internal/telegram"
)

// mediaGroupLimit matches the transport's cap on items per grouped media
// message.
const mediaGroupLimit = 10

// rowTimeFormat is the timestamp layout of the first sheet column.
const rowTimeFormat = "2006-01-02 15:04:05"

// finalize runs the submission pipeline exactly once for a confirmed
// submission: normalize the record into a row, append it through the worker
// pool, acknowledge the submitter, and notify the operator on success. The
// submission is cleared regardless of persistence outcome; the submitter
// never sees a hard failure. Called with the chat lock held.
func (e *Engine) finalize(ctx context.Context, sub *Submission) {
	e.cancelMediaTimer(sub)

	status, err := e.msgr.SendMessage(ctx, telegram.SendMessageParams{ChatID: sub.ChatID, Text: msgSubmitting})
	if err != nil {
		telemetry.Warn("intake.status_send_failed", map[string]any{"chat_id": sub.ChatID, "error": err.Error()})
		status = nil
	}

	row := e.buildRow(ctx, sub)
	recorded := e.appendRow(ctx, sub, row)

	ack := msgAckSuccess
	if !recorded {
		ack = msgAckDegraded
	}
	e.acknowledge(ctx, sub.ChatID, status, ack)

	if recorded {
		e.notifyOperator(ctx, sub)
	}

	e.store.Delete(sub.ChatID)
	metrics.IncSubmissionsCompleted()
	telemetry.Info("intake.submitted", map[string]any{
		"submission_id": sub.ID,
		"chat_id":       sub.ChatID,
		"recorded":      recorded,
		"media_count":   len(sub.Media),
	})
}

// buildRow flattens the submission into the fixed column order: timestamp,
// submitter handle, organization, address, phone, equipment model, issue,
// media references, desired date. The timestamp is the server's submission
// time, never user-supplied.
func (e *Engine) buildRow(ctx context.Context, sub *Submission) []string {
	refs := make([]string, 0, len(sub.Media))
	for _, m := range sub.Media {
		url, err := e.msgr.FileURL(ctx, m.FileID)
		if err != nil {
			telemetry.Warn("intake.file_resolve_failed", map[string]any{
				"submission_id": sub.ID,
				"file_id":       m.FileID,
				"error":         err.Error(),
			})
			url = m.FileID
		}
		refs = append(refs, url)
	}
	mediaCell := "none"
	if len(refs) > 0 {
		mediaCell = strings.Join(refs, "\n")
	}

	return []string{
		e.now().UTC().Format(rowTimeFormat),
		sub.Handle,
		sub.Company,
		sub.Address,
		sub.Phone,
		sub.EquipmentModel,
		sub.Issue,
		mediaCell,
		sub.DesiredDate,
	}
}

// appendRow performs the single append attempt through the bounded pool and
// reports whether the row was recorded. Backpressure and append failures both
// take the degraded path; neither is retried.
func (e *Engine) appendRow(ctx context.Context, sub *Submission, row []string) bool {
	result, err := e.pool.Submit(ctx, func(jobCtx context.Context) error {
		start := time.Now()
		appendErr := e.appender.AppendRow(jobCtx, row)
		metrics.ObserveAppendDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
		return appendErr
	})
	if err != nil {
		metrics.IncAppendRejected()
		telemetry.Error("intake.append_rejected", map[string]any{
			"submission_id": sub.ID,
			"error":         err.Error(),
		})
		return false
	}
	if appendErr := <-result; appendErr != nil {
		metrics.IncAppendFailed()
		telemetry.Error("intake.append_failed", map[string]any{
			"submission_id": sub.ID,
			"error":         appendErr.Error(),
		})
		return false
	}
	return true
}

// acknowledge edits the status message into the final acknowledgment, falling
// back to a fresh message when the edit is impossible.
func (e *Engine) acknowledge(ctx context.Context, chatID int64, status *telegram.Message, text string) {
	if status != nil {
		err := e.msgr.EditMessageText(ctx, chatID, status.MessageID, text)
		if err == nil {
			return
		}
		telemetry.Warn("intake.ack_edit_failed", map[string]any{"chat_id": chatID, "error": err.Error()})
	}
	e.send(ctx, chatID, text)
}

// notifyOperator pushes a best-effort summary to the operator chat, batching
// attachments into media groups with the summary as the caption of the first
// item. Failures are logged and swallowed; they never affect the submitter.
func (e *Engine) notifyOperator(ctx context.Context, sub *Submission) {
	if e.opts.AdminChatID == 0 {
		return
	}
	summary := renderOperatorSummary(sub)

	if len(sub.Media) == 0 {
		if _, err := e.msgr.SendMessage(ctx, telegram.SendMessageParams{ChatID: e.opts.AdminChatID, Text: summary}); err != nil {
			metrics.IncNotifyFailed()
			telemetry.Warn("intake.notify_failed", map[string]any{"submission_id": sub.ID, "error": err.Error()})
		}
		return
	}

	for start := 0; start < len(sub.Media); start += mediaGroupLimit {
		end := min(start+mediaGroupLimit, len(sub.Media))
		group := make([]telegram.InputMedia, 0, end-start)
		for i, m := range sub.Media[start:end] {
			item := telegram.InputMedia{Type: m.Kind, Media: m.FileID}
			if start == 0 && i == 0 {
				item.Caption = summary
			}
			group = append(group, item)
		}
		if err := e.msgr.SendMediaGroup(ctx, e.opts.AdminChatID, group); err != nil {
			metrics.IncNotifyFailed()
			telemetry.Warn("intake.notify_failed", map[string]any{"submission_id": sub.ID, "error": err.Error()})
			return
		}
	}
}
