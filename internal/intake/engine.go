// Package intake implements the conversational repair-intake form: a fixed
// sequence of prompts walked per submitter, light validation, and a
// submission pipeline that appends the completed record to the tabular store.
package intake

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"intake-backend/internal/queue"
	"intake-backend/internal/sheets"
	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/shared/telemetry"
	"intake-backend/internal/telegram"
)

// Messenger is the outbound surface of the messaging transport.
type Messenger interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendMediaGroup(ctx context.Context, chatID int64, media []telegram.InputMedia) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Options configure the engine.
type Options struct {
	MediaIdleWindow time.Duration
	Policy          MediaPolicy
	AdminChatID     int64
}

// Engine routes each inbound update to the handler for the submitter's
// current step. Updates for one submitter are serialized by a per-chat lock;
// different submitters interleave freely.
type Engine struct {
	msgr     Messenger
	appender sheets.Appender
	pool     *queue.Pool
	opts     Options
	store    *Store
	now      func() time.Time
}

// NewEngine constructs an engine with an empty submission store.
func NewEngine(msgr Messenger, appender sheets.Appender, pool *queue.Pool, opts Options) *Engine {
	if opts.MediaIdleWindow <= 0 {
		opts.MediaIdleWindow = 4 * time.Second
	}
	return &Engine{
		msgr:     msgr,
		appender: appender,
		pool:     pool,
		opts:     opts,
		store:    NewStore(),
		now:      time.Now,
	}
}

// HandleUpdate dispatches one webhook update.
func (e *Engine) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if cq.Message == nil {
			e.answerCallback(ctx, cq.ID)
			return
		}
		chatID := cq.Message.Chat.ID
		lock := e.store.ChatLock(chatID)
		lock.Lock()
		defer lock.Unlock()
		e.handleCallback(ctx, chatID, cq)
	case upd.Message != nil:
		chatID := upd.Message.Chat.ID
		lock := e.store.ChatLock(chatID)
		lock.Lock()
		defer lock.Unlock()
		e.handleMessage(ctx, upd.Message)
	}
}

func (e *Engine) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case "/start":
		e.start(ctx, msg)
		return
	case "/cancel":
		e.cancel(ctx, chatID)
		return
	}

	sub := e.store.Get(chatID)
	if sub == nil {
		e.send(ctx, chatID, msgIdleHint)
		return
	}

	switch sub.Step {
	case StepCompanyName:
		e.captureText(ctx, sub, text, &sub.Company, StepAddress)
	case StepAddress:
		e.captureText(ctx, sub, text, &sub.Address, StepPhone)
	case StepPhone:
		phone, err := NormalizePhone(text)
		if err != nil {
			e.send(ctx, chatID, msgInvalidPhone)
			return
		}
		sub.Phone = phone
		sub.Step = StepEquipmentModel
		e.send(ctx, chatID, promptFor(sub.Step))
	case StepEquipmentModel:
		e.captureText(ctx, sub, text, &sub.EquipmentModel, StepIssueDescription)
	case StepIssueDescription:
		e.captureText(ctx, sub, text, &sub.Issue, StepMediaCollection)
	case StepMediaCollection:
		e.handleMediaInput(ctx, sub, msg, text)
	case StepDesiredDate:
		parsed, err := time.Parse("2006-01-02", text)
		if err != nil {
			e.send(ctx, chatID, msgInvalidDate)
			return
		}
		sub.DesiredDate = parsed.Format("2006-01-02")
		sub.Step = StepConfirmation
		e.sendConfirmation(ctx, sub)
	case StepConfirmation:
		e.send(ctx, chatID, msgUseButtons)
	}
}

// captureText stores a non-empty free-text answer and advances; empty input
// re-prompts the current step.
func (e *Engine) captureText(ctx context.Context, sub *Submission, text string, field *string, next Step) {
	if text == "" {
		e.send(ctx, sub.ChatID, promptFor(sub.Step))
		return
	}
	*field = text
	sub.Step = next
	e.send(ctx, sub.ChatID, promptFor(next))
}

func (e *Engine) handleMediaInput(ctx context.Context, sub *Submission, msg *telegram.Message, text string) {
	if fileID, kind, ok := telegram.Attachment(msg); ok {
		sub.Media = append(sub.Media, MediaRef{FileID: fileID, Kind: kind})
		e.scheduleMediaAdvance(sub)
		return
	}
	if text == "" {
		e.send(ctx, sub.ChatID, promptFor(StepMediaCollection))
		return
	}
	// Any text at the media step is a request to move on.
	e.leaveMediaStep(ctx, sub)
}

// leaveMediaStep advances past media collection, applying the required-media
// policy: the first text-only attempt on a flagged issue re-prompts for
// evidence, a second one overrides.
func (e *Engine) leaveMediaStep(ctx context.Context, sub *Submission) {
	e.cancelMediaTimer(sub)
	if len(sub.Media) == 0 && e.opts.Policy.RequiresMedia(sub.Issue) && !sub.mediaNudged {
		sub.mediaNudged = true
		e.send(ctx, sub.ChatID, promptMediaEvidence)
		return
	}
	sub.Step = StepDesiredDate
	e.send(ctx, sub.ChatID, promptFor(StepDesiredDate))
}

// scheduleMediaAdvance (re)starts the idle timer that auto-advances past the
// media step. Called with the chat lock held; bumping the generation before
// arming the new timer makes replacement atomic with respect to a concurrent
// fire of the old one.
func (e *Engine) scheduleMediaAdvance(sub *Submission) {
	sub.timerGen++
	gen := sub.timerGen
	if sub.timer != nil {
		sub.timer.Stop()
	}
	chatID := sub.ChatID
	sub.timer = time.AfterFunc(e.opts.MediaIdleWindow, func() {
		e.mediaIdleAdvance(chatID, gen)
	})
}

func (e *Engine) mediaIdleAdvance(chatID int64, gen uint64) {
	lock := e.store.ChatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	sub := e.store.Get(chatID)
	if sub == nil || sub.Step != StepMediaCollection || sub.timerGen != gen {
		// Stale timer: the submission moved on or another attachment arrived.
		return
	}
	sub.timer = nil
	sub.Step = StepDesiredDate
	e.send(context.Background(), chatID, promptFor(StepDesiredDate))
}

// cancelMediaTimer invalidates any pending idle timer. Called with the chat
// lock held.
func (e *Engine) cancelMediaTimer(sub *Submission) {
	sub.timerGen++
	if sub.timer != nil {
		sub.timer.Stop()
		sub.timer = nil
	}
}

func (e *Engine) sendConfirmation(ctx context.Context, sub *Submission) {
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: buttonConfirm, CallbackData: callbackConfirm},
			{Text: buttonRestart, CallbackData: callbackRestart},
		}},
	}
	msg, err := e.msgr.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      sub.ChatID,
		Text:        renderSummary(sub),
		ReplyMarkup: markup,
	})
	if err != nil {
		telemetry.Warn("intake.send_failed", map[string]any{"chat_id": sub.ChatID, "error": err.Error()})
		return
	}
	sub.confirmMsgID = msg.MessageID
}

func (e *Engine) handleCallback(ctx context.Context, chatID int64, cq *telegram.CallbackQuery) {
	e.answerCallback(ctx, cq.ID)

	sub := e.store.Get(chatID)
	if sub == nil || sub.Step != StepConfirmation {
		return
	}

	switch cq.Data {
	case callbackConfirm:
		e.deleteConfirmPrompt(ctx, sub)
		e.finalize(ctx, sub)
	case callbackRestart:
		e.deleteConfirmPrompt(ctx, sub)
		e.restart(ctx, sub)
	}
}

func (e *Engine) restart(ctx context.Context, prior *Submission) {
	e.cancelMediaTimer(prior)
	sub := &Submission{
		ID:        uuid.NewString(),
		ChatID:    prior.ChatID,
		Handle:    prior.Handle,
		Step:      StepCompanyName,
		StartedAt: e.now(),
	}
	e.store.Put(sub)
	metrics.IncSubmissionsStarted()
	e.send(ctx, sub.ChatID, promptFor(StepCompanyName))
}

func (e *Engine) start(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	if prior := e.store.Get(chatID); prior != nil {
		// A fresh /start always discards the prior submission, never merges.
		e.cancelMediaTimer(prior)
	}
	sub := &Submission{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Handle:    handleOf(msg.From, chatID),
		Step:      StepCompanyName,
		StartedAt: e.now(),
	}
	e.store.Put(sub)
	metrics.IncSubmissionsStarted()
	telemetry.Info("intake.started", map[string]any{"submission_id": sub.ID, "chat_id": chatID})
	e.send(ctx, chatID, promptFor(StepCompanyName))
}

func (e *Engine) cancel(ctx context.Context, chatID int64) {
	sub := e.store.Get(chatID)
	if sub == nil {
		e.send(ctx, chatID, msgNothingToCancel)
		return
	}
	e.cancelMediaTimer(sub)
	e.store.Delete(chatID)
	metrics.IncSubmissionsCancelled()
	telemetry.Info("intake.cancelled", map[string]any{"submission_id": sub.ID, "chat_id": chatID})
	e.send(ctx, chatID, msgCancelled)
}

func (e *Engine) deleteConfirmPrompt(ctx context.Context, sub *Submission) {
	if sub.confirmMsgID == 0 {
		return
	}
	if err := e.msgr.DeleteMessage(ctx, sub.ChatID, sub.confirmMsgID); err != nil {
		telemetry.Warn("intake.delete_failed", map[string]any{"chat_id": sub.ChatID, "error": err.Error()})
	}
	sub.confirmMsgID = 0
}

func (e *Engine) answerCallback(ctx context.Context, id string) {
	if err := e.msgr.AnswerCallbackQuery(ctx, id); err != nil {
		telemetry.Warn("intake.callback_answer_failed", map[string]any{"error": err.Error()})
	}
}

// send delivers a text message best-effort; transport failures are logged and
// otherwise swallowed.
func (e *Engine) send(ctx context.Context, chatID int64, text string) {
	if _, err := e.msgr.SendMessage(ctx, telegram.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		telemetry.Warn("intake.send_failed", map[string]any{"chat_id": chatID, "error": err.Error()})
	}
}

func promptFor(step Step) string {
	switch step {
	case StepCompanyName:
		return promptCompany
	case StepAddress:
		return promptAddress
	case StepPhone:
		return promptPhone
	case StepEquipmentModel:
		return promptModel
	case StepIssueDescription:
		return promptIssue
	case StepMediaCollection:
		return promptMedia
	case StepDesiredDate:
		return promptDate
	default:
		return msgIdleHint
	}
}

func handleOf(from *telegram.User, chatID int64) string {
	if from != nil {
		if from.Username != "" {
			return "@" + from.Username
		}
		return strconv.FormatInt(from.ID, 10)
	}
	return strconv.FormatInt(chatID, 10)
}
