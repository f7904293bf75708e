package telegram

import (
	"context"
	"strconv"
	"strings"

	"neurolux_bot/internal/app"
	"neurolux_bot/internal/domain/dialog"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterUserHandlers wires the public bot surface: /start, /help, the
// inline-button dispatcher and the free-form message dispatcher that feeds
// the dialogue engine.
func RegisterUserHandlers(
	ctx context.Context,
	b *telebot.Bot,
	dialogService *app.DialogService,
	adminService *app.AdminService,
	adminChatID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":   "/start",
			"sender_id": c.Sender().ID,
		})
		logCtx.Info("Command received")
		return dialogService.ShowMainMenu(ctx, c.Sender().ID, c.Sender().Username)
	})

	b.Handle("/help", func(c telebot.Context) error {
		if c.Sender().ID == adminChatID {
			return c.Send(
				"Команды оператора:\n\n"+
					"`/reply <TelegramID> <текст>`\n - Ответить пользователю от имени бота.\n\n"+
					"`/report_of <TelegramID>`\n - Показать последний тест пользователя и отчёт.\n\n"+
					"Видео с подписью `<TelegramID>` — переслать его этому пользователю.",
				&telebot.SendOptions{ParseMode: telebot.ModeMarkdown},
			)
		}
		return c.Send("Я проведу тебя по шагам через меню. Нажми /start, чтобы открыть его.")
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		userID := c.Sender().ID
		// telebot prefixes unique-style callbacks with \f; our buttons carry
		// raw data, but trim defensively for both layouts.
		data := strings.TrimPrefix(c.Callback().Data, "\f")

		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":   "callback",
			"sender_id": userID,
			"data":      data,
		})

		var err error
		switch {
		case data == app.CallbackMenu:
			err = dialogService.ShowMainMenu(ctx, userID, c.Sender().Username)
		case data == app.CallbackFreeStart:
			err = dialogService.ShowFreeIntro(userID)
		case data == app.CallbackFreeBegin:
			err = dialogService.BeginFreeTest(ctx, userID)
		case data == app.CallbackFreeRules:
			err = dialogService.ShowRules(userID)
		case data == app.CallbackFreePosted:
			err = dialogService.PostedToday(ctx, userID)
		case data == app.CallbackPremiumPage:
			err = dialogService.ShowPremiumPage(userID)
		case data == app.CallbackPremiumBuy:
			err = dialogService.RequestPremium(ctx, userID, c.Sender().Username)
		case data == app.CallbackLuxPage:
			err = dialogService.ShowLuxPage(userID)
		case data == app.CallbackLuxRequest:
			err = dialogService.BeginLux(userID)
		case strings.HasPrefix(data, app.CallbackNichePrefix):
			niche := strings.TrimPrefix(data, app.CallbackNichePrefix)
			if !app.NicheOption(niche) {
				logCtx.Warn("Callback with forged niche payload")
				return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
			}
			err = dialogService.ChooseNiche(ctx, userID, niche)
		case strings.HasPrefix(data, app.CallbackGoalPrefix):
			goal := strings.TrimPrefix(data, app.CallbackGoalPrefix)
			if !app.GoalOption(goal) {
				logCtx.Warn("Callback with forged goal payload")
				return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
			}
			err = dialogService.ChooseGoal(ctx, userID, goal)
		default:
			logCtx.Warn("Unhandled callback data")
			return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
		}

		if err != nil {
			logCtx.WithError(err).Error("Callback handling failed")
			return c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."})
		}
		return c.Respond()
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		return dialogService.HandleIncoming(ctx, c.Sender().ID, c.Sender().Username, dialog.Incoming{
			Text: strings.TrimSpace(c.Text()),
		})
	})

	b.Handle(telebot.OnVideo, func(c telebot.Context) error {
		// Operator path: a video captioned with a numeric user ID is relayed
		// to that user verbatim.
		if c.Sender().ID == adminChatID {
			if targetID, convErr := strconv.ParseInt(strings.TrimSpace(c.Message().Caption), 10, 64); convErr == nil {
				if err := adminService.RelayVideo(ctx, c.Sender().ID, targetID, c.Message().Video.FileID, ""); err != nil {
					return c.Send("Не удалось переслать видео: " + err.Error())
				}
				return c.Send("Видео переслано.")
			}
		}
		return dialogService.HandleIncoming(ctx, c.Sender().ID, c.Sender().Username, dialog.Incoming{
			VideoFileID: c.Message().Video.FileID,
		})
	})

	// Payloads no funnel state accepts. The engine answers with the retry
	// prompt of the current state instead of dropping them.
	otherMedia := func(c telebot.Context) error {
		return dialogService.HandleIncoming(ctx, c.Sender().ID, c.Sender().Username, dialog.Incoming{
			HasOtherMedia: true,
		})
	}
	b.Handle(telebot.OnVoice, otherMedia)
	b.Handle(telebot.OnPhoto, otherMedia)
	b.Handle(telebot.OnSticker, otherMedia)
	b.Handle(telebot.OnDocument, otherMedia)
	b.Handle(telebot.OnVideoNote, otherMedia)
	b.Handle(telebot.OnAudio, otherMedia)
}
