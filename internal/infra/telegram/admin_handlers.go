package telegram

import (
	"context"
	"strconv"
	"strings"

	"neurolux_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers the operator relay commands. They are
// identity-gated twice: here for a fast rejection and again inside the
// service. Operator replies may echo technical errors by design.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	adminChatID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/reply", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reply",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminChatID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		args := c.Args()
		// Expected format: /reply <TelegramID> <text...>
		if len(args) < 2 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Неверный формат команды. Используйте: /reply <TelegramID> <текст>")
		}

		targetID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Ошибка: Telegram ID должен быть числом.")
		}
		text := strings.Join(args[1:], " ")

		if err := adminService.RelayText(ctx, c.Sender().ID, targetID, text); err != nil {
			handlerLogger.WithError(err).Error("Failed to relay text")
			return c.Send("Не удалось отправить сообщение: " + err.Error())
		}

		handlerLogger.WithField("target_id", targetID).Info("Text relayed successfully")
		return c.Send("Сообщение отправлено.")
	})

	b.Handle("/report_of", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/report_of",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminChatID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Неверный формат команды. Используйте: /report_of <TelegramID>")
		}
		targetID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Ошибка: Telegram ID должен быть числом.")
		}

		report, err := adminService.ReportOf(ctx, c.Sender().ID, targetID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build report")
			return c.Send("Не удалось получить отчёт: " + err.Error())
		}

		handlerLogger.WithField("target_id", targetID).Info("Report delivered")
		return c.Send(report, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
