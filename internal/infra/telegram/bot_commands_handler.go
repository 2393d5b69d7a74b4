// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Roster answers who a sender is.
type Roster interface {
	IsEmployee(userID int64) bool
	FullName(userID int64) (string, bool)
}

// AdminChecker reports whether a sender may use admin commands.
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// menuCommands are shown in the Telegram command menu.
var menuCommands = []telebot.Command{
	{Text: "start_shift", Description: "Открытие смены"},
	{Text: "daily_checking", Description: "Дневная сверка"},
	{Text: "finish_shift", Description: "Закрытие смены"},
	{Text: "encashment", Description: "Инкассация"},
	{Text: "cancel", Description: "Отменить текущий отчёт"},
	{Text: "help", Description: "Помощь"},
}

func RegisterBotCommands(
	b *telebot.Bot,
	roster Roster,
	admins AdminChecker,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	if err := b.SetCommands(menuCommands); err != nil {
		startHelpLogger.WithError(err).Warn("Failed to set bot command menu")
	}

	b.Handle("/start", privateOnly(func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if roster.IsEmployee(senderID) {
			name, _ := roster.FullName(senderID)
			logCtx.Info("User identified as employee")
			return c.Send(fmt.Sprintf("Здравствуйте, %s! Выберите отчёт в меню ниже.", name), MainMenu())
		}
		if admins.IsAdmin(senderID) {
			logCtx.Info("User identified as bootstrap admin")
			return c.Send(fmt.Sprintf("Привет, Администратор %s! Используйте /help для списка команд.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send(fmt.Sprintf("Здравствуйте! Вас нет в списке сотрудников. Передайте руководству Ваш Telegram ID: %d", senderID))
	}))

	b.Handle("/help", privateOnly(func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		if roster.IsEmployee(senderID) {
			helpText.WriteString("Отчёты:\n\n")
			helpText.WriteString("/start_shift - открытие смены\n")
			helpText.WriteString("/daily_checking - дневная сверка\n")
			helpText.WriteString("/finish_shift - закрытие смены\n")
			helpText.WriteString("/encashment - инкассация\n")
			helpText.WriteString("/cancel - отменить текущий отчёт\n")
		}
		if admins.IsAdmin(senderID) {
			if helpText.Len() > 0 {
				helpText.WriteString("\n")
			}
			helpText.WriteString("Команды администратора:\n\n")
			helpText.WriteString("/add_employee <TelegramID> <ФИО> [@username] - добавить сотрудника\n")
			helpText.WriteString("/add_admin <TelegramID> <ФИО> [@username] - добавить администратора\n")
			helpText.WriteString("/remove_person <TelegramID> - удалить пользователя\n")
			helpText.WriteString("/list_people - список пользователей\n")
			helpText.WriteString("/add_place <ChatID> <Название> - добавить точку и чат для отчётов\n")
			helpText.WriteString("/remove_place <Название> - удалить точку\n")
			helpText.WriteString("/list_places - список точек\n")
			helpText.WriteString("/reload - перечитать справочник из базы\n")
		}
		if helpText.Len() == 0 {
			logCtx.Info("User is unknown, sending restricted help.")
			return c.Send("Доступных команд для вас нет. Обратитесь к руководству, чтобы Вас добавили в список сотрудников.")
		}
		return c.Send(helpText.String())
	}))
}
