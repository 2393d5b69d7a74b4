package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/app"
	"shift_report_bot/internal/domain/reference"
)

const msgNotAuthorized = "Ошибка: У вас нет прав для выполнения этой команды."

// RegisterAdminHandlers registers the commands that maintain people and rental points.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	adminLogger := baseLogger.WithField("handler_group", "admin")

	// guard logs the command and turns away anyone who is not an admin.
	guard := func(command string, next func(c telebot.Context, log *logrus.Entry) error) telebot.HandlerFunc {
		return privateOnly(func(c telebot.Context) error {
			handlerLogger := adminLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")

			if !adminService.IsAdmin(c.Sender().ID) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgNotAuthorized)
			}
			return next(c, handlerLogger)
		})
	}

	addPerson := func(command string, role reference.Role) {
		b.Handle(command, guard(command, func(c telebot.Context, handlerLogger *logrus.Entry) error {
			args := c.Args()
			// Expected format: /add_employee <TelegramID> <ФИО> [@username]
			if len(args) < 2 {
				return c.Send(fmt.Sprintf("Неверный формат команды. Используйте: %s <TelegramID> <ФИО> [@username]", command))
			}
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return c.Send("Ошибка: Telegram ID должен быть числом.")
			}

			nameParts := args[1:]
			var username string
			if last := nameParts[len(nameParts)-1]; strings.HasPrefix(last, "@") && len(nameParts) > 1 {
				username = last
				nameParts = nameParts[:len(nameParts)-1]
			}
			fullName := strings.Join(nameParts, " ")

			handlerLogger = handlerLogger.WithFields(logrus.Fields{
				"user_id": userID,
				"role":    role,
			})
			p, err := adminService.AddPerson(ctx, c.Sender().ID, userID, fullName, username, role)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				return c.Send(msgNotAuthorized)
			case errors.Is(err, app.ErrInvalidFullName):
				return c.Send("Ошибка: ФИО не может быть пустым.")
			case err != nil && p == nil:
				handlerLogger.WithError(err).Error("Failed to add person")
				return c.Send(fmt.Sprintf("Произошла ошибка при добавлении: %s", err.Error()))
			case err != nil:
				handlerLogger.WithError(err).Warn("Person saved, cache reload failed")
				return c.Send(fmt.Sprintf("%s (ID: %d) сохранён, но справочник не обновился. Выполните /reload.", p.FullName, p.UserID))
			}

			handlerLogger.Info("Person saved successfully")
			return c.Send(fmt.Sprintf("%s (ID: %d) успешно добавлен, роль: %s.", p.FullName, p.UserID, roleTitle(p.Role)))
		}))
	}
	addPerson("/add_employee", reference.RoleEmployee)
	addPerson("/add_admin", reference.RoleAdmin)

	b.Handle("/remove_person", guard("/remove_person", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Неверный формат команды. Используйте: /remove_person <TelegramID>")
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Ошибка: Telegram ID должен быть числом.")
		}
		handlerLogger = handlerLogger.WithField("user_id", userID)

		err = adminService.RemovePerson(ctx, c.Sender().ID, userID)
		switch {
		case errors.Is(err, reference.ErrPersonNotFound):
			handlerLogger.Warn("Person to remove not found")
			return c.Send(fmt.Sprintf("Пользователь с Telegram ID %d не найден.", userID))
		case err != nil:
			handlerLogger.WithError(err).Error("Failed to remove person")
			return c.Send(fmt.Sprintf("Произошла ошибка при удалении: %s", err.Error()))
		}
		handlerLogger.Info("Person removed successfully")
		return c.Send(fmt.Sprintf("Пользователь с Telegram ID %d удалён.", userID))
	}))

	b.Handle("/list_people", guard("/list_people", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		persons, err := adminService.ListPersons(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to get list of persons")
			return c.Send(fmt.Sprintf("Произошла ошибка при получении списка: %s", err.Error()))
		}
		if len(persons) == 0 {
			return c.Send("Список сотрудников пуст.")
		}

		var response strings.Builder
		response.WriteString("--- Сотрудники ---\n")
		for _, p := range persons {
			response.WriteString(fmt.Sprintf("%d, %s, %s", p.UserID, p.FullName, roleTitle(p.Role)))
			if p.Username.Valid && p.Username.String != "" {
				response.WriteString(", @" + p.Username.String)
			}
			response.WriteString("\n")
		}
		return c.Send(response.String())
	}))

	b.Handle("/add_place", guard("/add_place", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		args := c.Args()
		// Expected format: /add_place <ChatID> <Название>
		if len(args) < 2 {
			return c.Send("Неверный формат команды. Используйте: /add_place <ChatID> <Название точки>")
		}
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Ошибка: ChatID должен быть числом.")
		}
		title := strings.Join(args[1:], " ")
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"place": title, "chat_id": chatID})

		l, err := adminService.AddLocation(ctx, c.Sender().ID, title, chatID)
		switch {
		case errors.Is(err, app.ErrInvalidLocationTitle):
			return c.Send("Ошибка: название точки пустое или слишком длинное.")
		case err != nil && l == nil:
			handlerLogger.WithError(err).Error("Failed to add place")
			return c.Send(fmt.Sprintf("Произошла ошибка при добавлении точки: %s", err.Error()))
		case err != nil:
			handlerLogger.WithError(err).Warn("Place saved, cache reload failed")
			return c.Send(fmt.Sprintf("Точка «%s» сохранена, но справочник не обновился. Выполните /reload.", l.Title))
		}
		handlerLogger.Info("Place saved successfully")
		return c.Send(fmt.Sprintf("Точка «%s» добавлена, отчёты уходят в чат %d.", l.Title, l.ChatID))
	}))

	b.Handle("/remove_place", guard("/remove_place", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		title := strings.Join(c.Args(), " ")
		if title == "" {
			return c.Send("Неверный формат команды. Используйте: /remove_place <Название точки>")
		}
		handlerLogger = handlerLogger.WithField("place", title)

		err := adminService.RemoveLocation(ctx, c.Sender().ID, title)
		switch {
		case errors.Is(err, reference.ErrLocationNotFound):
			return c.Send(fmt.Sprintf("Точка «%s» не найдена.", title))
		case err != nil:
			handlerLogger.WithError(err).Error("Failed to remove place")
			return c.Send(fmt.Sprintf("Произошла ошибка при удалении точки: %s", err.Error()))
		}
		handlerLogger.Info("Place removed successfully")
		return c.Send(fmt.Sprintf("Точка «%s» удалена.", title))
	}))

	b.Handle("/list_places", guard("/list_places", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		locations, err := adminService.ListLocations(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to get list of places")
			return c.Send(fmt.Sprintf("Произошла ошибка при получении списка точек: %s", err.Error()))
		}
		if len(locations) == 0 {
			return c.Send("Точки не настроены.")
		}
		var response strings.Builder
		response.WriteString("--- Точки ---\n")
		for _, l := range locations {
			response.WriteString(fmt.Sprintf("%s → %d\n", l.Title, l.ChatID))
		}
		return c.Send(response.String())
	}))

	b.Handle("/reload", guard("/reload", func(c telebot.Context, handlerLogger *logrus.Entry) error {
		if err := adminService.Reload(ctx, c.Sender().ID); err != nil {
			handlerLogger.WithError(err).Error("Failed to reload reference data")
			return c.Send(fmt.Sprintf("Не удалось обновить справочник: %s", err.Error()))
		}
		return c.Send("Справочник обновлён.")
	}))
}

func roleTitle(r reference.Role) string {
	if r == reference.RoleAdmin {
		return "администратор"
	}
	return "сотрудник"
}
