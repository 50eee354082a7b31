package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

const (
	teacherHelp = `Доступные команды:
/class [class_id] [start] [end] - Посещаемость класса (по умолчанию привязанного к чату)
/student <class_id> <student_id> [start] [end] - Статистика ученика
/report <student_id> <month> <year> - Месячный отчёт по критериям
/help - Показать это сообщение`

	adminHelp = `Доступные команды:
/class [class_id] [start] [end] - Посещаемость класса (по умолчанию привязанного к чату)
/student <class_id> <student_id> [start] [end] - Статистика ученика
/report <student_id> <month> <year> - Месячный отчёт по критериям
/bind <class_id> <name> - Привязать этот чат к классу
/bindings - Показать все привязки чатов
/token <teacher> - Выдать API-токен преподавателю
/help - Показать это сообщение

Примеры:
/class 3 2024-12-01 2024-12-31
/student 3 17
/report 17 12 2024
/bind 3 "5Б суббота"
/token maria.petrova`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeTeacherCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":   b.handleStart,
		"help":    b.handleHelp,
		"class":   b.handleClass,
		"student": b.handleStudent,
		"report":  b.handleReport,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"bind":     b.handleBind,
		"bindings": b.handleBindings,
		"token":    b.handleToken,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeTeacherCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = teacherHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Используйте команды для взаимодействия с ботом. Отправьте /help для списка команд.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Привет! Я покажу посещаемость и отчёты по ученикам.\n\n"
	if b.admins[msg.From.ID] {
		text += "Ты администратор. Используй /help для списка команд."
	} else {
		text += "Используй /help для списка команд."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

// parseRange pulls optional [start] [end] date arguments off the tail.
func parseRange(args []string) (start, end string, err error) {
	if len(args) > 0 {
		if _, perr := time.Parse("2006-01-02", args[0]); perr != nil {
			return "", "", fmt.Errorf("некорректная дата %q (используйте YYYY-MM-DD)", args[0])
		}
		start = args[0]
	}
	if len(args) > 1 {
		if _, perr := time.Parse("2006-01-02", args[1]); perr != nil {
			return "", "", fmt.Errorf("некорректная дата %q (используйте YYYY-MM-DD)", args[1])
		}
		end = args[1]
	}
	return start, end, nil
}

func (b *Bot) handleClass(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())

	var classID int64
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный класс: %v", err)
		}
		classID = id
		args = args[1:]
	} else {
		// No explicit class: fall back to the class bound to this chat
		mapping, err := b.tokens.FetchClassMappingByChatID(context.Background(), msg.Chat.ID)
		if err != nil {
			return b.sendMessage(msg.Chat.ID, "Чат не привязан к классу. Использование: /class <class_id> [start] [end]")
		}
		classID = mapping.ClassID
	}

	start, end, err := parseRange(args)
	if err != nil {
		return err
	}

	stats, err := b.ledger.ClassAttendance(classID, start, end)
	if err != nil {
		return fmt.Errorf("ошибка расчёта посещаемости: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Класс %d\n"+
			"📅 Занятий: %d\n"+
			"✅ Отметок «присутствовал»: %d из %d\n"+
			"📊 Посещаемость: %.2f%%",
		stats.ClassID,
		stats.LessonDatesCount,
		stats.PresentRecords,
		stats.TotalRecords,
		stats.Percentage,
	))
}

func (b *Bot) handleStudent(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendMessage(msg.Chat.ID, "Использование: /student <class_id> <student_id> [start] [end]")
	}

	classID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный класс: %v", err)
	}
	studentID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный ученик: %v", err)
	}

	start, end, err := parseRange(args[2:])
	if err != nil {
		return err
	}

	stats, err := b.ledger.StudentAttendance(studentID, classID, start, end)
	if err != nil {
		return fmt.Errorf("ошибка расчёта статистики: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Ученик %d (класс %d)\n"+
			"✅ Был на %d из %d занятий (%.2f%%)\n"+
			"🔥 Лучшая серия: %d подряд\n"+
			"➡️ Текущая серия: %d",
		stats.StudentID,
		stats.ClassID,
		stats.Attended,
		stats.TotalLessons,
		stats.Percentage,
		stats.LongestStreak,
		stats.CurrentStreak,
	))
}

func (b *Bot) handleReport(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 3 {
		return b.sendMessage(msg.Chat.ID, "Использование: /report <student_id> <month> <year>")
	}

	studentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный ученик: %v", err)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("некорректный месяц: %v", err)
	}
	year, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("некорректный год: %v", err)
	}

	report, err := b.ledger.MonthlyReport(studentID, month, year)
	if err != nil {
		return fmt.Errorf("ошибка построения отчёта: %v", err)
	}
	if report == nil {
		return b.sendMessage(msg.Chat.ID, "За этот месяц оценок нет")
	}

	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Отчёт за %02d.%d по ученику %d:\n\n", month, year, studentID))
	for _, name := range names {
		text.WriteString(fmt.Sprintf("👉🏻 %s: %.2f%%\n", name, report[name]))
	}

	return b.sendMessage(msg.Chat.ID, text.String())
}

func (b *Bot) handleBind(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Использование: /bind <class_id> <name>")
	}

	classID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный класс: %v", err)
	}

	mapping := &models.ChatClassMapping{
		ClassID:         classID,
		Name:            strings.Join(args[1:], " "),
		AssociationTime: time.Now().UTC(),
		RegisteredBy:    msg.From.ID,
	}

	if err := b.tokens.AssociateChatWithClass(context.Background(), msg.Chat.ID, mapping); err != nil {
		return fmt.Errorf("ошибка привязки чата: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Чат привязан к классу %d", classID))
}

func (b *Bot) handleBindings(msg *tgbotapi.Message) error {
	mappings, err := b.tokens.FetchAllChatMappings(context.Background())
	if err != nil {
		return fmt.Errorf("ошибка чтения привязок: %v", err)
	}
	if len(mappings) == 0 {
		return b.sendMessage(msg.Chat.ID, "Привязок пока нет")
	}

	chatIDs := make([]string, 0, len(mappings))
	for chatID := range mappings {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Strings(chatIDs)

	var text strings.Builder
	text.WriteString("Привязки чатов:\n\n")
	for _, chatID := range chatIDs {
		m := mappings[chatID]
		text.WriteString(fmt.Sprintf("💬 %s → класс %d (%s)\n", chatID, m.ClassID, m.Name))
	}

	return b.sendMessage(msg.Chat.ID, text.String())
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Использование: /token <teacher>")
	}
	teacher := args[0]

	info, isNew, err := b.tokens.FetchOrCreateTeacherToken(context.Background(), teacher)
	if err != nil {
		return fmt.Errorf("ошибка выдачи токена: %v", err)
	}

	status := "существующий"
	if isNew {
		status = "новый"
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"🔑 Токен для %s (%s):\n`%s`\n\nЗапросов: %d\nПоследний запрос: %s",
		teacher,
		status,
		info.Token,
		info.RequestCount,
		info.LastRequestTime.Format("2006-01-02 15:04:05"),
	))
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
