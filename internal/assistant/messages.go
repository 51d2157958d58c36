package assistant

// HelpText is the greeting sent for /help and /start.
const HelpText = `Привет! Я бот, который показывает расписание.

Доступные команды:
/day - расписание на сегодня
/tomorrow - расписание на завтра
/week - расписание на эту неделю
/nweek - расписание на следующую неделю
/add - добавить занятие в расписание
/delete - удалить добавленное занятие
/cancel - отменить добавление или удаление`

const (
	msgFailure = "Не удалось прочитать расписание. Попробуйте позже."
	msgUnknown = "Не понимаю. Список команд: /help"
)
