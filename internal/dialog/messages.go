package dialog

const (
	promptName     = "Введите название дисциплины"
	promptStart    = "Введите дату и время начала в формате ДД.ММ.ГГГГ ЧЧ:ММ, например 01.03.2025 10:00"
	promptDuration = "Введите длительность пары в минутах"
	promptType     = "Введите тип занятия, например лекция или семинар"
	promptLocation = "Введите кабинет или «-», если его нет"

	errEmpty    = "Сообщение не должно быть пустым."
	errNonText  = "Пожалуйста, отправьте текстовое сообщение."
	errStart    = "Не удалось разобрать дату. Используйте формат ДД.ММ.ГГГГ ЧЧ:ММ, например 01.03.2025 10:00."
	errDuration = "Длительность должна быть целым числом минут, например 90."

	msgAdded     = "Пара добавлена"
	msgDeleted   = "Пара удалена"
	msgCancelled = "Действие отменено"
	msgFailed    = "Не удалось обновить расписание. Попробуйте позже."

	placeholderName     = "Дисциплина"
	placeholderType     = "Тип"
	placeholderLocation = "Кабинет"
	placeholderDuration = int64(80)

	// noLocation is typed at the location step to record a lesson without a room.
	noLocation = "-"
)

var prompts = map[Slot]string{
	SlotName:     promptName,
	SlotStart:    promptStart,
	SlotDuration: promptDuration,
	SlotType:     promptType,
	SlotLocation: promptLocation,
}
