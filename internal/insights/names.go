package insights

import "time"

// UnknownName is returned for values outside the lookup tables.
const UnknownName = "Неизвестно"

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// Indexed by time.Weekday, Sunday first.
var dayNames = [...]string{
	"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота",
}

// MonthName returns the month's name, or UnknownName outside 1..12.
func MonthName(month int) string {
	if month < 1 || month > len(monthNames) {
		return UnknownName
	}
	return monthNames[month-1]
}

func DayName(wd time.Weekday) string {
	if wd < time.Sunday || int(wd) >= len(dayNames) {
		return UnknownName
	}
	return dayNames[wd]
}
