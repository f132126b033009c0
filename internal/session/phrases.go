package session

import (
	"fmt"
	"sort"
)

// Phrases are the spoken responses of the assistant
type Phrases struct {
	Speaker       string
	Loading       string // country, year
	Listening     string
	NamesSaved    string
	DetailsSaved  string
	SaveFailed    string
	Nearest       string // local name, date
	NoUpcoming    string
	Count         string // number of holidays
	Farewell      string
	NotRecognized string
	FetchFailed   string
	ModelMissing  string
	Interrupted   string
}

// Locale bundles the phrases and default keywords of one language
type Locale struct {
	Phrases  Phrases
	Keywords Keywords
}

var locales = map[string]Locale{
	"ru": {
		Phrases: Phrases{
			Speaker:       "Ассистент",
			Loading:       "Загружаю праздники для страны %s, %d год.",
			Listening:     "Слушаю команду.",
			NamesSaved:    "Список праздников сохранён в файл.",
			DetailsSaved:  "Подробная информация о праздниках сохранена.",
			SaveFailed:    "Не удалось сохранить файл.",
			Nearest:       "Ближайший праздник %s %s",
			NoUpcoming:    "Нет предстоящих праздников.",
			Count:         "Всего праздников: %d",
			Farewell:      "До свидания!",
			NotRecognized: "Команда не распознана. Повтори, пожалуйста.",
			FetchFailed:   "Ошибка при получении данных.",
			ModelMissing:  "Модель Vosk не найдена. Скачай её с официального сайта Vosk.",
			Interrupted:   "Ассистент завершает работу.",
		},
		Keywords: Keywords{
			ListAll:     {"перечислить"},
			SaveNames:   {"сохранить"},
			SaveDetails: {"подробно", "даты"},
			Nearest:     {"ближайший"},
			Count:       {"количество"},
			Exit:        {"выход", "стоп"},
		},
	},
	"en": {
		Phrases: Phrases{
			Speaker:       "Assistant",
			Loading:       "Loading public holidays for %s, year %d.",
			Listening:     "Listening for a command.",
			NamesSaved:    "Holiday list saved to file.",
			DetailsSaved:  "Holiday details saved.",
			SaveFailed:    "Could not save the file.",
			Nearest:       "The nearest holiday is %s on %s",
			NoUpcoming:    "No upcoming holidays.",
			Count:         "Total holidays: %d",
			Farewell:      "Goodbye!",
			NotRecognized: "Command not recognized, please repeat.",
			FetchFailed:   "Failed to retrieve holiday data.",
			ModelMissing:  "Vosk model not found. Download it from the Vosk website.",
			Interrupted:   "Assistant is shutting down.",
		},
		Keywords: Keywords{
			ListAll:     {"list"},
			SaveNames:   {"save"},
			SaveDetails: {"details", "dates"},
			Nearest:     {"nearest"},
			Count:       {"count"},
			Exit:        {"exit", "stop"},
		},
	},
}

// DefaultLocale is used when no locale is configured
const DefaultLocale = "ru"

// LookupLocale returns the locale registered under name
func LookupLocale(name string) (Locale, error) {
	if name == "" {
		name = DefaultLocale
	}
	loc, ok := locales[name]
	if !ok {
		return Locale{}, fmt.Errorf("unknown locale %q (available: %v)", name, Locales())
	}
	loc.Keywords = loc.Keywords.Merge(nil)
	return loc, nil
}

// Locales lists the available locale names
func Locales() []string {
	names := make([]string, 0, len(locales))
	for name := range locales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
