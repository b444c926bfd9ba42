package report

import (
	"strconv"

	"golang.org/x/text/language"
)

// DefaultLocale renders month labels as "January 2025".
const DefaultLocale = "en-IN"

var supportedLocales = []language.Tag{
	language.MustParse(DefaultLocale),
	language.Hindi,
	language.Italian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var monthTables = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	"hi": {"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून",
		"जुलाई", "अगस्त", "सितंबर", "अक्तूबर", "नवंबर", "दिसंबर"},
	"it": {"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
		"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
}

// monthNames renders "<month name> <year>" labels for one locale.
type monthNames struct {
	names [12]string
}

// newMonthNames picks the closest supported locale, falling back to English.
func newMonthNames(locale string) monthNames {
	tag, err := language.Parse(locale)
	if err != nil {
		return monthNames{names: monthTables["en"]}
	}
	matched, _, _ := localeMatcher.Match(tag)
	base, _ := matched.Base()
	names, ok := monthTables[base.String()]
	if !ok {
		names = monthTables["en"]
	}
	return monthNames{names: names}
}

func (m monthNames) Name(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return m.names[month-1]
}

func (m monthNames) Label(year, month int) string {
	return m.Name(month) + " " + strconv.Itoa(year)
}
