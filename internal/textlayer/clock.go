package textlayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"golang.org/x/text/language"
)

// directives lists every verb strftime understands. Anything else after a % is printed as is.
const directives = "AaBbCcDdeFHhIjklMmnpRrSTtUuVvWwXxYyZz%"

// static verbs never change with the clock.
const static = "%nt"

type names struct {
	days, shortDays     [7]string
	months, shortMonths [12]string
}

var localeNames = map[string]names{
	"de": {
		days:        [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		shortDays:   [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		months:      [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		shortMonths: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
	},
	"fr": {
		days:        [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		shortDays:   [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		months:      [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		shortMonths: [12]string{"janv.", "févr.", "mars", "avril", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
	},
	"es": {
		days:        [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		shortDays:   [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		months:      [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		shortMonths: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
	},
	"it": {
		days:        [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"},
		shortDays:   [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
		months:      [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		shortMonths: [12]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"},
	},
	"nl": {
		days:        [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"},
		shortDays:   [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"},
		months:      [12]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"},
		shortMonths: [12]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"},
	},
}

// Resolve expands the strftime directives in template for t. Month and day names follow
// locale when it is one of the known languages, English otherwise.
func Resolve(template string, t time.Time, locale string) string {
	pattern := escapeUnknown(template)

	out, err := strftime.Format(pattern, t, localeOptions(locale)...)
	if err != nil {
		return template
	}

	return out
}

// HasClock reports whether any line shows something that changes with time.
func HasClock(lines []Line) bool {
	for _, l := range lines {
		if hasTimeDirective(l.Text) {
			return true
		}
	}

	return false
}

func hasTimeDirective(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '%' {
			continue
		}

		verb := s[i+1]
		if strings.IndexByte(directives, verb) >= 0 && strings.IndexByte(static, verb) < 0 {
			return true
		}
		i++
	}

	return false
}

// escapeUnknown doubles every % that does not start a known directive, so strftime prints
// it verbatim instead of failing.
func escapeUnknown(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}

		if i+1 < len(s) && strings.IndexByte(directives, s[i+1]) >= 0 {
			b.WriteByte('%')
			b.WriteByte(s[i+1])
			i++
			continue
		}

		b.WriteString("%%")
	}

	return b.String()
}

func localeOptions(locale string) []strftime.Option {
	tag, err := ParseLocale(locale)
	if err != nil {
		return nil
	}

	base, _ := tag.Base()
	n, ok := localeNames[base.String()]
	if !ok {
		return nil
	}

	return []strftime.Option{
		strftime.WithSpecification('A', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, n.days[t.Weekday()]...)
		})),
		strftime.WithSpecification('a', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, n.shortDays[t.Weekday()]...)
		})),
		strftime.WithSpecification('B', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, n.months[t.Month()-1]...)
		})),
		strftime.WithSpecification('b', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, n.shortMonths[t.Month()-1]...)
		})),
		strftime.WithSpecification('h', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, n.shortMonths[t.Month()-1]...)
		})),
	}
}

// ParseLocale accepts both POSIX ("de_DE.UTF-8") and BCP 47 ("de-DE") spellings.
func ParseLocale(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return language.Und, fmt.Errorf("empty locale")
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("unable to parse locale %q: %w", s, err)
	}

	return tag, nil
}

// NormalizeLocale rewrites s into the POSIX form the device passes to setlocale.
func NormalizeLocale(s string) (string, error) {
	tag, err := ParseLocale(s)
	if err != nil {
		return "", err
	}

	base, _ := tag.Base()
	region, _ := tag.Region()

	return fmt.Sprintf("%s_%s.UTF-8", base, region), nil
}
