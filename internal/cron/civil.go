// Package cron implements BareClaw's self-contained, dependency-free
// cron expression evaluator: Howard Hinnant's civil-from-days Gregorian
// calendar algorithm for Unix-timestamp conversion, a five-field parser,
// minute-resolution next-fire computation, and TSV task persistence.
package cron

// BrokenDownTime is a Unix timestamp decomposed into Gregorian calendar
// fields, UTC, with DayOfWeek 0 = Sunday.
type BrokenDownTime struct {
	Year      int
	Month     int // 1-12
	Day       int // 1-31
	Hour      int // 0-23
	Minute    int // 0-59
	DayOfWeek int // 0-6, Sunday = 0
}

// civilFromDays converts a day count since 1970-01-01 (the Unix epoch) to
// a (year, month, day) civil date, using Howard Hinnant's algorithm
// (http://howardhinnant.github.io/date_algorithms.html#civil_from_days).
// It is valid for the entire proleptic Gregorian calendar.
func civilFromDays(z int64) (year int, month int, day int) {
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097 // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d := doy - (153*mp+2)/5 + 1              // [1, 31]
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

// daysFromCivil inverts civilFromDays: given a civil date, returns the
// day count since 1970-01-01.
func daysFromCivil(y, m, d int64) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400 // [0, 399]
	var mp int64
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1                     // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy           // [0, 146096]
	return era*146097 + doe - 719468
}

// TimestampToBroken converts a Unix timestamp (UTC) into its broken-down
// calendar fields. Day-of-week derives from (days-since-epoch + 4) mod 7
// since 1970-01-01 was a Thursday.
func TimestampToBroken(ts int64) BrokenDownTime {
	secsOfDay := ts % 86400
	days := ts / 86400
	if secsOfDay < 0 {
		secsOfDay += 86400
		days--
	}
	year, month, day := civilFromDays(days)

	dow := (days + 4) % 7
	if dow < 0 {
		dow += 7
	}

	return BrokenDownTime{
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      int(secsOfDay / 3600),
		Minute:    int((secsOfDay % 3600) / 60),
		DayOfWeek: int(dow),
	}
}

// BrokenToTimestamp inverts TimestampToBroken, ignoring seconds (cron
// resolution is minutes).
func BrokenToTimestamp(bt BrokenDownTime) int64 {
	days := daysFromCivil(int64(bt.Year), int64(bt.Month), int64(bt.Day))
	return days*86400 + int64(bt.Hour)*3600 + int64(bt.Minute)*60
}
