package common

import (
	"fmt"
	"time"
)

type Date struct {
	Year  int32
	Month int32
	Day   int32
}

func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{
		Year:  int32(y),
		Month: int32(m),
		Day:   int32(d),
	}
}

func (d *Date) Equal(o *Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d *Date) Less(o *Date) bool {
	d1 := d.ToDate()
	o1 := o.ToDate()
	return d1.Before(o1)
}

func (d *Date) ToDate() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

// AddInterval ignores the sub-day part of rhs.
func (d *Date) AddInterval(rhs *Interval) Date {
	days := int64(rhs.Days) + rhs.Micros/MicrosPerDay
	return DateFromTime(d.ToDate().AddDate(0, int(rhs.Months), int(days)))
}

func (d *Date) SubInterval(rhs *Interval) Date {
	neg := Interval{Months: -rhs.Months, Days: -rhs.Days, Micros: -rhs.Micros}
	return d.AddInterval(&neg)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
