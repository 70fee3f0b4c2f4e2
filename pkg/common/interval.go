package common

import (
	"fmt"
	"time"
)

const (
	DaysPerMonth    = 30
	MicrosPerDay    = int64(24 * time.Hour / time.Microsecond)
	MicrosPerSecond = int64(time.Second / time.Microsecond)
)

type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

func (i *Interval) Equal(o *Interval) bool {
	return i.Months == o.Months &&
		i.Days == o.Days &&
		i.Micros == o.Micros
}

// normalize folds micros into days and days into months so that
// "1 month" and "30 days" compare equal.
func (i *Interval) normalize() (int64, int64, int64) {
	micros := i.Micros % MicrosPerDay
	days := int64(i.Days) + i.Micros/MicrosPerDay
	months := int64(i.Months) + days/DaysPerMonth
	days %= DaysPerMonth
	return months, days, micros
}

func (i *Interval) Less(o *Interval) bool {
	lm, ld, lu := i.normalize()
	rm, rd, ru := o.normalize()
	if lm != rm {
		return lm < rm
	}
	if ld != rd {
		return ld < rd
	}
	return lu < ru
}

func (i *Interval) Add(o *Interval) Interval {
	return Interval{
		Months: i.Months + o.Months,
		Days:   i.Days + o.Days,
		Micros: i.Micros + o.Micros,
	}
}

func (i Interval) String() string {
	return fmt.Sprintf("%d months %d days %d us", i.Months, i.Days, i.Micros)
}
