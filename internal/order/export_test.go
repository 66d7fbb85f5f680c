package order

import "time"

// SetClock and SetNumberSource let external tests pin time and order numbers.
func (w *Workflow) SetClock(now func() time.Time) { w.now = now }

func (w *Workflow) SetNumberSource(f func(time.Time) string) { w.newNumber = f }
