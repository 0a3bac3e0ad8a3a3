package domain

// ChangeRecord is one line of the report printed at the end of a run.
type ChangeRecord struct {
	Step        string
	Description string
	Applied     bool
	Warning     bool
}

type ChangeLog []ChangeRecord

func (l *ChangeLog) Applied(step string, description string) {
	*l = append(*l, ChangeRecord{Step: step, Description: description, Applied: true})
}

func (l *ChangeLog) Skipped(step string, description string) {
	*l = append(*l, ChangeRecord{Step: step, Description: description})
}

func (l *ChangeLog) Warn(step string, description string) {
	*l = append(*l, ChangeRecord{Step: step, Description: description, Warning: true})
}

// Changes counts the records that modified something.
func (l ChangeLog) Changes() int {
	count := 0
	for _, record := range l {
		if record.Applied {
			count++
		}
	}
	return count
}

func (l ChangeLog) Warnings() []ChangeRecord {
	var warnings []ChangeRecord
	for _, record := range l {
		if record.Warning {
			warnings = append(warnings, record)
		}
	}
	return warnings
}
