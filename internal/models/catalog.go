package models

const DoctorTypeOther = "Other"

const (
	SleepGood    = "Good"
	SleepAverage = "Average"
	SleepPoor    = "Poor"
)

const (
	ActivityNone     = "None"
	ActivityLight    = "Light"
	ActivityModerate = "Moderate"
	ActivityIntense  = "Intense"
)

const (
	MinSymptomSeverity = 1
	MaxSymptomSeverity = 10
)

func BuiltinSymptoms() []string {
	return []string{
		"Headache",
		"Dizziness",
		"Nausea",
		"Fatigue",
		"Blurred vision",
		"Trouble concentrating",
		"Trouble sleeping",
		"Irritability",
		"Sensitivity to light",
		"Sensitivity to noise",
		"Memory problems",
	}
}

func DoctorTypes() []string {
	return []string{"Neurologist", "Physiotherapist", "Psychologist", "General Practitioner", DoctorTypeOther}
}

func SleepQualities() []string {
	return []string{SleepGood, SleepAverage, SleepPoor}
}

func ActivityLevels() []string {
	return []string{ActivityNone, ActivityLight, ActivityModerate, ActivityIntense}
}

// Moods are ordered from best to worst.
func Moods() []string {
	return []string{"😀", "🙂", "😐", "🙁", "😢"}
}

func ReminderTypes() []string {
	return []string{ReminderTypeMedication, ReminderTypeAppointment, ReminderTypeLogEntry, ReminderTypeOther}
}

func Recurrences() []string {
	return []string{RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}
}
