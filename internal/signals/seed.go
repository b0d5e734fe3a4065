package signals

// Seeding helpers for the CLI and tests.

// WriteUserNarratives replaces the user-narratives store for a user.
func (l *Library) WriteUserNarratives(userID string, list []Narrative) error {
	return l.writeJSON(userID, FileUserNarratives, list)
}

// WriteCharacterNarratives replaces the character-narratives store.
func (l *Library) WriteCharacterNarratives(userID string, list []Narrative) error {
	return l.writeJSON(userID, FileCharacterNarratives, list)
}

// WriteMentalThreads replaces the mental-threads store.
func (l *Library) WriteMentalThreads(userID string, list []Thread) error {
	return l.writeJSON(userID, FileMentalThreads, list)
}

// WriteCalendar replaces the calendar store.
func (l *Library) WriteCalendar(userID string, list []Event) error {
	return l.writeJSON(userID, FileCalendar, list)
}
