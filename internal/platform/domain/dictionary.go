package domain

import "time"

// DictionaryEntry is a single term/definition pair inside a set. Entries are
// stored as a JSON blob; sets are small enough that relational modelling
// buys nothing.
type DictionaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type DictionarySet struct {
	ID        string
	Name      string
	Language  string
	Entries   []DictionaryEntry
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
