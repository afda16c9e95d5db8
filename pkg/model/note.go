package model

// Note is an encrypted note owned by exactly one principal.
type Note struct {
	ID         NoteID `gorm:"column:id;primaryKey"`
	Principal  string `gorm:"column:principal"`
	Ciphertext string `gorm:"column:ciphertext"`
}

func (Note) TableName() string {
	return "notes"
}

// NoteOwner marks a principal whose note storage has been allocated.
type NoteOwner struct {
	Principal string `gorm:"column:principal;primaryKey"`
}

func (NoteOwner) TableName() string {
	return "note_owners"
}

// NoteCounter is the single-row table that hands out note identifiers.
type NoteCounter struct {
	ID   int    `gorm:"column:id;primaryKey"`
	Next NoteID `gorm:"column:next"`
}

func (NoteCounter) TableName() string {
	return "note_counter"
}
